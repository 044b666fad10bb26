// Package build exposes build-time metadata injected via ldflags.
package build

// Version, Commit, and Branch are set at build time by:
//
//	-ldflags "-X github.com/Krupsinko/Bookmark/internal/build.Version=... ..."
var (
	Version = "dev"
	Commit  = "unknown"
	Branch  = "unknown"
)

// String renders the build metadata for the version command and health endpoint.
func String() string {
	return Version + " (" + Commit + ", " + Branch + ")"
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Krupsinko/Bookmark/internal/api"
	"github.com/Krupsinko/Bookmark/internal/auth"
	"github.com/Krupsinko/Bookmark/internal/scrape"
	"github.com/Krupsinko/Bookmark/internal/store"
	"github.com/Krupsinko/Bookmark/internal/testutil"
)

const testSecret = "test-secret"

// stubEnricher returns fixed metadata without touching the network.
type stubEnricher struct {
	md   scrape.Metadata
	urls []string
}

func (s *stubEnricher) Enrich(_ context.Context, url string) scrape.Metadata {
	s.urls = append(s.urls, url)
	return s.md
}

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router    http.Handler
	Users     *store.UserStore
	Bookmarks *store.BookmarkStore
	Tags      *store.TagStore
	Tokens    *auth.TokenService
	Enricher  *stubEnricher
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with real stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith is newTestEnv with a custom enricher. A nil enricher
// installs a stub.
func newTestEnvWith(t *testing.T, enricher api.Enricher) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: testSecret, Algorithm: "HS256"})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	env := &testEnv{
		Users:     store.NewUserStore(db),
		Bookmarks: store.NewBookmarkStore(db),
		Tags:      store.NewTagStore(db),
		Tokens:    tokens,
	}
	if enricher == nil {
		env.Enricher = &stubEnricher{}
		enricher = env.Enricher
	}

	env.Router = api.NewRouter(api.Deps{
		Tokens:    tokens,
		Users:     env.Users,
		Bookmarks: env.Bookmarks,
		Tags:      env.Tags,
		Enricher:  enricher,
	})
	return env
}

// seedUser creates a user with password "password123" and returns the record.
func seedUser(t *testing.T, env *testEnv, username, role string) *store.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := env.Users.Create(context.Background(), username+"@example.com", username, hash, role)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedToken issues an access token for u.
func seedToken(t *testing.T, env *testEnv, u *store.User) string {
	t.Helper()
	token, err := env.Tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// seedBookmark stores a bookmark directly, bypassing enrichment.
func seedBookmark(t *testing.T, env *testEnv, ownerID, url string) *store.Bookmark {
	t.Helper()
	b, err := env.Bookmarks.Create(context.Background(), ownerID, store.BookmarkInput{Title: "seed", URL: url})
	if err != nil {
		t.Fatalf("seed bookmark: %v", err)
	}
	return b
}

// authRequest adds a Bearer token to the request.
func authRequest(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// do sends a request through the router. A non-empty token is sent as a
// bearer token; a non-nil body is JSON encoded.
func do(t *testing.T, env *testEnv, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		authRequest(req, token)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v; body: %s", err, rec.Body.String())
	}
}

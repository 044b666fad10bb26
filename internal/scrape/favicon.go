package scrape

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// iconRels are the rel values that mark a <link> as an icon. Matching is
// per whitespace-separated token and case-sensitive. The two-word entry can
// never equal a token; rel="shortcut icon" still matches through "icon".
var iconRels = map[string]bool{
	"icon":             true,
	"shortcut icon":    true,
	"apple-touch-icon": true,
}

// Candidate is an icon <link> found in a page.
type Candidate struct {
	URL   string // href resolved against the page URL
	Sizes string // sizes attribute as declared, may be empty
}

// IconCandidates returns the page's icon links in document order. Relative
// hrefs are resolved against base.
func IconCandidates(rawHTML string, base *url.URL) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var out []Candidate
	doc.Find("link[rel]").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		if !isIconRel(rel) {
			return
		}
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		sizes, _ := s.Attr("sizes")
		out = append(out, Candidate{URL: resolved.String(), Sizes: sizes})
	})
	return out
}

func isIconRel(rel string) bool {
	for _, tok := range strings.Fields(rel) {
		if iconRels[tok] {
			return true
		}
	}
	return false
}

// PickIcon chooses the favicon URL for a page.
//
// With no candidates it falls back to /favicon.ico on the requested URL's
// host. Otherwise it returns the candidate with the largest numeric width,
// the first one winning ties. Candidates that all lack a numeric size give "".
func PickIcon(candidates []Candidate, requested *url.URL) string {
	if len(candidates) == 0 {
		return defaultFavicon(requested)
	}

	best, bestWidth := "", -1
	for _, c := range candidates {
		w, ok := iconWidth(c.Sizes)
		if !ok {
			continue
		}
		if w > bestWidth {
			best, bestWidth = c.URL, w
		}
	}
	return best
}

func defaultFavicon(u *url.URL) string {
	if u == nil || u.Host == "" {
		return ""
	}
	fallback := url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/favicon.ico"}
	return fallback.String()
}

// iconWidth parses the part of a sizes value before the first "x".
func iconWidth(sizes string) (int, bool) {
	w, _, _ := strings.Cut(sizes, "x")
	if w == "" {
		return 0, false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < '0' || w[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(w)
	if err != nil {
		return 0, false
	}
	return n, true
}

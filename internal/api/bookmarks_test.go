package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Krupsinko/Bookmark/internal/api"
	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/scrape"
	"github.com/Krupsinko/Bookmark/internal/store"
)

func TestBookmarks_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/bookmarks/", "/bookmarks", "/tags/", "/user/me"} {
		rec := do(t, env, "GET", path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s: status = %d, want %d", path, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestBookmarks_Create_UsesScrapedTitle(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Example Domain</title><link rel="icon" href="/fav.png" sizes="32x32"></head></html>`)
	}))
	defer page.Close()

	scraper := scrape.New(scrape.NewFetcher(nil, "test", 1<<20), logger.Nop(), time.Second, time.Second)
	env := newTestEnvWith(t, scraper)
	u := seedUser(t, env, "alice", "user")

	rec := do(t, env, "POST", "/bookmarks/", seedToken(t, env, u), map[string]any{
		"title": "My own title",
		"url":   page.URL,
		"tags":  []string{"reading", "Reading", "go"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp api.BookmarkResponse
	decode(t, rec, &resp)
	if resp.Title != "Example Domain" {
		t.Errorf("title = %q, want scraped title", resp.Title)
	}
	if resp.FaviconURL == nil || *resp.FaviconURL != page.URL+"/fav.png" {
		t.Errorf("favicon_url = %v", resp.FaviconURL)
	}
	if strings.Join(resp.Tags, ",") != "reading,go" {
		t.Errorf("tags = %v", resp.Tags)
	}
	if resp.OwnerID != u.ID {
		t.Errorf("owner_id = %q", resp.OwnerID)
	}
}

func TestBookmarks_Create_FallsBackToClientTitle(t *testing.T) {
	env := newTestEnv(t)
	u := seedUser(t, env, "alice", "user")

	rec := do(t, env, "POST", "/bookmarks/", seedToken(t, env, u), map[string]any{
		"title": "Client title",
		"url":   "https://unreachable.example/",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp api.BookmarkResponse
	decode(t, rec, &resp)
	if resp.Title != "Client title" {
		t.Errorf("title = %q", resp.Title)
	}
	if resp.FaviconURL != nil {
		t.Errorf("favicon_url = %q, want null", *resp.FaviconURL)
	}
	if len(env.Enricher.urls) != 1 || env.Enricher.urls[0] != "https://unreachable.example/" {
		t.Errorf("enricher calls = %v", env.Enricher.urls)
	}
}

func TestBookmarks_Create_ClampsLongScrapedTitle(t *testing.T) {
	env := newTestEnv(t)
	env.Enricher.md = scrape.Metadata{Title: strings.Repeat("é", 150)}
	u := seedUser(t, env, "alice", "user")

	rec := do(t, env, "POST", "/bookmarks/", seedToken(t, env, u), map[string]any{"url": "https://example.com/"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.BookmarkResponse
	decode(t, rec, &resp)
	if got := len([]rune(resp.Title)); got != 100 {
		t.Errorf("title length = %d runes, want 100", got)
	}
}

func TestBookmarks_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	u := seedUser(t, env, "alice", "user")
	token := seedToken(t, env, u)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing url", map[string]any{"title": "x"}, "url"},
		{"not a url", map[string]any{"url": "not a url"}, "url"},
		{"ftp url", map[string]any{"url": "ftp://example.com/file"}, "url"},
		{"title too long", map[string]any{"url": "https://example.com/", "title": strings.Repeat("a", 101)}, "title"},
		{"description too long", map[string]any{"url": "https://example.com/", "description": strings.Repeat("a", 256)}, "description"},
		{"blank tag", map[string]any{"url": "https://example.com/", "tags": []string{"ok", ""}}, "tags[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, env, "POST", "/bookmarks/", token, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			var resp api.ErrorResponse
			decode(t, rec, &resp)
			if _, ok := resp.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want entry for %q", resp.Fields, tt.field)
			}
		})
	}
	if len(env.Enricher.urls) != 0 {
		t.Errorf("invalid requests triggered fetches: %v", env.Enricher.urls)
	}
}

func TestBookmarks_OtherUsersBookmarkIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice", "user")
	bob := seedUser(t, env, "bob", "user")
	b := seedBookmark(t, env, alice.ID, "https://example.com/")
	bobToken := seedToken(t, env, bob)
	path := "/bookmarks/" + b.ID

	for _, tc := range []struct {
		method string
		body   any
	}{
		{"GET", nil},
		{"PUT", map[string]any{"title": "mine now"}},
		{"DELETE", nil},
	} {
		rec := do(t, env, tc.method, path, bobToken, tc.body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want %d", tc.method, rec.Code, http.StatusNotFound)
		}
	}

	rec := do(t, env, "GET", "/bookmarks/", bobToken, nil)
	var list api.BookmarkListResponse
	decode(t, rec, &list)
	if list.Total != 0 || len(list.Items) != 0 {
		t.Errorf("bob lists %d/%d bookmarks, want none", len(list.Items), list.Total)
	}

	// Alice still sees it unchanged.
	rec = do(t, env, "GET", path, seedToken(t, env, alice), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner GET: status = %d", rec.Code)
	}
	var got api.BookmarkResponse
	decode(t, rec, &got)
	if got.Title != "seed" {
		t.Errorf("title = %q, want unchanged", got.Title)
	}
}

func TestBookmarks_List_Pagination(t *testing.T) {
	env := newTestEnv(t)
	u := seedUser(t, env, "alice", "user")
	seedBookmark(t, env, u.ID, "https://example.com/")

	rec := do(t, env, "GET", "/bookmarks/?skip=0&limit=10", seedToken(t, env, u), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.BookmarkListResponse
	decode(t, rec, &resp)
	if resp.Total != 1 || resp.Page != 1 || resp.Size != 1 || len(resp.Items) != 1 {
		t.Errorf("resp = total %d page %d size %d items %d", resp.Total, resp.Page, resp.Size, len(resp.Items))
	}
}

func TestBookmarks_List_PageMath(t *testing.T) {
	env := newTestEnv(t)
	u := seedUser(t, env, "alice", "user")
	for i := 0; i < 5; i++ {
		seedBookmark(t, env, u.ID, fmt.Sprintf("https://example.com/%d", i))
	}

	rec := do(t, env, "GET", "/bookmarks/?skip=4&limit=2", seedToken(t, env, u), nil)
	var resp api.BookmarkListResponse
	decode(t, rec, &resp)
	if resp.Total != 5 || resp.Page != 3 || resp.Size != 1 {
		t.Errorf("resp = total %d page %d size %d", resp.Total, resp.Page, resp.Size)
	}
}

func TestBookmarks_List_RejectsBadParams(t *testing.T) {
	env := newTestEnv(t)
	u := seedUser(t, env, "alice", "user")
	token := seedToken(t, env, u)

	for _, q := range []string{"skip=-1", "limit=0", "limit=101", "limit=abc", "sort_by=random", "favorite=maybe", "tag=!!!"} {
		rec := do(t, env, "GET", "/bookmarks/?"+q, token, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", q, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestBookmarks_List_UnknownTagIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	alice := seedUser(t, env, "alice", "user")
	bob := seedUser(t, env, "bob", "user")
	if _, err := env.Bookmarks.Create(context.Background(), bob.ID, store.BookmarkInput{URL: "https://b.example/", Tags: []string{"private"}}); err != nil {
		t.Fatalf("seed bob's bookmark: %v", err)
	}
	seedBookmark(t, env, alice.ID, "https://a.example/")
	token := seedToken(t, env, alice)

	for _, q := range []string{"tag=nothing-here", "tag=private"} {
		rec := do(t, env, "GET", "/bookmarks/?"+q, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d; body: %s", q, rec.Code, rec.Body.String())
		}
		var resp api.BookmarkListResponse
		decode(t, rec, &resp)
		if resp.Total != 0 || resp.Size != 0 || resp.Page != 1 || resp.Items == nil || len(resp.Items) != 0 {
			t.Errorf("%s: resp = %+v, want an empty first page", q, resp)
		}
	}
}

func TestBookmarks_List_SortAndFilter(t *testing.T) {
	env := newTestEnv(t)
	u := seedUser(t, env, "alice", "user")
	token := seedToken(t, env, u)

	for _, body := range []map[string]any{
		{"url": "https://b.example/", "title": "beta", "tags": []string{"Go"}},
		{"url": "https://a.example/", "title": "Alpha", "favorite": true},
		{"url": "https://c.example/", "title": "gamma", "tags": []string{"go"}},
	} {
		if rec := do(t, env, "POST", "/bookmarks/", token, body); rec.Code != http.StatusCreated {
			t.Fatalf("create: status = %d; body: %s", rec.Code, rec.Body.String())
		}
	}

	rec := do(t, env, "GET", "/bookmarks/?sort_by=title_asc", token, nil)
	var resp api.BookmarkListResponse
	decode(t, rec, &resp)
	var titles []string
	for _, b := range resp.Items {
		titles = append(titles, b.Title)
	}
	if strings.Join(titles, ",") != "Alpha,beta,gamma" {
		t.Errorf("title_asc = %v", titles)
	}

	rec = do(t, env, "GET", "/bookmarks/?tag=go", token, nil)
	resp = api.BookmarkListResponse{}
	decode(t, rec, &resp)
	if resp.Total != 2 {
		t.Errorf("tag=go total = %d, want 2", resp.Total)
	}

	rec = do(t, env, "GET", "/bookmarks/?favorite=true", token, nil)
	resp = api.BookmarkListResponse{}
	decode(t, rec, &resp)
	if resp.Total != 1 || resp.Items[0].Title != "Alpha" {
		t.Errorf("favorite=true = %+v", resp)
	}
}

func TestBookmarks_Update(t *testing.T) {
	env := newTestEnv(t)
	u := seedUser(t, env, "alice", "user")
	token := seedToken(t, env, u)
	b := seedBookmark(t, env, u.ID, "https://example.com/")

	rec := do(t, env, "PUT", "/bookmarks/"+b.ID, token, map[string]any{
		"favorite":    true,
		"description": "later",
		"tags":        []string{"x"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.BookmarkResponse
	decode(t, rec, &resp)
	if !resp.Favorite || resp.Description == nil || *resp.Description != "later" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Title != "seed" || resp.URL != "https://example.com/" {
		t.Errorf("unpatched fields changed: title=%q url=%q", resp.Title, resp.URL)
	}
	if resp.UpdatedAt.Before(b.UpdatedAt) {
		t.Errorf("updated_at went backwards")
	}

	rec = do(t, env, "PUT", "/bookmarks/"+b.ID, token, map[string]any{"url": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty url: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBookmarks_Delete(t *testing.T) {
	env := newTestEnv(t)
	u := seedUser(t, env, "alice", "user")
	token := seedToken(t, env, u)
	b := seedBookmark(t, env, u.ID, "https://example.com/")

	rec := do(t, env, "DELETE", "/bookmarks/"+b.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	rec = do(t, env, "DELETE", "/bookmarks/"+b.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

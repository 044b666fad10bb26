package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/metrics"
)

func newTestScraper(titleTimeout, faviconTimeout time.Duration) *Scraper {
	return New(NewFetcher(nil, "bookmarks-test", 1<<20), logger.Nop(), titleTimeout, faviconTimeout)
}

func htmlHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Example Domain", ExtractTitle(`<html><head><title>Example Domain</title></head></html>`))
	assert.Equal(t, "  spaced  ", ExtractTitle(`<title>  spaced  </title>`))
	assert.Equal(t, "first", ExtractTitle(`<title>first</title><title>second</title>`))
	assert.Equal(t, "", ExtractTitle(`<html><body><h1>No title</h1></body></html>`))
	assert.Equal(t, "", ExtractTitle(""))
}

func TestScraper_Title(t *testing.T) {
	srv := httptest.NewServer(htmlHandler(`<html><head><title>Example Domain</title></head></html>`))
	defer srv.Close()

	s := newTestScraper(time.Second, time.Second)
	assert.Equal(t, "Example Domain", s.Title(context.Background(), srv.URL))
}

func TestScraper_Title_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `<title>Not Found</title>`)
	}))
	defer srv.Close()

	s := newTestScraper(time.Second, time.Second)
	assert.Equal(t, "", s.Title(context.Background(), srv.URL))
}

func TestScraper_Title_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		fmt.Fprint(w, `<title>too late</title>`)
	}))
	defer srv.Close()

	s := newTestScraper(50*time.Millisecond, 50*time.Millisecond)
	start := time.Now()
	assert.Equal(t, "", s.Title(context.Background(), srv.URL))
	assert.Less(t, time.Since(start), time.Second)
}

func TestScraper_Favicon(t *testing.T) {
	srv := httptest.NewServer(htmlHandler(`<html><head>
		<link rel="icon" href="/icon-16.png" sizes="16x16">
		<link rel="icon" href="/icon-32.png" sizes="32x32">
	</head></html>`))
	defer srv.Close()

	s := newTestScraper(time.Second, time.Second)
	assert.Equal(t, srv.URL+"/icon-32.png", s.Favicon(context.Background(), srv.URL))
}

func TestScraper_Favicon_FallbackUsesRequestedHost(t *testing.T) {
	target := httptest.NewServer(htmlHandler(`<html><head><title>moved</title></head></html>`))
	defer target.Close()
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/landing", http.StatusFound)
	}))
	defer origin.Close()

	s := newTestScraper(time.Second, time.Second)
	assert.Equal(t, origin.URL+"/favicon.ico", s.Favicon(context.Background(), origin.URL+"/start"))
}

func TestScraper_Favicon_RelativeHrefUsesEffectiveURL(t *testing.T) {
	target := httptest.NewServer(htmlHandler(`<link rel="icon" href="img/icon.png" sizes="32x32">`))
	defer target.Close()
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/docs/index.html", http.StatusMovedPermanently)
	}))
	defer origin.Close()

	s := newTestScraper(time.Second, time.Second)
	assert.Equal(t, target.URL+"/docs/img/icon.png", s.Favicon(context.Background(), origin.URL))
}

func TestScraper_Favicon_NoNumericSize(t *testing.T) {
	srv := httptest.NewServer(htmlHandler(`<link rel="icon" href="/favicon.svg" sizes="any">`))
	defer srv.Close()

	s := newTestScraper(time.Second, time.Second)
	assert.Equal(t, "", s.Favicon(context.Background(), srv.URL))
}

func TestScraper_Enrich_SingleFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<title>Example Domain</title><link rel="icon" href="/i.png" sizes="64x64">`)
	}))
	defer srv.Close()

	s := newTestScraper(time.Second, time.Second)
	md := s.Enrich(context.Background(), srv.URL)

	assert.Equal(t, "Example Domain", md.Title)
	assert.Equal(t, srv.URL+"/i.png", md.FaviconURL)
	assert.Equal(t, int32(1), hits.Load())
}

func TestScraper_Enrich_LogsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	s := New(NewFetcher(nil, "", 0), logger.NewWithCore(core), time.Second, time.Second)

	md := s.Enrich(context.Background(), srv.URL)

	assert.Equal(t, Metadata{}, md)
	entries := logs.FilterMessage("page fetch failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, srv.URL, entries[0].ContextMap()["url"])
}

func TestScraper_Enrich_LogsResultAtDebug(t *testing.T) {
	srv := httptest.NewServer(htmlHandler(`<title>Hi</title>`))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	s := New(NewFetcher(nil, "", 0), logger.NewWithCore(core), time.Second, time.Second)
	s.Enrich(context.Background(), srv.URL)

	entries := logs.FilterMessage("page enriched").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, true, fields["title"])
	assert.Equal(t, true, fields["favicon"])
	assert.Equal(t, "scrape", fields["component"])
}

func TestFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(nil, "", 0)

	_, err := f.Fetch(context.Background(), srv.URL, time.Second)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)
	assert.False(t, fe.Timeout())

	_, err = f.Fetch(context.Background(), "ftp://example.com/file", time.Second)
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
}

func TestFetcher_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Café" in Latin-1.
		_, _ = w.Write([]byte("<title>Caf\xe9</title>"))
	}))
	defer srv.Close()

	page, err := NewFetcher(nil, "", 0).Fetch(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Café", ExtractTitle(page.Body))
	assert.Equal(t, srv.URL, page.Requested.String())
}

func TestFetcher_SendsHeaders(t *testing.T) {
	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
	}))
	defer srv.Close()

	_, err := NewFetcher(nil, "bookmarks/1.0", 0).Fetch(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	h := <-headers
	assert.Equal(t, "bookmarks/1.0", h.Get("User-Agent"))
	assert.Contains(t, h.Get("Accept"), "text/html")
}

func TestScraper_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}))
	defer srv.Close()

	okBefore := promtest.ToFloat64(metrics.FetchesTotal.WithLabelValues("ok"))

	page, err := NewFetcher(nil, "", 0).Fetch(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	assert.Empty(t, page.Body)
	assert.Equal(t, okBefore+1, promtest.ToFloat64(metrics.FetchesTotal.WithLabelValues("ok")))

	s := newTestScraper(time.Second, time.Second)
	assert.Equal(t, srv.URL+"/favicon.ico", s.Favicon(context.Background(), srv.URL))
	assert.Equal(t, Metadata{FaviconURL: srv.URL + "/favicon.ico"}, s.Enrich(context.Background(), srv.URL))
}

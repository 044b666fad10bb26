// Package scrape fetches bookmarked pages and extracts their title and favicon.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/Krupsinko/Bookmark/internal/metrics"
)

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Page is a fetched HTML document.
type Page struct {
	Body      string   // UTF-8 decoded body
	URL       *url.URL // effective URL after redirects
	Requested *url.URL // URL the caller asked for
}

// FetchError describes why a page could not be fetched. StatusCode is zero
// when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the fetch ran out of time.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

func (e *FetchError) outcome() string {
	switch {
	case e.Timeout():
		return "timeout"
	case e.StatusCode != 0:
		return "status"
	default:
		return "error"
	}
}

// Fetcher performs single GET requests for HTML pages.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewFetcher returns a Fetcher. A nil client uses a fresh http.Client, which
// follows up to 10 redirects.
func NewFetcher(client *http.Client, userAgent string, maxBody int64) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client, userAgent: userAgent, maxBody: maxBody}
}

// Fetch GETs rawURL within timeout. Every failure, including a non-2xx
// response, is returned as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Page, error) {
	start := time.Now()
	page, err := f.fetch(ctx, rawURL, timeout)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = &FetchError{URL: rawURL, Err: err}
		}
		metrics.FetchesTotal.WithLabelValues(fe.outcome()).Inc()
		return nil, fe
	}
	metrics.FetchesTotal.WithLabelValues("ok").Inc()
	return page, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Page, error) {
	requested, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if requested.Scheme != "http" && requested.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", requested.Scheme)
	}
	if requested.Host == "" {
		return nil, errors.New("missing host")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requested.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", acceptHTML)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if f.maxBody > 0 {
		body = io.LimitReader(body, f.maxBody)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	page := &Page{URL: resp.Request.URL, Requested: requested}
	// An empty body is still a successful page.
	if len(raw) == 0 {
		return page, nil
	}
	decoded, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	page.Body = string(data)
	return page, nil
}

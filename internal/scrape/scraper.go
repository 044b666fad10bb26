package scrape

import (
	"context"
	"time"

	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/metrics"
)

const (
	DefaultTitleTimeout   = 10 * time.Second
	DefaultFaviconTimeout = 5 * time.Second
)

// Metadata is what enrichment learned about a page. Empty fields mean the
// value could not be determined.
type Metadata struct {
	Title      string
	FaviconURL string
}

// Scraper turns URLs into page metadata. Failures are logged and reported as
// empty values, never as errors.
type Scraper struct {
	fetcher        *Fetcher
	log            logger.Logger
	titleTimeout   time.Duration
	faviconTimeout time.Duration
}

// New returns a Scraper. Non-positive timeouts fall back to the defaults.
func New(f *Fetcher, log logger.Logger, titleTimeout, faviconTimeout time.Duration) *Scraper {
	if titleTimeout <= 0 {
		titleTimeout = DefaultTitleTimeout
	}
	if faviconTimeout <= 0 {
		faviconTimeout = DefaultFaviconTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scraper{
		fetcher:        f,
		log:            log.With(logger.String("component", "scrape")),
		titleTimeout:   titleTimeout,
		faviconTimeout: faviconTimeout,
	}
}

// Title fetches rawURL and returns its <title> text.
func (s *Scraper) Title(ctx context.Context, rawURL string) string {
	page, ok := s.fetch(ctx, rawURL, s.titleTimeout)
	if !ok {
		return ""
	}
	return s.title(page)
}

// Favicon fetches rawURL and returns the chosen icon URL.
func (s *Scraper) Favicon(ctx context.Context, rawURL string) string {
	page, ok := s.fetch(ctx, rawURL, s.faviconTimeout)
	if !ok {
		return ""
	}
	return s.favicon(page)
}

// Enrich fetches rawURL once, within the title budget, and extracts both the
// title and the favicon from that response.
func (s *Scraper) Enrich(ctx context.Context, rawURL string) Metadata {
	page, ok := s.fetch(ctx, rawURL, s.titleTimeout)
	if !ok {
		return Metadata{}
	}
	md := Metadata{Title: s.title(page), FaviconURL: s.favicon(page)}
	s.log.Debug("page enriched",
		logger.String("url", rawURL),
		logger.String("effective_url", page.URL.String()),
		logger.Bool("title", md.Title != ""),
		logger.Bool("favicon", md.FaviconURL != ""))
	return md
}

func (s *Scraper) fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Page, bool) {
	page, err := s.fetcher.Fetch(ctx, rawURL, timeout)
	if err != nil {
		s.log.Warn("page fetch failed",
			logger.String("url", rawURL),
			logger.Duration("timeout", timeout),
			logger.Error(err))
		return nil, false
	}
	return page, true
}

func (s *Scraper) title(page *Page) string {
	t := ExtractTitle(page.Body)
	recordField("title", t)
	return t
}

func (s *Scraper) favicon(page *Page) string {
	icon := PickIcon(IconCandidates(page.Body, page.URL), page.Requested)
	recordField("favicon", icon)
	return icon
}

func recordField(field, value string) {
	result := "found"
	if value == "" {
		result = "empty"
	}
	metrics.EnrichmentsTotal.WithLabelValues(field, result).Inc()
}

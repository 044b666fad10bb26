package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts page fetches by outcome: ok, timeout, status, error.
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_scrape_fetches_total",
		Help: "Remote page fetches performed for metadata enrichment.",
	}, []string{"outcome"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookmarks_scrape_fetch_duration_seconds",
		Help:    "Time spent fetching remote pages.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// EnrichmentsTotal counts extracted fields: field is title or favicon,
	// result is found or empty.
	EnrichmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_enrichments_total",
		Help: "Metadata fields extracted from fetched pages.",
	}, []string{"field", "result"})

	BookmarksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarks_created_total",
		Help: "Bookmarks created through the API.",
	})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_logins_total",
		Help: "Password grant attempts by status.",
	}, []string{"status"})

	BookmarksTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookmarks_bookmarks_total",
		Help: "Total number of bookmarks in the database.",
	})

	UsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookmarks_users_total",
		Help: "Total number of registered users in the database.",
	})
)

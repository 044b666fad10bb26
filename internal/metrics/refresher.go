package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Krupsinko/Bookmark/internal/logger"
)

// Counter reports a row count.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// RunStatsRefresher sets UsersTotal and BookmarksTotal from the database
// once immediately and then every interval until ctx is cancelled.
func RunStatsRefresher(ctx context.Context, interval time.Duration, users, bookmarks Counter, log logger.Logger) {
	refresh := func() {
		setFromCount(ctx, UsersTotal, users, "users", log)
		setFromCount(ctx, BookmarksTotal, bookmarks, "bookmarks", log)
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			return
		}
	}
}

func setFromCount(ctx context.Context, g prometheus.Gauge, c Counter, what string, log logger.Logger) {
	n, err := c.Count(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("stats refresh failed", logger.String("table", what), logger.Error(err))
		}
		return
	}
	g.Set(float64(n))
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Krupsinko/Bookmark/internal/api"
	"github.com/Krupsinko/Bookmark/internal/auth"
	"github.com/Krupsinko/Bookmark/internal/build"
	"github.com/Krupsinko/Bookmark/internal/config"
	"github.com/Krupsinko/Bookmark/internal/db"
	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/metrics"
	"github.com/Krupsinko/Bookmark/internal/scrape"
	"github.com/Krupsinko/Bookmark/internal/store"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.NeedDB, config.NeedAuth)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			applied, err := db.Migrate(cmd.Context(), database, cfg.DB.Driver)
			if err != nil {
				return err
			}
			if len(applied) > 0 {
				log.Info("database migrated", logger.Int("applied", len(applied)))
			}

			tokens, err := auth.NewTokenService(auth.TokenConfig{
				Secret:    cfg.Auth.Secret,
				Algorithm: cfg.Auth.Algorithm,
				Lifetime:  cfg.Auth.TokenLifetime,
			})
			if err != nil {
				return err
			}

			userStore := store.NewUserStore(database)
			bookmarkStore := store.NewBookmarkStore(database)
			tagStore := store.NewTagStore(database)

			fetcher := scrape.NewFetcher(nil, cfg.Scrape.UserAgent, cfg.Scrape.MaxBodyBytes)
			scraper := scrape.New(fetcher, log, cfg.Scrape.TitleTimeout, cfg.Scrape.FaviconTimeout)

			router := api.NewRouter(api.Deps{
				Logger:    log,
				Tokens:    tokens,
				Users:     userStore,
				Bookmarks: bookmarkStore,
				Tags:      tagStore,
				Enricher:  scraper,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go metrics.RunStatsRefresher(ctx, cfg.StatsInterval, userStore, bookmarkStore, log)

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				// Creating a bookmark may wait out the full title fetch.
				WriteTimeout:   cfg.Scrape.TitleTimeout + 20*time.Second,
				IdleTimeout:    60 * time.Second,
				MaxHeaderBytes: 1 << 20,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("HTTP server listening",
					logger.String("addr", cfg.HTTP.Addr),
					logger.String("version", build.String()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("HTTP server shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}
}

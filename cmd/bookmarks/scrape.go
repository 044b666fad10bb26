package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Krupsinko/Bookmark/internal/config"
	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/scrape"
)

// newScrapeCmd fetches a page the way bookmark creation would, but with the
// separate title and favicon budgets, and prints what it found.
func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape <url>",
		Short: "Print the title and favicon the server would store for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Level, true)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			fetcher := scrape.NewFetcher(nil, cfg.Scrape.UserAgent, cfg.Scrape.MaxBodyBytes)
			s := scrape.New(fetcher, log, cfg.Scrape.TitleTimeout, cfg.Scrape.FaviconTimeout)

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "title:   %q\n", s.Title(ctx, args[0]))
			fmt.Fprintf(out, "favicon: %q\n", s.Favicon(ctx, args[0]))
			return nil
		},
	}
}

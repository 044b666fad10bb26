package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Krupsinko/Bookmark/internal/config"
	"github.com/Krupsinko/Bookmark/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.NeedDB)
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			applied, err := db.Migrate(cmd.Context(), database, cfg.DB.Driver)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "schema is up to date")
				return nil
			}
			for _, m := range applied {
				fmt.Fprintln(out, "applied", m)
			}
			return nil
		},
	}
}

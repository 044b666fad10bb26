package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Krupsinko/Bookmark/internal/build"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bookmarks",
		Short:         "A personal bookmark manager",
		Long:          "Bookmarks is a REST API for saving links along with their page title and favicon.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newScrapeCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), build.String())
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

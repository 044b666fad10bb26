package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Krupsinko/Bookmark/internal/auth"
	"github.com/Krupsinko/Bookmark/internal/config"
	"github.com/Krupsinko/Bookmark/internal/db"
	"github.com/Krupsinko/Bookmark/internal/store"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

// newUserCreateCmd creates accounts from the shell. It is the only way to
// create an admin.
func newUserCreateCmd() *cobra.Command {
	var email, username, password, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != store.RoleUser && role != store.RoleAdmin {
				return fmt.Errorf("--role must be %q or %q", store.RoleUser, store.RoleAdmin)
			}
			if len(password) < 8 || len(password) > 72 {
				return errors.New("--password must be 8 to 72 bytes")
			}

			cfg, err := config.Load(config.NeedDB)
			if err != nil {
				return err
			}
			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if _, err := db.Migrate(cmd.Context(), database, cfg.DB.Driver); err != nil {
				return err
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			u, err := store.NewUserStore(database).Create(cmd.Context(), email, username, hash, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", store.RoleUser, "user or admin")
	for _, f := range []string{"email", "username", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

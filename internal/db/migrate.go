package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/Krupsinko/Bookmark/internal/db/migrations"
)

//go:embed migrations/*.sql
var schema embed.FS

// Migrate applies every pending migration and returns the names of the ones
// it ran, oldest first. The server calls it before it starts listening.
func Migrate(ctx context.Context, conn *sqlx.DB, driver string) ([]string, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	migrations.SetDialect(dialect)

	sqlFiles, err := fs.Sub(schema, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(dialect, conn.DB, sqlFiles)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	applied := make([]string, 0, len(results))
	for _, r := range results {
		applied = append(applied, fmt.Sprintf("%05d %s", r.Source.Version, r.Source.Path))
	}
	return applied, nil
}

func gooseDialect(driver string) (goose.Dialect, error) {
	switch driver {
	case "sqlite3":
		return goose.DialectSQLite3, nil
	case "mysql":
		return goose.DialectMySQL, nil
	case "postgres":
		return goose.DialectPostgres, nil
	}
	return "", fmt.Errorf("no migration dialect for driver %q", driver)
}

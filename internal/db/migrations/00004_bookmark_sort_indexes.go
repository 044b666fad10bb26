package migrations

// Title sorting is case-insensitive (ORDER BY LOWER(title)). PostgreSQL and
// SQLite accept an expression index directly; MySQL needs the expression
// wrapped in its own parentheses and has no IF [NOT] EXISTS for indexes.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upBookmarkSortIndexes, downBookmarkSortIndexes)
}

func upBookmarkSortIndexes(ctx context.Context, tx *sql.Tx) error {
	var stmts []string
	switch dialect {
	case goose.DialectMySQL:
		stmts = []string{
			`CREATE INDEX idx_bookmarks_owner_title ON bookmarks (owner_id, (LOWER(title)))`,
			`CREATE INDEX idx_bookmarks_owner_favorite ON bookmarks (owner_id, favorite, created_at)`,
		}
	default: // sqlite3, postgres
		stmts = []string{
			`CREATE INDEX IF NOT EXISTS idx_bookmarks_owner_title ON bookmarks (owner_id, LOWER(title))`,
			`CREATE INDEX IF NOT EXISTS idx_bookmarks_owner_favorite ON bookmarks (owner_id, favorite, created_at)`,
		}
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create sort index: %w", err)
		}
	}
	return nil
}

func downBookmarkSortIndexes(ctx context.Context, tx *sql.Tx) error {
	var stmts []string
	switch dialect {
	case goose.DialectMySQL:
		stmts = []string{
			`ALTER TABLE bookmarks DROP INDEX idx_bookmarks_owner_title`,
			`ALTER TABLE bookmarks DROP INDEX idx_bookmarks_owner_favorite`,
		}
	default:
		stmts = []string{
			`DROP INDEX IF EXISTS idx_bookmarks_owner_title`,
			`DROP INDEX IF EXISTS idx_bookmarks_owner_favorite`,
		}
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

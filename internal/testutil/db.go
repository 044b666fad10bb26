// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/Krupsinko/Bookmark/internal/db"
)

var dbSeq atomic.Int64

// NewTestDB returns a migrated in-memory SQLite database private to t. It is
// closed when the test ends.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	// Pooled connections only see the same memory database through a named,
	// shared-cache URI. The sequence keeps subtests with equal names apart.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=busy_timeout(5000)", name, dbSeq.Add(1))

	conn, err := db.New("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if _, err := db.Migrate(context.Background(), conn, "sqlite3"); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return conn
}

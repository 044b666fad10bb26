package store

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a requested entity does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already taken")
)

// BookmarkStoreIface exposes all bookmark data operations.
// Every method that addresses a single bookmark takes the caller's user ID
// and only ever sees rows owned by that user.
type BookmarkStoreIface interface {
	Create(ctx context.Context, ownerID string, in BookmarkInput) (*Bookmark, error)
	Get(ctx context.Context, id, ownerID string) (*Bookmark, error)
	List(ctx context.Context, ownerID string, p ListParams) ([]*Bookmark, int, error)
	Update(ctx context.Context, id, ownerID string, patch BookmarkPatch) (*Bookmark, error)
	Delete(ctx context.Context, id, ownerID string) error
	Count(ctx context.Context) (int, error)
}

// UserStoreIface exposes user account operations.
type UserStoreIface interface {
	Create(ctx context.Context, email, username, passwordHash, role string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// TagStoreIface exposes tag operations.
type TagStoreIface interface {
	GetBySlug(ctx context.Context, ownerID, slug string) (*Tag, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*TagCount, error)
}

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// violatesUnique reports whether a unique-constraint error is for
// table.column. Only the constraint or key name is inspected, never the
// offending value the drivers echo back.
func violatesUnique(err error, table, column string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint == table+"_"+column+"_key"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// Duplicate entry '...' for key 'users.email' (8.0) or 'email' (5.7).
		i := strings.LastIndex(myErr.Message, " for key ")
		if i < 0 {
			return false
		}
		key := strings.Trim(myErr.Message[i+len(" for key "):], "'")
		return key == table+"."+column || key == column
	}
	// UNIQUE constraint failed: users.email (2067)
	msg := err.Error()
	i := strings.Index(msg, "UNIQUE constraint failed: ")
	if i < 0 {
		return false
	}
	cols, _, _ := strings.Cut(msg[i+len("UNIQUE constraint failed: "):], " (")
	for _, c := range strings.Split(cols, ", ") {
		if c == table+"."+column {
			return true
		}
	}
	return false
}

var (
	_ UserStoreIface     = (*UserStore)(nil)
	_ BookmarkStoreIface = (*BookmarkStore)(nil)
	_ TagStoreIface      = (*TagStore)(nil)
)

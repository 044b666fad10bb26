package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Every single-bookmark read and write goes through ownedBookmark or
// ownedClause, which filter on the record ID and the caller's user ID in the
// same WHERE clause. A bookmark owned by someone else is indistinguishable
// from one that does not exist: both surface as ErrNotFound.
const ownedClause = `id = ? AND owner_id = ?`

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// ownedBookmark loads bookmark id if ownerID owns it.
func ownedBookmark(ctx context.Context, q queryer, id, ownerID string) (*Bookmark, error) {
	var b Bookmark
	err := sqlx.GetContext(ctx, q, &b, q.Rebind(`SELECT * FROM bookmarks WHERE `+ownedClause), id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

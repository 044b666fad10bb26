package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrInvalidSort is returned for an unknown sort order name.
var ErrInvalidSort = errors.New("sort_by must be one of: newest, oldest, title_asc, title_desc, favorites_first, favorites_last")

// Bookmark represents a row in the bookmarks table plus its ordered tag names.
type Bookmark struct {
	ID          string         `db:"id"`
	OwnerID     string         `db:"owner_id"`
	Title       string         `db:"title"`
	URL         string         `db:"url"`
	Favorite    bool           `db:"favorite"`
	Description sql.NullString `db:"description"`
	FaviconURL  sql.NullString `db:"favicon_url"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	Tags        []string       `db:"-"`
}

// BookmarkInput holds the fields of a new bookmark.
type BookmarkInput struct {
	Title       string
	URL         string
	Favorite    bool
	Description string
	FaviconURL  string
	Tags        []string
}

// BookmarkPatch is a partial update: nil fields are left unchanged. An empty
// Description clears it; a non-nil Tags replaces the whole tag list.
type BookmarkPatch struct {
	Title       *string
	URL         *string
	Favorite    *bool
	Description *string
	Tags        *[]string
}

// SortOrder names one of the supported list orderings.
type SortOrder string

const (
	SortNewest         SortOrder = "newest"
	SortOldest         SortOrder = "oldest"
	SortTitleAsc       SortOrder = "title_asc"
	SortTitleDesc      SortOrder = "title_desc"
	SortFavoritesFirst SortOrder = "favorites_first"
	SortFavoritesLast  SortOrder = "favorites_last"
)

// Every ordering ends on id so pages are stable when the primary key ties.
var sortClauses = map[SortOrder]string{
	SortNewest:         `created_at DESC, id ASC`,
	SortOldest:         `created_at ASC, id ASC`,
	SortTitleAsc:       `LOWER(title) ASC, created_at DESC, id ASC`,
	SortTitleDesc:      `LOWER(title) DESC, created_at DESC, id ASC`,
	SortFavoritesFirst: `favorite DESC, created_at DESC, id ASC`,
	SortFavoritesLast:  `favorite ASC, created_at DESC, id ASC`,
}

// ParseSortOrder maps a query value to a SortOrder. Empty means newest first.
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortNewest, nil
	}
	o := SortOrder(s)
	if _, ok := sortClauses[o]; !ok {
		return "", ErrInvalidSort
	}
	return o, nil
}

// ListParams selects a window of one owner's bookmarks.
type ListParams struct {
	Offset   int
	Limit    int
	Sort     SortOrder
	Tag      string // tag slug filter, optional
	Favorite *bool  // favorite flag filter, optional
}

// BookmarkStore is the sqlx-backed implementation of BookmarkStoreIface.
type BookmarkStore struct {
	db *sqlx.DB
}

func NewBookmarkStore(db *sqlx.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *BookmarkStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a bookmark owned by ownerID together with its tags.
func (s *BookmarkStore) Create(ctx context.Context, ownerID string, in BookmarkInput) (*Bookmark, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO bookmarks (id, owner_id, title, url, favorite, description, favicon_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, ownerID, in.Title, in.URL, in.Favorite, nullString(in.Description), nullString(in.FaviconURL), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert bookmark: %w", err)
	}

	if err := setTagsTx(ctx, tx, id, ownerID, in.Tags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, ownerID)
}

// Get returns bookmark id if ownerID owns it, or ErrNotFound.
func (s *BookmarkStore) Get(ctx context.Context, id, ownerID string) (*Bookmark, error) {
	b, err := ownedBookmark(ctx, s.db, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, []*Bookmark{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns one page of ownerID's bookmarks and the total number of
// bookmarks matching the filters.
func (s *BookmarkStore) List(ctx context.Context, ownerID string, p ListParams) ([]*Bookmark, int, error) {
	order, ok := sortClauses[p.Sort]
	if !ok {
		if p.Sort != "" {
			return nil, 0, ErrInvalidSort
		}
		order = sortClauses[SortNewest]
	}

	where := []string{`owner_id = ?`}
	args := []any{ownerID}
	if p.Favorite != nil {
		where = append(where, `favorite = ?`)
		args = append(args, *p.Favorite)
	}
	if p.Tag != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM bookmark_tags bt
			INNER JOIN tags t ON t.id = bt.tag_id
			WHERE bt.bookmark_id = bookmarks.id AND t.slug = ?)`)
		args = append(args, p.Tag)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.GetContext(ctx, &total, s.q(`SELECT COUNT(*) FROM bookmarks WHERE `+cond), args...); err != nil {
		return nil, 0, fmt.Errorf("count bookmarks: %w", err)
	}

	bookmarks := []*Bookmark{}
	err := s.db.SelectContext(ctx, &bookmarks,
		s.q(`SELECT * FROM bookmarks WHERE `+cond+` ORDER BY `+order+` LIMIT ? OFFSET ?`),
		append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookmarks: %w", err)
	}

	if err := s.loadTags(ctx, bookmarks); err != nil {
		return nil, 0, err
	}
	return bookmarks, total, nil
}

// Update applies patch to bookmark id if ownerID owns it. Concurrent updates
// to the same bookmark are last-write-wins.
func (s *BookmarkStore) Update(ctx context.Context, id, ownerID string, patch BookmarkPatch) (*Bookmark, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := ownedBookmark(ctx, tx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.URL != nil {
		b.URL = *patch.URL
	}
	if patch.Favorite != nil {
		b.Favorite = *patch.Favorite
	}
	if patch.Description != nil {
		b.Description = nullString(*patch.Description)
	}

	// updated_at never moves backwards, even if the clock does.
	now := time.Now().UTC()
	if now.Before(b.UpdatedAt) {
		now = b.UpdatedAt
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE bookmarks SET title = ?, url = ?, favorite = ?, description = ?, updated_at = ?
		WHERE `+ownedClause), b.Title, b.URL, b.Favorite, b.Description, now, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("update bookmark: %w", err)
	}

	if patch.Tags != nil {
		if err := setTagsTx(ctx, tx, id, ownerID, *patch.Tags); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, ownerID)
}

// Delete removes bookmark id if ownerID owns it, or returns ErrNotFound.
func (s *BookmarkStore) Delete(ctx context.Context, id, ownerID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM bookmark_tags WHERE bookmark_id IN (SELECT id FROM bookmarks WHERE `+ownedClause+`)
	`), id, ownerID)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM bookmarks WHERE `+ownedClause), id, ownerID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the number of bookmarks across all users.
func (s *BookmarkStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM bookmarks`)
	return n, err
}

// loadTags fills Tags on each bookmark, in their stored order.
func (s *BookmarkStore) loadTags(ctx context.Context, bookmarks []*Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}
	ids := make([]string, 0, len(bookmarks))
	byID := make(map[string]*Bookmark, len(bookmarks))
	for _, b := range bookmarks {
		b.Tags = []string{}
		ids = append(ids, b.ID)
		byID[b.ID] = b
	}

	query, args, err := sqlx.In(`
		SELECT bt.bookmark_id, t.name FROM bookmark_tags bt
		INNER JOIN tags t ON t.id = bt.tag_id
		WHERE bt.bookmark_id IN (?)
		ORDER BY bt.bookmark_id, bt.position ASC
	`, ids)
	if err != nil {
		return err
	}

	var rows []struct {
		BookmarkID string `db:"bookmark_id"`
		Name       string `db:"name"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for _, r := range rows {
		if b, ok := byID[r.BookmarkID]; ok {
			b.Tags = append(b.Tags, r.Name)
		}
	}
	return nil
}

// setTagsTx replaces the bookmark's tags with names, keeping their order.
func setTagsTx(ctx context.Context, tx *sqlx.Tx, bookmarkID, ownerID string, names []string) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM bookmark_tags WHERE bookmark_id = ?`), bookmarkID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for i, name := range NormalizeTags(names) {
		tag, err := upsertTagTx(ctx, tx, ownerID, name)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO bookmark_tags (bookmark_id, tag_id, position) VALUES (?, ?, ?)
		`), bookmarkID, tag.ID, i)
		if err != nil {
			return fmt.Errorf("attach tag %q: %w", name, err)
		}
	}
	return nil
}

// NormalizeTags trims names and drops blanks and duplicates (by slug),
// keeping the first occurrence of each.
func NormalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		slug := DeriveTagSlug(n)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, n)
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var tagSlugStripRe = regexp.MustCompile(`[^a-z0-9-]`)

// Tag represents a row in the tags table.
type Tag struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

// TagCount is a tag together with how many of one user's bookmarks carry it.
type TagCount struct {
	Name  string `db:"name"`
	Slug  string `db:"slug"`
	Count int    `db:"bookmark_count"`
}

// TagStore is the sqlx-backed implementation of TagStoreIface.
type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// DeriveTagSlug derives a URL-safe slug from a tag name:
// lowercase, replace spaces/underscores with hyphens, strip non-[a-z0-9-].
func DeriveTagSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = tagSlugStripRe.ReplaceAllString(s, "")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// upsertTagTx returns ownerID's tag for name's slug, creating it if needed.
// Tags are private to their owner; the first spelling of a slug is kept.
func upsertTagTx(ctx context.Context, tx *sqlx.Tx, ownerID, name string) (*Tag, error) {
	slug := DeriveTagSlug(name)

	var existing Tag
	err := tx.GetContext(ctx, &existing, tx.Rebind(`SELECT * FROM tags WHERE owner_id = ? AND slug = ?`), ownerID, slug)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO tags (id, owner_id, name, slug, created_at) VALUES (?, ?, ?, ?, ?)
	`), id, ownerID, strings.TrimSpace(name), slug, now)
	if err != nil {
		// Race condition: another request inserted first. Re-fetch.
		if isUniqueConstraintError(err) {
			err = tx.GetContext(ctx, &existing, tx.Rebind(`SELECT * FROM tags WHERE owner_id = ? AND slug = ?`), ownerID, slug)
			if err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}

	return &Tag{ID: id, OwnerID: ownerID, Name: strings.TrimSpace(name), Slug: slug, CreatedAt: now}, nil
}

// GetBySlug returns ownerID's tag matching slug, or ErrNotFound.
func (s *TagStore) GetBySlug(ctx context.Context, ownerID, slug string) (*Tag, error) {
	var t Tag
	err := s.db.GetContext(ctx, &t, s.db.Rebind(`SELECT * FROM tags WHERE owner_id = ? AND slug = ?`), ownerID, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListForOwner returns ownerID's tags that are attached to at least one
// bookmark, with per-tag bookmark counts.
func (s *TagStore) ListForOwner(ctx context.Context, ownerID string) ([]*TagCount, error) {
	var tags []*TagCount
	err := s.db.SelectContext(ctx, &tags, s.db.Rebind(`
		SELECT t.name, t.slug, COUNT(*) AS bookmark_count
		FROM tags t
		INNER JOIN bookmark_tags bt ON bt.tag_id = t.id
		WHERE t.owner_id = ?
		GROUP BY t.name, t.slug
		ORDER BY t.slug ASC
	`), ownerID)
	if err != nil {
		return nil, err
	}
	return tags, nil
}

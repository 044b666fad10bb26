package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// IsAdmin reports whether u holds the admin role, which passes every role check.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// Create registers a new active user. Email is checked before username so a
// caller re-registering the same account is told about the email first.
func (s *UserStore) Create(ctx context.Context, email, username, passwordHash, role string) (*User, error) {
	if role == "" {
		role = RoleUser
	}

	if _, err := s.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := s.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, email, username, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), id, email, username, passwordHash, role, true, now, now)
	if err != nil {
		// Lost a race with a concurrent registration.
		if isUniqueConstraintError(err) {
			if violatesUnique(err, "users", "email") {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the user matching id, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	return s.getBy(ctx, "id", id)
}

// GetByEmail returns the user matching email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.getBy(ctx, "email", email)
}

// GetByUsername returns the user matching username, or ErrNotFound.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.getBy(ctx, "username", username)
}

func (s *UserStore) getBy(ctx context.Context, column, value string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE `+column+` = ?`), value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetActive enables or disables a user account.
func (s *UserStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`),
		active, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a user together with every bookmark they own. The schema
// cascades on its own, but the explicit deletes keep the invariant on
// SQLite connections opened without foreign key enforcement.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM bookmark_tags WHERE bookmark_id IN (SELECT id FROM bookmarks WHERE owner_id = ?)
	`), id); err != nil {
		return err
	}
	for _, stmt := range []string{
		`DELETE FROM bookmarks WHERE owner_id = ?`,
		`DELETE FROM tags WHERE owner_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the number of registered users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

// requireRow maps a zero-row write to ErrNotFound.
func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

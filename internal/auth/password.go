package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Krupsinko/Bookmark/internal/store"
)

// ErrInvalidCredentials is returned for an unknown username, a wrong
// password or a deactivated account alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the username does not exist so that
// lookups of unknown users cost the same as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("bookmarks-timing-pad"), bcrypt.DefaultCost)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword reports ErrInvalidCredentials if password does not match hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// UserFinder looks users up by username.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*store.User, error)
}

// Authenticate resolves a username/password pair to an active user.
func Authenticate(ctx context.Context, users UserFinder, username, password string) (*store.User, error) {
	u, err := users.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

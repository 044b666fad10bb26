package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krupsinko/Bookmark/internal/store"
)

var testUser = &store.User{ID: "user-1", Username: "alice", Role: store.RoleUser, IsActive: true}

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(TokenConfig{Secret: "testkey", Algorithm: "HS256"})
	require.NoError(t, err)
	return ts
}

func signRaw(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestIssue_Claims(t *testing.T) {
	ts := newTestTokens(t)
	frozen := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return frozen }

	token, err := ts.Issue(testUser)
	require.NoError(t, err)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, frozen.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, frozen.Unix(), claims.IssuedAt.Unix())
}

func TestVerify_Expired(t *testing.T) {
	ts := newTestTokens(t)
	past := time.Now().Add(-time.Hour)
	token := signRaw(t, jwt.SigningMethodHS256, []byte("testkey"), Claims{
		UserID: "user-1",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(past),
		},
	})

	_, err := ts.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerify_Rejections(t *testing.T) {
	ts := newTestTokens(t)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{"bad signature", signRaw(t, jwt.SigningMethodHS256, []byte("otherkey"), Claims{
			UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp},
		})},
		{"wrong algorithm", signRaw(t, jwt.SigningMethodHS512, []byte("testkey"), Claims{
			UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp},
		})},
		{"missing id", signRaw(t, jwt.SigningMethodHS256, []byte("testkey"), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp},
		})},
		{"missing sub", signRaw(t, jwt.SigningMethodHS256, []byte("testkey"), Claims{
			UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
		})},
		{"missing exp", signRaw(t, jwt.SigningMethodHS256, []byte("testkey"), Claims{
			UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
		})},
		{"unsigned", signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, Claims{
			UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp},
		})},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokenService_Config(t *testing.T) {
	_, err := NewTokenService(TokenConfig{Algorithm: "HS256"})
	assert.Error(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "k", Algorithm: "RS256"})
	assert.Error(t, err)

	ts, err := NewTokenService(TokenConfig{Secret: "k", Algorithm: "HS384", Lifetime: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, "HS384", ts.method.Alg())
	assert.Equal(t, time.Minute, ts.lifetime)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

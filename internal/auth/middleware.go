package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Krupsinko/Bookmark/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

// UserGetter loads users by ID.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*store.User, error)
}

// BearerTokenMiddleware authenticates API requests via a signed bearer token.
type BearerTokenMiddleware struct {
	tokens *TokenService
	users  UserGetter
}

func NewBearerTokenMiddleware(ts *TokenService, users UserGetter) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{tokens: ts, users: users}
}

// Authenticate puts the token's *store.User on the request context. Missing,
// invalid or expired tokens, and tokens of deleted or deactivated users, all
// get the same 401.
func (m *BearerTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w)
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		user, err := m.users.GetByID(r.Context(), claims.UserID)
		if err != nil || !user.IsActive || user.Username != claims.Subject {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns a middleware that requires the user to have the given
// role. Admins pass any role check. Must be used after Authenticate.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil || (user.Role != role && !user.IsAdmin()) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"error": "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext retrieves the authenticated user from the context.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(UserContextKey).(*store.User)
	return u
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeUnauthorized writes a 401 JSON response with {"error": "unauthorized"}.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

package api

import (
	"time"

	"github.com/Krupsinko/Bookmark/internal/store"
)

// --- User types ---

// CreateUserRequest is the request body for POST /user/. Admin accounts are
// created from the command line, never through self-registration.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user"`
}

// UserResponse is the JSON representation of a user. It never carries the
// password hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *store.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// TokenResponse is returned by the password grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// --- Bookmark types ---

// CreateBookmarkRequest is the request body for POST /bookmarks/.
type CreateBookmarkRequest struct {
	Title       string   `json:"title" validate:"max=100"`
	URL         string   `json:"url" validate:"required,http_url,max=2048"`
	Favorite    bool     `json:"favorite"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=255"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=255,dive,required,max=50"`
}

// UpdateBookmarkRequest is the request body for PUT /bookmarks/{id}.
// Omitted fields keep their stored value.
type UpdateBookmarkRequest struct {
	Title       *string   `json:"title" validate:"omitempty,max=100"`
	URL         *string   `json:"url" validate:"omitnil,http_url,max=2048"`
	Favorite    *bool     `json:"favorite"`
	Description *string   `json:"description" validate:"omitempty,max=255"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=255,dive,required,max=50"`
}

func (r *UpdateBookmarkRequest) patch() store.BookmarkPatch {
	return store.BookmarkPatch{
		Title:       r.Title,
		URL:         r.URL,
		Favorite:    r.Favorite,
		Description: r.Description,
		Tags:        r.Tags,
	}
}

// BookmarkResponse is the JSON representation of a single bookmark.
type BookmarkResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Favorite    bool      `json:"favorite"`
	Description *string   `json:"description"`
	FaviconURL  *string   `json:"favicon_url"`
	Tags        []string  `json:"tags"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBookmarkResponse(b *store.Bookmark) *BookmarkResponse {
	resp := &BookmarkResponse{
		ID:        b.ID,
		Title:     b.Title,
		URL:       b.URL,
		Favorite:  b.Favorite,
		Tags:      b.Tags,
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Description.Valid {
		resp.Description = &b.Description.String
	}
	if b.FaviconURL.Valid {
		resp.FaviconURL = &b.FaviconURL.String
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	return resp
}

// BookmarkListResponse is one page of the caller's bookmarks.
type BookmarkListResponse struct {
	Total int                 `json:"total"`
	Page  int                 `json:"page"`
	Size  int                 `json:"size"`
	Items []*BookmarkResponse `json:"items"`
}

// --- Tag types ---

// TagResponse is the JSON representation of a tag.
type TagResponse struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	BookmarkCount int    `json:"bookmark_count"`
}

// TagListResponse lists the caller's tags.
type TagListResponse struct {
	Tags []*TagResponse `json:"tags"`
}

// --- Admin types ---

// StatsResponse reports instance-wide totals.
type StatsResponse struct {
	Users     int `json:"users"`
	Bookmarks int `json:"bookmarks"`
}

// SetActiveRequest is the request body for PUT /admin/users/{id}/active.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// HealthResponse is returned by GET /healthy.
type HealthResponse struct {
	Status string `json:"status"`
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Krupsinko/Bookmark/internal/auth"
	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/metrics"
	"github.com/Krupsinko/Bookmark/internal/store"
)

// usersAPIHandler provides registration, login and profile endpoints.
type usersAPIHandler struct {
	users    store.UserStoreIface
	tokens   *auth.TokenService
	validate *requestValidator
	log      logger.Logger
}

// Register creates an account.
// POST /user/
//
// @Summary      Register
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        body  body      CreateUserRequest  true  "Account to create"
// @Success      201   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /user/ [post]
func (h *usersAPIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if fields := h.validate.check(&req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("hash password", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	role := req.Role
	if role == "" {
		role = store.RoleUser
	}
	u, err := h.users.Create(r.Context(), req.Email, req.Username, hash, role)
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email already registered.", "EMAIL_TAKEN")
		return
	case errors.Is(err, store.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username already taken.", "USERNAME_TAKEN")
		return
	case err != nil:
		h.log.Error("create user", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Login exchanges a username and password for a bearer token.
// POST /user/token
//
// @Summary      Obtain an access token
// @Description  OAuth2 password grant. Tokens expire after 30 minutes by default.
// @Tags         User
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  TokenResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /user/token [post]
func (h *usersAPIHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body", "BAD_REQUEST")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeValidationError(w, missingFormFields(username, password))
		return
	}

	u, err := auth.Authenticate(r.Context(), h.users, username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
		return
	}
	if err != nil {
		h.log.Error("authenticate", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		h.log.Error("issue token", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func missingFormFields(username, password string) map[string]string {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "is required"
	}
	if password == "" {
		fields["password"] = "is required"
	}
	return fields
}

// Me returns the authenticated caller's profile.
// GET /user/me
//
// @Summary      Current user
// @Tags         User
// @Produce      json
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /user/me [get]
func (h *usersAPIHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteMe deletes the caller's account together with all of its bookmarks.
// DELETE /user/me
//
// @Summary      Delete account
// @Tags         User
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /user/me [delete]
func (h *usersAPIHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}
	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
			return
		}
		h.log.Error("delete user", logger.String("user_id", user.ID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

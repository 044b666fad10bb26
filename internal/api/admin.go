package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/store"
)

// adminAPIHandler provides REST handlers for admin-only endpoints. The role
// check happens in the router.
type adminAPIHandler struct {
	users     store.UserStoreIface
	bookmarks store.BookmarkStoreIface
	validate  *requestValidator
	log       logger.Logger
}

// Stats returns instance-wide totals.
// GET /admin/stats
//
// @Summary      Instance totals (admin)
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  StatsResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/stats [get]
func (h *adminAPIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Count(r.Context())
	if err != nil {
		h.log.Error("count users", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	bookmarks, err := h.bookmarks.Count(r.Context())
	if err != nil {
		h.log.Error("count bookmarks", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Users: users, Bookmarks: bookmarks})
}

// SetActive enables or disables a user account. Disabled users cannot log
// in and their outstanding tokens stop working.
// PUT /admin/users/{id}/active
//
// @Summary      Enable or disable a user (admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "User ID"
// @Param        body  body      SetActiveRequest  true  "New state"
// @Success      200   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/users/{id}/active [put]
func (h *adminAPIHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if fields := h.validate.check(&req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.users.SetActive(r.Context(), id, *req.Active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found", "NOT_FOUND")
			return
		}
		h.log.Error("set user active", logger.String("user_id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.log.Error("reload user", logger.String("user_id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

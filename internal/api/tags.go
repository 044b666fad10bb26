package api

import (
	"net/http"

	"github.com/Krupsinko/Bookmark/internal/auth"
	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/store"
)

// tagsAPIHandler provides REST handlers for tag endpoints.
type tagsAPIHandler struct {
	tags store.TagStoreIface
	log  logger.Logger
}

// List returns the caller's tags that are on at least one bookmark.
// GET /tags/
//
// @Summary      List tags
// @Tags         Tags
// @Produce      json
// @Success      200  {object}  TagListResponse
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /tags/ [get]
func (h *tagsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	counts, err := h.tags.ListForOwner(r.Context(), user.ID)
	if err != nil {
		h.log.Error("list tags", logger.String("user_id", user.ID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := &TagListResponse{Tags: make([]*TagResponse, 0, len(counts))}
	for _, t := range counts {
		resp.Tags = append(resp.Tags, &TagResponse{
			Slug:          t.Slug,
			Name:          t.Name,
			BookmarkCount: t.Count,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

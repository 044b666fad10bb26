package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/Krupsinko/Bookmark/internal/auth"
	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/metrics"
	"github.com/Krupsinko/Bookmark/internal/store"
)

const maxTitleRunes = 100

// bookmarksAPIHandler provides REST handlers for the caller's bookmarks.
// Records owned by someone else are reported as not found.
type bookmarksAPIHandler struct {
	bookmarks store.BookmarkStoreIface
	tags      store.TagStoreIface
	enricher  Enricher
	validate  *requestValidator
	log       logger.Logger
}

// List returns one page of the caller's bookmarks.
// GET /bookmarks/
//
// @Summary      List bookmarks
// @Tags         Bookmarks
// @Produce      json
// @Param        skip      query     int     false  "Items to skip"  minimum(0)  default(0)
// @Param        limit     query     int     false  "Page size"  minimum(1)  maximum(100)  default(10)
// @Param        sort_by   query     string  false  "Ordering"  Enums(newest, oldest, title_asc, title_desc, favorites_first, favorites_last)
// @Param        tag       query     string  false  "Only bookmarks carrying this tag"
// @Param        favorite  query     bool    false  "Only favorites (true) or non-favorites (false)"
// @Success      200  {object}  BookmarkListResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks/ [get]
func (h *bookmarksAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	params, fields := parseListParams(r)
	if fields != nil {
		writeValidationError(w, fields)
		return
	}

	if params.Tag != "" {
		_, err := h.tags.GetBySlug(r.Context(), user.ID, params.Tag)
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusOK, &BookmarkListResponse{
				Page:  pageNumber(params.Offset, params.Limit),
				Items: []*BookmarkResponse{},
			})
			return
		}
		if err != nil {
			h.log.Error("look up tag", logger.String("user_id", user.ID), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
			return
		}
	}

	items, total, err := h.bookmarks.List(r.Context(), user.ID, params)
	if err != nil {
		h.log.Error("list bookmarks", logger.String("user_id", user.ID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := &BookmarkListResponse{
		Total: total,
		Page:  pageNumber(params.Offset, params.Limit),
		Size:  len(items),
		Items: make([]*BookmarkResponse, 0, len(items)),
	}
	for _, b := range items {
		resp.Items = append(resp.Items, toBookmarkResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create saves a bookmark for the caller. The page is fetched once; its
// <title> replaces the submitted title unless the page has none.
// POST /bookmarks/
//
// @Summary      Create a bookmark
// @Tags         Bookmarks
// @Accept       json
// @Produce      json
// @Param        body  body      CreateBookmarkRequest  true  "Bookmark to create"
// @Success      201   {object}  BookmarkResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks/ [post]
func (h *bookmarksAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req CreateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if fields := h.validate.check(&req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	in := store.BookmarkInput{
		Title:       req.Title,
		URL:         req.URL,
		Favorite:    req.Favorite,
		Description: req.Description,
		Tags:        req.Tags,
	}
	if h.enricher != nil {
		md := h.enricher.Enrich(r.Context(), req.URL)
		if t := clampTitle(md.Title); t != "" {
			in.Title = t
		}
		in.FaviconURL = md.FaviconURL
	}

	b, err := h.bookmarks.Create(r.Context(), user.ID, in)
	if err != nil {
		h.log.Error("create bookmark", logger.String("user_id", user.ID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	metrics.BookmarksCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, toBookmarkResponse(b))
}

// Get returns one of the caller's bookmarks.
// GET /bookmarks/{id}
//
// @Summary      Get a bookmark
// @Tags         Bookmarks
// @Produce      json
// @Param        id   path      string  true  "Bookmark ID"
// @Success      200  {object}  BookmarkResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks/{id} [get]
func (h *bookmarksAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	b, err := h.bookmarks.Get(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		h.writeStoreError(w, "get bookmark", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookmarkResponse(b))
}

// Update changes the fields present in the body. Omitted fields are kept;
// a tags array replaces the existing tags.
// PUT /bookmarks/{id}
//
// @Summary      Update a bookmark
// @Tags         Bookmarks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Bookmark ID"
// @Param        body  body      UpdateBookmarkRequest  true  "Fields to change"
// @Success      200   {object}  BookmarkResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks/{id} [put]
func (h *bookmarksAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req UpdateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if fields := h.validate.check(&req); fields != nil {
		writeValidationError(w, fields)
		return
	}

	b, err := h.bookmarks.Update(r.Context(), chi.URLParam(r, "id"), user.ID, req.patch())
	if err != nil {
		h.writeStoreError(w, "update bookmark", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookmarkResponse(b))
}

// Delete removes one of the caller's bookmarks.
// DELETE /bookmarks/{id}
//
// @Summary      Delete a bookmark
// @Tags         Bookmarks
// @Param        id   path  string  true  "Bookmark ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks/{id} [delete]
func (h *bookmarksAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	if err := h.bookmarks.Delete(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		h.writeStoreError(w, "delete bookmark", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *bookmarksAPIHandler) writeStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Bookmark not found", "NOT_FOUND")
		return
	}
	h.log.Error(op, logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
}

// clampTitle trims a scraped title to the stored column width.
func clampTitle(s string) string {
	if utf8.RuneCountInString(s) <= maxTitleRunes {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == maxTitleRunes {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

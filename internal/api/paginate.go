package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Krupsinko/Bookmark/internal/store"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// parseListParams reads skip, limit, sort_by, tag and favorite from the
// query string. Out-of-range values are rejected rather than clamped.
func parseListParams(r *http.Request) (store.ListParams, map[string]string) {
	q := r.URL.Query()
	p := store.ListParams{Limit: defaultLimit}
	fields := map[string]string{}

	if s := q.Get("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			fields["skip"] = "must be an integer >= 0"
		} else {
			p.Offset = n
		}
	}

	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > maxLimit {
			fields["limit"] = "must be an integer between 1 and " + strconv.Itoa(maxLimit)
		} else {
			p.Limit = n
		}
	}

	sort, err := store.ParseSortOrder(q.Get("sort_by"))
	if err != nil {
		fields["sort_by"] = err.Error()
	}
	p.Sort = sort

	if t := strings.TrimSpace(q.Get("tag")); t != "" {
		p.Tag = store.DeriveTagSlug(t)
		if p.Tag == "" {
			fields["tag"] = "must contain a letter or digit"
		}
	}

	if f := q.Get("favorite"); f != "" {
		b, err := strconv.ParseBool(f)
		if err != nil {
			fields["favorite"] = "must be true or false"
		} else {
			p.Favorite = &b
		}
	}

	if len(fields) > 0 {
		return p, fields
	}
	return p, nil
}

// pageNumber is the 1-based page a window starting at offset falls on.
func pageNumber(offset, limit int) int {
	return offset/limit + 1
}

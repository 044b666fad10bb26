package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Krupsinko/Bookmark/internal/auth"
	"github.com/Krupsinko/Bookmark/internal/logger"
	"github.com/Krupsinko/Bookmark/internal/scrape"
	"github.com/Krupsinko/Bookmark/internal/store"
)

// Enricher looks up a page's title and favicon. Failures come back as empty
// fields.
type Enricher interface {
	Enrich(ctx context.Context, url string) scrape.Metadata
}

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Logger    logger.Logger
	Tokens    *auth.TokenService
	Users     store.UserStoreIface
	Bookmarks store.BookmarkStoreIface
	Tags      store.TagStoreIface
	Enricher  Enricher
}

// NewRouter builds the full HTTP surface. Everything except registration,
// login, health, metrics and docs requires a bearer token.
func NewRouter(deps Deps) chi.Router {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	v := newRequestValidator()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthy", healthy)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/doc.json", docJSON)

	bearer := auth.NewBearerTokenMiddleware(deps.Tokens, deps.Users)
	users := &usersAPIHandler{users: deps.Users, tokens: deps.Tokens, validate: v, log: log}
	bookmarks := &bookmarksAPIHandler{
		bookmarks: deps.Bookmarks,
		tags:      deps.Tags,
		enricher:  deps.Enricher,
		validate:  v,
		log:       log,
	}
	tags := &tagsAPIHandler{tags: deps.Tags, log: log}
	admin := &adminAPIHandler{users: deps.Users, bookmarks: deps.Bookmarks, validate: v, log: log}

	r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		r.Post("/user/", users.Register)
		r.Post("/user/token", users.Login)

		r.Group(func(r chi.Router) {
			r.Use(bearer.Authenticate)

			r.Get("/user/me", users.Me)
			r.Delete("/user/me", users.DeleteMe)

			r.Route("/bookmarks", func(r chi.Router) {
				r.Get("/", bookmarks.List)
				r.Post("/", bookmarks.Create)
				r.Get("/{id}", bookmarks.Get)
				r.Put("/{id}", bookmarks.Update)
				r.Delete("/{id}", bookmarks.Delete)
			})

			r.Get("/tags/", tags.List)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireRole(store.RoleAdmin))
				r.Get("/stats", admin.Stats)
				r.Put("/users/{id}/active", admin.SetActive)
			})
		})
	})

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// accessLog logs one line per request.
func accessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("http_request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", status),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("duration", time.Since(start)),
				logger.String("remote_ip", r.RemoteAddr),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

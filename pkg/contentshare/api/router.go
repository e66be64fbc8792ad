// Package api exposes the content service over HTTP with chi. Page routes
// answer with JSON view models; admin routes are gated to the ADMIN role.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/tendant/content-share/pkg/contentshare"
	"github.com/tendant/content-share/pkg/contentshare/auth"
)

// RouterConfig holds the HTTP-level settings
type RouterConfig struct {
	Auth               *auth.Manager
	AuthCookieName     string
	DashboardPageSize  int
	AdminPageSize      int
	MaxUploadBytes     int64
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	Logger             *slog.Logger

	// MediaStore, when set, is served under MediaPath for backends that
	// have no public address of their own.
	MediaStore contentshare.BlobStore
	MediaPath  string
}

// NewRouter wires the public and admin handlers behind the shared middleware stack
func NewRouter(service contentshare.Service, storage contentshare.ObjectStorage, cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           300,
	}))
	r.Use(Authenticate(cfg.Auth, cfg.AuthCookieName, logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	var limiter *RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	admin := NewAdminHandler(service, storage, cfg.AdminPageSize, cfg.MaxUploadBytes, logger)
	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireRole(auth.RoleAdmin))
		r.Mount("/", admin.Routes())
	})

	if cfg.MediaStore != nil {
		mediaPath := cfg.MediaPath
		if mediaPath == "" {
			mediaPath = DefaultMediaPath
		}
		r.Mount(mediaPath, NewMediaHandler(cfg.MediaStore, logger).Routes())
	}

	content := NewContentHandler(service, storage, cfg.DashboardPageSize, limiter, logger)
	r.Mount("/", content.Routes())

	return r
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

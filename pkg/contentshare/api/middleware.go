package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/content-share/pkg/contentshare/auth"
	"golang.org/x/time/rate"
)

const (
	// DefaultAuthCookieName is the cookie checked for a session token when no bearer header is sent
	DefaultAuthCookieName = "auth_token"

	visitorCookieName = "visitor_id"
	visitorPrefix     = "visitor:"
)

// ErrorResponse is the body of a failed JSON request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Success: false, Error: message})
}

// Authenticate resolves the caller identity from a bearer token or the auth
// cookie. Missing or invalid tokens leave the request anonymous.
func Authenticate(manager *auth.Manager, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultAuthCookieName
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(cookieName); err == nil {
					token = c.Value
				}
			}

			if token != "" && manager != nil {
				id, err := manager.ParseToken(token)
				if err != nil {
					logger.Debug("Ignoring invalid token", "err", err)
				} else {
					r = r.WithContext(auth.WithIdentity(r.Context(), id))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireRole rejects anonymous callers with 401 and callers lacking role with 403
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.FromContext(r.Context())
			if id.Anonymous() {
				renderError(w, r, http.StatusUnauthorized, "Authentication required.")
				return
			}
			if id.Role != role {
				renderError(w, r, http.StatusForbidden, "Access denied.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// likerID returns the identity likes are recorded under: the user id for
// signed-in callers, otherwise the browser's visitor id. When create is set
// a visitor cookie is issued to browsers that have none.
func likerID(w http.ResponseWriter, r *http.Request, create bool) string {
	if id := auth.FromContext(r.Context()); !id.Anonymous() {
		return id.UserID
	}

	if c, err := r.Cookie(visitorCookieName); err == nil {
		if v, err := uuid.Parse(c.Value); err == nil {
			return visitorPrefix + v.String()
		}
	}
	if !create {
		return ""
	}

	v := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    v.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return visitorPrefix + v.String()
}

const (
	// visitorIdleTTL is how long an idle client's bucket is kept
	visitorIdleTTL = 5 * time.Minute
	sweepInterval  = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than visitorIdleTTL are dropped.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(rps),
		burst:     burst,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep drops idle buckets. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-visitorIdleTTL)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
	rl.lastSweep = now
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Middleware answers 429 once a client exhausts its bucket
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			renderError(w, r, http.StatusTooManyRequests, "Too many requests.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

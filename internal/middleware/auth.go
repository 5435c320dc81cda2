package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/apperr"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	IdentityContextKey contextKey = "identity"
)

// Resolver turns an Authorization header into the caller's identity.
type Resolver interface {
	Resolve(ctx context.Context, header string) (*models.Identity, error)
}

// AuthMiddleware provides bearer token authentication
type AuthMiddleware struct {
	resolver Resolver
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(resolver Resolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Authenticate resolves the bearer token and adds the identity to the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole lets the request through when the caller holds one of roles.
// Admins pass every check. Failures are 400, as for other domain rules.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	denied := apperr.Authorization("ACCESS_DENIED", "Access denied")
	if len(roles) == 1 {
		denied = denied.WithMessage("Access denied: " + string(roles[0]) + " only")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				WriteError(w, r, apperr.Authorization("UNAUTHENTICATED", "Unauthenticated"))
				return
			}
			if !identity.HasAnyRole(roles...) {
				WriteError(w, r, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom extracts the caller identity from request context
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*models.Identity)
	return identity, ok && identity != nil
}

// WriteError writes err as a JSON error body. Internal errors are logged
// with their cause and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		entry := log.WithError(err)
		if r != nil {
			entry = entry.WithFields(log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": RequestIDFrom(r.Context()),
			})
		}
		entry.Error("Request failed")
		e = apperr.Internal("Internal server error", nil)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status())
	_ = json.NewEncoder(w).Encode(e.Body())
}

// ErrRateLimited is returned once a client exceeds its request budget.
var ErrRateLimited = &apperr.Error{Kind: apperr.KindValidation, Code: "RATE_LIMITED", Message: "Too many login attempts, please try again later"}

// RateLimitMiddleware provides basic rate limiting
type RateLimitMiddleware struct {
	requests map[string][]time.Time // IP -> request times
	mu       sync.Mutex
	now      func() time.Time
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// RateLimit allows maxRequests per client IP within window and answers
// 429 beyond that.
func (m *RateLimitMiddleware) RateLimit(maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.allow(getClientIP(r), maxRequests, window) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(ErrRateLimited.Body())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *RateLimitMiddleware) allow(clientIP string, maxRequests int, window time.Duration) bool {
	now := m.now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	valid := m.requests[clientIP][:0]
	for _, ts := range m.requests[clientIP] {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	if len(valid) >= maxRequests {
		m.requests[clientIP] = valid
		return false
	}
	m.requests[clientIP] = append(valid, now)
	return true
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check for forwarded headers first
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	// Fall back to remote address
	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}

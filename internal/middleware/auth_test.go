package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/apperr"
	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthenticator(t *testing.T) (*auth.Authenticator, string) {
	t.Helper()
	authenticator := auth.NewAuthenticator(auth.NewService("middleware-secret", 0), db.NewMemoryStore(), nil, nil)
	_, err := authenticator.SeedAdmin(context.Background(), "root@admin.com", "Adm1n!pass")
	require.NoError(t, err)
	resp, err := authenticator.Login(context.Background(), models.LoginRequest{Email: "root@admin.com", Password: "Adm1n!pass"})
	require.NoError(t, err)
	return authenticator, resp.Token
}

type staticResolver struct {
	identity *models.Identity
	err      error
}

func (s staticResolver) Resolve(context.Context, string) (*models.Identity, error) {
	return s.identity, s.err
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authenticator, token := newAuthenticator(t)
	middleware := NewAuthMiddleware(authenticator)

	// Test successful authentication
	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/vehicles", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			identity, ok := IdentityFrom(r.Context())
			assert.True(t, ok)
			assert.Equal(t, models.RoleAdmin, identity.Role)
			assert.Equal(t, "root@admin.com", identity.Email)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	// Test missing authorization header
	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/vehicles", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Missing token", body["message"])
	})

	// Test invalid token
	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/vehicles", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token", decodeBody(t, w)["message"])
	})

	// Test store failure while resolving
	t.Run("resolver failure", func(t *testing.T) {
		failing := NewAuthMiddleware(staticResolver{err: errors.New("mongo down")})
		req := httptest.NewRequest("GET", "/api/vehicles", nil)
		w := httptest.NewRecorder()

		failing.Authenticate(http.NotFoundHandler()).ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Internal server error", body["message"])
		assert.NotContains(t, w.Body.String(), "mongo down")
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	admin := &models.Identity{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	technician := &models.Identity{ID: primitive.NewObjectID(), Role: models.RoleTechnician}

	tests := []struct {
		name       string
		identity   *models.Identity
		roles      []models.Role
		wantCalled bool
		wantMsg    string
	}{
		{"admin passes technician check", admin, []models.Role{models.RoleTechnician}, true, ""},
		{"technician passes own role", technician, []models.Role{models.RoleTechnician}, true, ""},
		{"technician on admin route", technician, []models.Role{models.RoleAdmin}, false, "Access denied: admin only"},
		{"unknown role on shared route", &models.Identity{Role: "guest"}, []models.Role{models.RoleAdmin, models.RoleTechnician}, false, "Access denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := NewAuthMiddleware(staticResolver{identity: tt.identity})
			req := httptest.NewRequest("GET", "/api/vehicles", nil)
			w := httptest.NewRecorder()

			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			middleware.Authenticate(middleware.RequireRole(tt.roles...)(handler)).ServeHTTP(w, req)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			if !tt.wantCalled {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, tt.wantMsg, decodeBody(t, w)["message"])
			}
		})
	}

	t.Run("no identity in context", func(t *testing.T) {
		middleware := NewAuthMiddleware(staticResolver{})
		w := httptest.NewRecorder()
		middleware.RequireRole(models.RoleAdmin)(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Unauthenticated", decodeBody(t, w)["message"])
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	err := apperr.Conflict("OPEN_UNPAID_SERVICE", "Existing unpaid service present").With("service_id", "abc")
	WriteError(w, nil, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decodeBody(t, w)
	assert.Equal(t, "OPEN_UNPAID_SERVICE", body["code"])
	assert.Equal(t, "abc", body["service_id"])
}

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware()
	clock := time.Date(2025, time.October, 28, 10, 0, 0, 0, time.UTC)
	middleware.now = func() time.Time { return clock }

	t.Run("rate limit not exceeded", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(5, time.Minute)(handler)
		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = "192.168.1.2:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(1, time.Minute)(handler)

		// First request should succeed
		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)

		// Second request should be rate limited
		w = httptest.NewRecorder()
		handlerCalled = false
		rateLimitHandler.ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
		assert.Equal(t, "RATE_LIMITED", decodeBody(t, w)["code"])

		// The window slides
		clock = clock.Add(61 * time.Second)
		w = httptest.NewRecorder()
		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", getClientIP(req))
}

func TestIdentityFrom(t *testing.T) {
	identity := &models.Identity{ID: primitive.NewObjectID(), Role: models.RoleTechnician}
	ctx := context.WithValue(context.Background(), IdentityContextKey, identity)

	got, ok := IdentityFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, identity.ID, got.ID)

	// Test with no identity in context
	_, ok = IdentityFrom(context.Background())
	assert.False(t, ok)
}

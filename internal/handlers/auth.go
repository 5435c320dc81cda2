package handlers

import (
	"context"
	"net/http"

	"github.com/ukydev/fleet-maintenance/internal/apperr"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// AuthService signs callers in and out.
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, identity *models.Identity) error
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService AuthService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := decodeJSON(w, r, &loginReq); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), loginReq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the caller's token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if caller == nil {
		writeError(w, r, apperr.Unauthenticated("Missing token"))
		return
	}
	if err := h.authService.Logout(r.Context(), caller); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful. Token revoked."})
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/apperr"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrLoginFailed is returned for an unknown email or a wrong password.
var ErrLoginFailed = apperr.Validation("INVALID_CREDENTIALS", "Invalid credentials")

// Authenticator signs users in and out and resolves bearer tokens into
// identities.
type Authenticator struct {
	tokens      *Service
	credentials db.CredentialCollection
	technicians db.TechnicianCollection
	revoker     Revoker
	log         *logrus.Entry
}

// NewAuthenticator wires an Authenticator. A nil revoker falls back to the
// store's revoked-token collection.
func NewAuthenticator(tokens *Service, store *db.Store, revoker Revoker, log *logrus.Entry) *Authenticator {
	if revoker == nil {
		revoker = store.Revoked
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Authenticator{
		tokens:      tokens,
		credentials: store.Credentials,
		technicians: store.Technicians,
		revoker:     revoker,
		log:         log,
	}
}

// Login checks the credentials and issues an access token.
func (a *Authenticator) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	credential, err := a.credentials.FindCredentialByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrLoginFailed
		}
		return nil, apperr.Internal("Internal server error", fmt.Errorf("find credential: %w", err))
	}
	if !a.tokens.CheckPassword(req.Password, credential.PasswordHash) {
		return nil, ErrLoginFailed
	}

	token, _, err := a.tokens.GenerateToken(credential)
	if err != nil {
		return nil, apperr.Internal("Internal server error", err)
	}
	a.log.WithFields(logrus.Fields{"credential_id": credential.ID.Hex(), "role": credential.Role}).Info("User logged in")
	return &models.LoginResponse{Message: "Login successful", Token: token, Role: credential.Role}, nil
}

// Logout revokes the token the identity was resolved from.
func (a *Authenticator) Logout(ctx context.Context, identity *models.Identity) error {
	if identity == nil || identity.JTI == "" {
		return apperr.Unauthenticated("Missing token")
	}
	if err := a.revoker.Revoke(ctx, identity.JTI, identity.ExpiresAt); err != nil {
		return apperr.Internal("Internal server error", fmt.Errorf("revoke token: %w", err))
	}
	a.log.WithField("credential_id", identity.CredentialID.Hex()).Info("User logged out")
	return nil
}

// Resolve turns an Authorization header into an identity. Admins are
// identified by their credential id, technicians by their profile id.
func (a *Authenticator) Resolve(ctx context.Context, header string) (*models.Identity, error) {
	raw, err := a.tokens.ExtractTokenFromHeader(header)
	if err != nil {
		return nil, apperr.Unauthenticated("Missing token")
	}
	claims, err := a.tokens.ValidateToken(raw)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperr.Unauthenticated("Token expired")
		}
		return nil, apperr.Unauthenticated("Invalid token")
	}

	revoked, err := a.revoker.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, apperr.Internal("Internal server error", fmt.Errorf("check revocation: %w", err))
	}
	if revoked {
		return nil, apperr.Unauthenticated("Token revoked")
	}

	credential, err := a.credentials.FindCredentialByID(ctx, claims.CredentialID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			return nil, apperr.Unauthenticated("Unauthorized")
		}
		return nil, apperr.Internal("Internal server error", fmt.Errorf("find credential: %w", err))
	}

	identity := &models.Identity{
		ID:           credential.ID,
		CredentialID: credential.ID,
		Role:         credential.Role,
		Email:        credential.Email,
		JTI:          claims.JTI,
		ExpiresAt:    claims.ExpiresAt(),
	}
	switch credential.Role {
	case models.RoleAdmin:
		return identity, nil
	case models.RoleTechnician:
		tech, err := a.technicians.FindTechnicianByCredential(ctx, credential.ID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, apperr.Unauthenticated("Unauthorized")
			}
			return nil, apperr.Internal("Internal server error", fmt.Errorf("find technician: %w", err))
		}
		identity.ID = tech.ID
		identity.Email = tech.Email
		identity.FirstName = tech.FirstName
		identity.LastName = tech.LastName
		return identity, nil
	default:
		return nil, apperr.Unauthenticated("Unauthorized")
	}
}

// SeedAdmin creates an admin credential for email unless one exists. It
// reports whether a credential was created.
func (a *Authenticator) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := a.credentials.FindCredentialByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return false, fmt.Errorf("find admin credential: %w", err)
	}

	hash, err := a.tokens.HashPassword(password)
	if err != nil {
		return false, err
	}
	credential := models.Credential{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := a.credentials.InsertCredential(ctx, credential); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("insert admin credential: %w", err)
	}
	a.log.WithField("email", email).Info("Admin credential seeded")
	return true, nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
)

// Credential is a login record. Technicians are linked to one through
// Technician.CredentialID; admins stand alone.
type Credential struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,login_email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Role    Role   `json:"role"`
}

// Claims represents JWT claims
type Claims struct {
	CredentialID string `json:"id"`
	Role         Role   `json:"role"`
	JTI          string `json:"jti"`
	Exp          int64  `json:"exp"`
}

// ExpiresAt returns the expiry as a time.
func (c *Claims) ExpiresAt() time.Time {
	return time.Unix(c.Exp, 0)
}

// Identity is the authenticated caller. For technicians ID is the
// Technician id; for admins it is the Credential id.
type Identity struct {
	ID           primitive.ObjectID `json:"id"`
	CredentialID primitive.ObjectID `json:"credential_id"`
	Role         Role               `json:"role"`
	Email        string             `json:"email"`
	FirstName    string             `json:"first_name,omitempty"`
	LastName     string             `json:"last_name,omitempty"`
	JTI          string             `json:"-"`
	ExpiresAt    time.Time          `json:"-"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleTechnician:
		return true
	default:
		return false
	}
}

// HasAnyRole reports whether the identity may act as one of roles.
// Admins pass every check.
func (i *Identity) HasAnyRole(roles ...Role) bool {
	if i == nil {
		return false
	}
	if i.Role == RoleAdmin {
		return true
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity is an administrator.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

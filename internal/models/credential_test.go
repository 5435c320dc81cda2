package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"technician role", RoleTechnician, true},
		{"manager role", "manager", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestIdentity_HasAnyRole(t *testing.T) {
	admin := &Identity{Role: RoleAdmin}
	tech := &Identity{Role: RoleTechnician}

	tests := []struct {
		name     string
		identity *Identity
		roles    []Role
		expected bool
	}{
		{"admin passes admin check", admin, []Role{RoleAdmin}, true},
		{"admin passes technician check", admin, []Role{RoleTechnician}, true},
		{"technician passes technician check", tech, []Role{RoleTechnician}, true},
		{"technician fails admin check", tech, []Role{RoleAdmin}, false},
		{"technician passes either", tech, []Role{RoleAdmin, RoleTechnician}, true},
		{"nil identity fails", nil, []Role{RoleTechnician}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.identity.HasAnyRole(tt.roles...)
			if result != tt.expected {
				t.Errorf("HasAnyRole(%v) = %v, want %v", tt.roles, result, tt.expected)
			}
		})
	}
}

package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/apperr"
)

type sampleRequest struct {
	Email        string   `json:"email" validate:"required,email,fleet_email"`
	Password     string   `json:"password" validate:"required,strong_password"`
	Skills       []string `json:"skills" validate:"required,min=1,dive,skill"`
	Availability []string `json:"availability" validate:"required,min=1,dive,weekday"`
	Type         string   `json:"type" validate:"required,vehicle_type"`
	Make         string   `json:"make" validate:"required,supported_brand"`
	Ignored      string   `json:"-"`
}

func validSample() sampleRequest {
	return sampleRequest{
		Email:        "asha@fleet.com",
		Password:     "Passw0rd!",
		Skills:       []string{"Oil Change"},
		Availability: []string{"monday"},
		Type:         "truck",
		Make:         "Tata",
	}
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(validSample()))
}

func TestStruct_FieldErrors(t *testing.T) {
	req := validSample()
	req.Email = "asha@gmail.com"
	req.Skills = []string{"Oil Change", "Tyre Rotation"}
	req.Availability = []string{"Funday"}
	req.Type = "bus"
	req.Make = "Yugo"

	err := Struct(req)
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_FAILED", appErr.Code)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)

	fields := map[string]string{}
	for _, fe := range appErr.Errors {
		fields[fe.Field] = fe.Error
	}
	assert.Equal(t, "must be a @fleet.com address", fields["email"])
	assert.Contains(t, fields, "skills[1]")
	assert.Contains(t, fields, "availability[0]")
	assert.Equal(t, "must be Car or Truck", fields["type"])
	assert.Equal(t, "is not a supported brand", fields["make"])
}

func TestStruct_Required(t *testing.T) {
	err := Struct(sampleRequest{})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	for _, fe := range appErr.Errors {
		assert.Equal(t, "is required", fe.Error, fe.Field)
	}
	assert.Len(t, appErr.Errors, 6)
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd!", true},
		{"Ab1 cd", true},
		{"Ab1!", false},
		{"password1!", false},
		{"PASSWORD1!", false},
		{"Password!", false},
		{"Password1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsStrongPassword(tt.password), tt.password)
	}
}

func TestEmailRules(t *testing.T) {
	assert.True(t, IsFleetEmail("A@Fleet.com"))
	assert.False(t, IsFleetEmail("a@admin.com"))
	assert.True(t, IsLoginEmail("boss@admin.com"))
	assert.True(t, IsLoginEmail("tech@fleet.com"))
	assert.False(t, IsLoginEmail("someone@example.com"))
}

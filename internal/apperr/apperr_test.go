package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSample = Conflict("OPEN_UNPAID_SERVICE", "open service")

func TestError_IsMatchesByCode(t *testing.T) {
	withField := errSample.With("service_id", "abc")
	assert.True(t, errors.Is(withField, errSample))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", withField), errSample))
	assert.False(t, errors.Is(withField, Conflict("OTHER", "x")))
	assert.Nil(t, errSample.Fields, "With must not mutate the sentinel")
}

func TestError_Status(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("X", "x").Status())
	assert.Equal(t, http.StatusBadRequest, NotFound("X", "x").Status())
	assert.Equal(t, http.StatusBadRequest, Authorization("X", "x").Status())
	assert.Equal(t, http.StatusUnauthorized, Unauthenticated("x").Status())
	assert.Equal(t, http.StatusInternalServerError, Internal("x", nil).Status())
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	plain := errors.New("disk on fire")
	got := From(plain)
	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, plain)

	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("ctx: %w", errSample)))
}

func TestError_Body(t *testing.T) {
	body := errSample.With("service_id", "abc").Body()
	assert.Equal(t, map[string]any{
		"success":    false,
		"code":       "OPEN_UNPAID_SERVICE",
		"message":    "open service",
		"service_id": "abc",
	}, body)

	fields := Fields([]FieldError{{Field: "email", Error: "is required"}}).Body()
	assert.Equal(t, "VALIDATION_FAILED", fields["code"])
	assert.Equal(t, []FieldError{{Field: "email", Error: "is required"}}, fields["errors"])
}

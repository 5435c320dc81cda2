// Package validation checks request payloads against struct tags and the
// fleet's custom rules, and turns failures into field-level errors the
// client can act on.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ukydev/fleet-maintenance/internal/apperr"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("fleet_email", func(fl validator.FieldLevel) bool {
			return IsFleetEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("login_email", func(fl validator.FieldLevel) bool {
			return IsLoginEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("skill", func(fl validator.FieldLevel) bool {
			return models.IsValidSkill(fl.Field().String())
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return models.IsValidWeekday(fl.Field().String())
		})
		_ = v.RegisterValidation("vehicle_type", func(fl validator.FieldLevel) bool {
			_, ok := models.NormalizeVehicleType(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("supported_brand", func(fl validator.FieldLevel) bool {
			return models.IsSupportedBrand(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Struct validates s and returns an *apperr.Error carrying one FieldError
// per failing field, or nil.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("validation failed", err)
	}
	return apperr.Fields(FieldErrors(verrs))
}

// FieldErrors converts validator errors into client-facing messages.
func FieldErrors(verrs validator.ValidationErrors) []apperr.FieldError {
	out := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperr.FieldError{Field: fieldName(fe), Error: message(fe)})
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "fleet_email":
		return "must be a @fleet.com address"
	case "login_email":
		return "must be a @admin.com or @fleet.com address"
	case "strong_password":
		return "must be at least 6 characters and contain upper and lower case letters, a digit and a symbol"
	case "skill":
		return fmt.Sprintf("must be one of: %s", strings.Join(models.Skills, ", "))
	case "weekday":
		return "must be a weekday name such as monday"
	case "vehicle_type":
		return "must be Car or Truck"
	case "supported_brand":
		return "is not a supported brand"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
		}
		return fe.Tag()
	}
}

// IsFleetEmail reports whether email belongs to the technician domain.
func IsFleetEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@fleet.com")
}

// IsLoginEmail reports whether email belongs to a domain allowed to sign in.
func IsLoginEmail(email string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	return strings.HasSuffix(e, "@admin.com") || strings.HasSuffix(e, "@fleet.com")
}

// IsStrongPassword requires at least 6 characters with a lower case letter,
// an upper case letter, a digit and a character that is none of those.
// Whitespace counts as a symbol.
func IsStrongPassword(password string) bool {
	if len([]rune(password)) < 6 {
		return false
	}
	var lower, upper, digit, other bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}
	return lower && upper && digit && other
}

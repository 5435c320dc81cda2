// Package apperr defines the error taxonomy shared by the maintenance core
// and the HTTP layer. Every domain rule failure is an *Error with a stable
// Code; the HTTP layer maps its Kind to a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthorization
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "authorization"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// FieldError is a per-field validation failure.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Fields carries extra response attributes such as a blocking service id.
	Fields map[string]any
	// Errors carries field-level validation failures.
	Errors []FieldError
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Code, so sentinel values can be
// compared with errors.Is after With/Wrap copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Status returns the HTTP status for the error kind. Domain failures
// are all 400 by convention.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindNotFound, KindConflict, KindAuthorization:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// With returns a copy of e carrying an extra response field.
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Fields = make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		cp.Fields[k] = v
	}
	cp.Fields[key] = value
	return &cp
}

// WithMessage returns a copy of e with a different message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(code, msg string) *Error    { return newError(KindValidation, code, msg) }
func NotFound(code, msg string) *Error      { return newError(KindNotFound, code, msg) }
func Conflict(code, msg string) *Error      { return newError(KindConflict, code, msg) }
func Authorization(code, msg string) *Error { return newError(KindAuthorization, code, msg) }

func Unauthenticated(msg string) *Error {
	return newError(KindUnauthenticated, "UNAUTHENTICATED", msg)
}

// Fields builds a validation error from field failures.
func Fields(errs []FieldError) *Error {
	e := newError(KindValidation, "VALIDATION_FAILED", "Validation failed")
	e.Errors = errs
	return e
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: msg, Err: err}
}

// From converts err into an *Error, wrapping unclassified errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("Internal server error", err)
}

// KindOf returns the kind of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	return From(err).Kind
}

// Body renders the error as the JSON response body:
// {"success": false, "code", "message"} plus Fields and field errors.
func (e *Error) Body() map[string]any {
	body := map[string]any{
		"success": false,
		"code":    e.Code,
		"message": e.Message,
	}
	for k, v := range e.Fields {
		body[k] = v
	}
	if len(e.Errors) > 0 {
		body["errors"] = e.Errors
	}
	return body
}

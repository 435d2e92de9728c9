package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidState     = errors.New("invalid state")
	ErrVersionConflict  = errors.New("order was modified concurrently")
	ErrLocked           = errors.New("resource is being processed")
	ErrAlreadySubmitted = errors.New("already submitted")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
)

// ValidationError: missing or malformed request fields.
type ValidationError struct {
	Required []string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Missing required fields: " + strings.Join(e.Required, ", ")
}

func Missing(fields ...string) *ValidationError { return &ValidationError{Required: fields} }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func NotFound(entity, id string) *NotFoundError { return &NotFoundError{Entity: entity, ID: id} }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

type UnsupportedCompanyError struct {
	CompanyID string
}

func (e *UnsupportedCompanyError) Error() string { return "Unsupported delivery company" }

// ExternalCallError wraps a failed call to a delivery platform or Telegram.
type ExternalCallError struct {
	Target     string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *ExternalCallError) Error() string {
	msg := e.Target + " call failed"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExternalCallError) Unwrap() error { return e.Err }

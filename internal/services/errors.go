package services

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("service not configured")
	ErrUpstream           = errors.New("upstream call failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSignupRejected     = errors.New("signup rejected")
)

// ValidationError carries a message safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// UnavailableError reports a missing credential for an external collaborator.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string { return e.Message }

func (e *UnavailableError) Is(target error) bool { return target == ErrServiceUnavailable }

// ProviderError is a rejection reported by the identity provider.
type ProviderError struct {
	Status  int
	Message string
	kind    error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.kind }

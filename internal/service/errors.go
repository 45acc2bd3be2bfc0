package service

import "errors"

// Error kinds recovered at the handler boundary. Operation-specific detail is
// attached by wrapping, e.g. fmt.Errorf("%w: passwords do not match", ErrValidation).
// ErrAuthentication is deliberately never wrapped with the failing factor so
// that unknown-user, wrong-password and deactivated-account all read the same.
var (
	ErrValidation     = errors.New("invalid input")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrAuthentication = errors.New("invalid username or password")
	ErrToken          = errors.New("invalid token")
	ErrMisconfigured  = errors.New("auth config invalid")
)

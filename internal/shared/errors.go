package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates a missing, invalid or expired upstream token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation indicates input rejected locally, before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates an action incompatible with current state,
	// such as archiving an already archived product.
	ErrConflict = errors.New("conflict")
)

package types

import "errors"

// ErrValidation is the root of every input validation failure. Callers test
// for it with errors.Is to tell user mistakes from system failures.
var ErrValidation = errors.New("validation failed")

// CRUD errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Field validation errors. Each wraps ErrValidation.
var (
	ErrInvalidName    = validation("name cannot be empty")
	ErrInvalidPhone   = validation("invalid phone number")
	ErrInvalidEmail   = validation("invalid email")
	ErrInvalidAddress = validation("invalid address")
	ErrInvalidDate    = validation("invalid date")
	ErrFutureBirthday = validation("birthday cannot be in the future")
	ErrInvalidTitle   = validation("title cannot be empty")
	ErrInvalidContent = validation("content must be at least 10 characters long")
	ErrInvalidTag     = validation("tag cannot be empty")
	ErrInvalidColor   = validation("tag color must look like #RRGGBB")
	ErrInvalidRegion  = validation("unknown phone region")
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// validationError keeps its own message while matching ErrValidation.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

func validation(msg string) error {
	return &validationError{msg: msg}
}

// IsUserError reports whether err was caused by user input rather than by the
// system: validation failures, missing entities and duplicates.
func IsUserError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyExists)
}

package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
	ErrUpstream     = errors.New("upstream unavailable")

	ErrDuplicateHandle    = fmt.Errorf("user id already registered: %w", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("user id or password mismatch: %w", ErrUnauthorized)
	ErrRegistrationClosed = fmt.Errorf("registration disabled: %w", ErrForbidden)
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when caller input is rejected before recompute
	ErrValidation = errors.New("validation error")

	// ErrDuplicatePeriod is returned when two records share the same (year, month)
	ErrDuplicatePeriod = errors.New("duplicate period")

	// ErrInvalidPeriod is returned when a month token is not one of the twelve named periods
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrWriteConflict is returned by a repository when the stored version moved since the read
	ErrWriteConflict = errors.New("write conflict")

	// ErrAccountNotFound is returned when no ledger exists for an account id
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists is returned when creating an account whose id is already stored
	ErrAccountExists = errors.New("account already exists")

	// ErrRecordNotFound is returned when an account has no record for the requested period
	ErrRecordNotFound = errors.New("record not found")

	// ErrForbidden is returned when the acting principal may not perform the operation
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated is returned when no principal is attached to the request
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError describes a single rejected input field
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DuplicatePeriodError names the period that occurs more than once in a record set
type DuplicatePeriodError struct {
	Period Period
}

// Error implements the error interface
func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("duplicate period: more than one record for %s", e.Period)
}

// Is reports whether target is ErrDuplicatePeriod
func (e *DuplicatePeriodError) Is(target error) bool {
	return target == ErrDuplicatePeriod
}

// NewInvalidPeriod returns an ErrInvalidPeriod naming the rejected month token
func NewInvalidPeriod(month Month) error {
	return fmt.Errorf("%w: unknown month %q", ErrInvalidPeriod, month)
}

// Package common defines shared constants and sentinel errors used across
// the files manager layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnavailable      = errors.New("temporarily unavailable")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorValidation       = errors.New("validation error")
	ErrorInvalidOperation = errors.New("invalid operation")
)

// ReasonError attaches a user-facing reason to one of the sentinel errors above.
// errors.Is(err, Kind) holds for any ReasonError.
type ReasonError struct {
	Kind   error
	Reason string
}

func (e *ReasonError) Error() string {
	return e.Reason
}

func (e *ReasonError) Unwrap() error {
	return e.Kind
}

// NewValidationError returns an error matching ErrorValidation whose message
// is safe to show to the client.
func NewValidationError(reason string) error {
	return &ReasonError{Kind: ErrorValidation, Reason: reason}
}

// NewInvalidOperationError returns an error matching ErrorInvalidOperation.
func NewInvalidOperationError(reason string) error {
	return &ReasonError{Kind: ErrorInvalidOperation, Reason: reason}
}

// Reason returns the client-facing message carried by err, or fallback
// when err carries none.
func Reason(err error, fallback string) string {
	var re *ReasonError
	if errors.As(err, &re) {
		return re.Reason
	}
	return fallback
}

package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidCredentials is returned by the auth capability when the
	// email/password pair does not match an editor account.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired indicates the editor session is no longer valid.
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// PersistenceError wraps a structured store failure.
// Message is the store's own message and is shown to editors verbatim.
type PersistenceError struct {
	Op      string
	Code    string // SQLSTATE when known
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	return e.Message
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsNotFound reports whether the failure was a missing record.
func (e *PersistenceError) IsNotFound() bool {
	return errors.Is(e.Err, ErrNotFound)
}

// UploadError wraps an object store failure.
type UploadError struct {
	Bucket  string
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	return e.Message
}

func (e *UploadError) Unwrap() error { return e.Err }

// FormatError is returned when generated text cannot be turned into draft fields.
type FormatError struct {
	Message string
	Raw     string
}

func (e *FormatError) Error() string {
	return "unexpected AI response format: " + e.Message
}

// AuthError wraps a failure reported by the auth capability.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing or invalid setting, such as an absent API key.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Setting, e.Message)
}

// NewNotFoundError builds the persistence error used when a keyed record is missing.
func NewNotFoundError(op string) *PersistenceError {
	return &PersistenceError{Op: op, Message: "record not found", Err: ErrNotFound}
}

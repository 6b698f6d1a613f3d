// Package apperr holds the error kinds shared by the domain packages.
// Domain code wraps a kind with context (fmt.Errorf("%w: ...", kind)) and the
// transport layer maps kinds to status codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
	ErrInvalidToken   = errors.New("invalid token")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
	ErrStorage        = errors.New("storage error")
)

// StorageError reports a failed durable write or read of the document.
type StorageError struct {
	Op      string
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("storage error during %s (%s): %v", e.Op, e.Backend, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes every StorageError match ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Validation wraps ErrValidation with a message.
func Validation(msg string) error { return fmt.Errorf("%w: %s", ErrValidation, msg) }

// NotFound wraps ErrNotFound with the missing resource name.
func NotFound(resource string) error { return fmt.Errorf("%w: %s", ErrNotFound, resource) }

// Message strips the kind prefix so callers can show the human part only.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *StorageError
	if errors.As(err, &se) {
		return "storage unavailable"
	}
	for _, kind := range []error{ErrValidation, ErrConflict, ErrAuthentication, ErrInvalidToken, ErrAuthorization, ErrNotFound} {
		if errors.Is(err, kind) {
			msg := err.Error()
			prefix := kind.Error() + ": "
			if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
				return msg[len(prefix):]
			}
			return msg
		}
	}
	return err.Error()
}

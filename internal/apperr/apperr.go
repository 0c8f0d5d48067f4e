package apperr

import (
	"errors"
	"fmt"
)

// ErrDependencyUnavailable marks a backing service that is not configured at
// all, as opposed to one that is configured but failing.
var ErrDependencyUnavailable = errors.New("dependency not configured")

// ValidationError reports a missing or malformed client-supplied field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// DependencyError reports a failed call to an external service. Status is the
// upstream HTTP status when one was received, zero otherwise.
type DependencyError struct {
	Service string
	Status  int
	Err     error
}

func (e *DependencyError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func Dependency(service string, status int, err error) *DependencyError {
	return &DependencyError{Service: service, Status: status, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func AsDependency(err error) (*DependencyError, bool) {
	var de *DependencyError
	ok := errors.As(err, &de)
	return de, ok
}

// Document renders a dependency failure as the error payload embedded in
// degraded responses, so callers check for an "error" key instead of a lost
// field.
func (e *DependencyError) Document() map[string]any {
	doc := map[string]any{"error": e.Err.Error()}
	if e.Status != 0 {
		doc["status"] = e.Status
	}
	return doc
}

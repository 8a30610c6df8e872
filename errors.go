package router

import (
	"errors"
	"fmt"

	"github.com/pedia/picoroute/radix"
)

var (
	// ErrInvalidPattern is returned for malformed patterns.
	ErrInvalidPattern = radix.ErrInvalidPattern

	// ErrDuplicateRoute is returned when a pattern, or an equivalent one
	// such as the same pattern with a trailing slash, is already registered.
	ErrDuplicateRoute = radix.ErrDuplicatePattern

	// ErrParamConflict is returned when two patterns use different
	// parameters at the same position.
	ErrParamConflict = radix.ErrParamConflict

	// ErrNilHandler is returned when a route is registered without handler.
	ErrNilHandler = errors.New("nil handler")

	// ErrKeyCollision is returned when a key is already bound to another pattern.
	ErrKeyCollision = errors.New("route key collision")

	// ErrUnknownRouteKey reports a matched route whose key has no handler.
	// It never happens unless the router is broken.
	ErrUnknownRouteKey = errors.New("matched route key has no registered handler")
)

// RegistrationError describes a failed AddRoute call.
type RegistrationError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register route '%s': %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *RegistrationError) Is(target error) bool {
	_, ok := target.(*RegistrationError)
	return ok || errors.Is(e.Err, target)
}

package radix

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPattern is returned for malformed patterns.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrDuplicatePattern is returned when a pattern ends on a node that
	// already carries a value.
	ErrDuplicatePattern = errors.New("duplicate pattern")

	// ErrParamConflict is returned when a parameter segment disagrees with
	// the parameter already registered at the same position.
	ErrParamConflict = errors.New("conflicting parameter")
)

func invalidf(pattern, format string, args ...any) error {
	return fmt.Errorf("%w '%s': %s", ErrInvalidPattern, pattern, fmt.Sprintf(format, args...))
}

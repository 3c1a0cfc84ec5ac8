package interpolate

import (
	"fmt"
	"strings"
)

// CircularReferenceError is returned when a placeholder refers back to an
// identifier that is already being resolved.
type CircularReferenceError struct {
	// Chain lists the identifiers in resolution order. The last element
	// repeats the one that closed the cycle.
	Chain []string
}

// Error implements the error interface.
func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected: %s", strings.Join(e.Chain, " -> "))
}

// DepthExceededError is returned when nested placeholders are expanded more
// than MaxDepth levels deep.
type DepthExceededError struct {
	// Identifier is the placeholder being resolved when the limit was hit.
	Identifier string

	// MaxDepth is the configured limit.
	MaxDepth int
}

// Error implements the error interface.
func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("interpolation depth exceeded %d while resolving %q", e.MaxDepth, e.Identifier)
}

// SecretError is returned when a ${secret:name} placeholder cannot be
// resolved.
type SecretError struct {
	Name  string
	Cause error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("failed to resolve secret %q: %v", e.Name, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *SecretError) Unwrap() error {
	return e.Cause
}

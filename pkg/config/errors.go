package config

import (
	"errors"
	"fmt"
	"strings"

	"mercator-hq/confkit/pkg/provenance"
	"mercator-hq/confkit/pkg/schema"
)

// ErrPathNotFound is returned by Value when a path does not resolve.
var ErrPathNotFound = errors.New("configuration path not found")

// FieldError describes one schema violation.
type FieldError struct {
	// Path is the dot path of the offending value.
	Path string `json:"path" yaml:"path"`

	// Message is a human-readable error message.
	Message string `json:"message" yaml:"message"`

	// Expected names the expected type or constraint, when known.
	Expected string `json:"expected,omitempty" yaml:"expected,omitempty"`

	// Received is the offending value; nil when the value is missing.
	Received any `json:"received,omitempty" yaml:"received,omitempty"`

	// Source is the label of the source that supplied the value, or of
	// the nearest ancestor that did. Empty when no source supplied it.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	if e.Source != "" {
		msg += fmt.Sprintf(" (from %s)", e.Source)
	}
	return msg
}

// ValidationError is returned when the loaded tree fails the schema.
type ValidationError struct {
	Details []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "configuration validation failed"
	}
	if len(e.Details) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Details[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Details))
	for _, d := range e.Details {
		fmt.Fprintf(&sb, "  - %s\n", d.Error())
	}
	return sb.String()
}

// Paths returns the paths of every failing field.
func (e *ValidationError) Paths() []string {
	paths := make([]string, len(e.Details))
	for i, d := range e.Details {
		paths[i] = d.Path
	}
	return paths
}

// newValidationError converts schema issues, attributing each to the
// source recorded in prov.
func newValidationError(issues []schema.Issue, prov *provenance.Table) *ValidationError {
	details := make([]FieldError, 0, len(issues))
	for _, issue := range issues {
		fe := FieldError{
			Path:     issue.Path,
			Message:  issue.Message,
			Expected: issue.Expected,
		}
		if issue.HasReceived {
			fe.Received = issue.Received
		}
		if src, ok := prov.Source(issue.Path); ok {
			fe.Source = src
		}
		details = append(details, fe)
	}
	return &ValidationError{Details: details}
}

package schema

import (
	"fmt"
	"strings"
)

// Schema validates a configuration tree.
type Schema interface {
	// Check returns every violation found in data. An empty result means
	// Parse will succeed.
	Check(data map[string]any) []Issue

	// Parse returns the typed and defaulted tree. On failure the error is
	// an *IssuesError.
	Parse(data map[string]any) (map[string]any, error)
}

// Issue describes one violation.
type Issue struct {
	// Path is the dot path of the offending value. The empty string refers
	// to the whole document.
	Path string

	// Message is a human-readable description.
	Message string

	// Expected names the expected type or constraint, when known.
	Expected string

	// Received is the offending value. It is only meaningful when
	// HasReceived is true; a missing value has none.
	Received    any
	HasReceived bool
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// IssuesError is returned by Parse when validation fails.
type IssuesError struct {
	Issues []Issue
}

// Error implements the error interface.
func (e *IssuesError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "schema validation failed"
	case 1:
		return "schema validation failed: " + e.Issues[0].String()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("schema validation failed with %d issues: %s", len(e.Issues), strings.Join(parts, "; "))
}

package source

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound matches every *FileNotFoundError.
	ErrFileNotFound = errors.New("configuration file not found")

	// ErrPluginNotFound matches every *PluginNotFoundError.
	ErrPluginNotFound = errors.New("plugin not found")
)

// FileNotFoundError is returned when a required file source does not exist.
type FileNotFoundError struct {
	// Path is the absolute path that was looked up.
	Path string
}

// Error implements the error interface.
func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

// Is reports whether target is ErrFileNotFound.
func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// ParseError is returned when a source's content cannot be decoded.
type ParseError struct {
	// Path is the file that failed to parse. It is empty for non-file input.
	Path string

	// Format is the decoder that rejected the content.
	Format Format

	// Line is the 1-indexed line of the failure when known.
	Line int

	// Cause is the underlying decoder error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "<input>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse %s %q at line %d: %v", e.Format, where, e.Line, e.Cause)
	}
	return fmt.Sprintf("failed to parse %s %q: %v", e.Format, where, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// PluginNotFoundError is returned when a plugin source names a plugin that
// is not registered.
type PluginNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *PluginNotFoundError) Error() string {
	return fmt.Sprintf("plugin not found: %q", e.Name)
}

// Is reports whether target is ErrPluginNotFound.
func (e *PluginNotFoundError) Is(target error) bool {
	return target == ErrPluginNotFound
}

package encryption

import "fmt"

// DecryptionError is returned when an envelope cannot be opened with the
// given passphrase, either because the passphrase is wrong or because the
// payload was modified.
type DecryptionError struct {
	// Path is the configuration path of the value, if known.
	Path string

	Cause error
}

// Error implements the error interface.
func (e *DecryptionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to decrypt value at %q: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("failed to decrypt value: %v", e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *DecryptionError) Unwrap() error {
	return e.Cause
}

// MalformedEnvelopeError is returned for strings that carry the envelope
// markers but not a well-formed payload.
type MalformedEnvelopeError struct {
	// Path is the configuration path of the value, if known.
	Path string

	// Reason describes what is wrong with the payload.
	Reason string
}

// Error implements the error interface.
func (e *MalformedEnvelopeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed encrypted value at %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("malformed encrypted value: %s", e.Reason)
}

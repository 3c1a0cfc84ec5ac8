package secrets

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// EncryptionKeyName is the secret name under which the decryption passphrase
// is looked up.
const EncryptionKeyName = "encryption-key"

// ErrSecretNotFound matches every *NotFoundError.
var ErrSecretNotFound = errors.New("secret not found")

// NotFoundError is returned when a provider has no value for a name.
type NotFoundError struct {
	Provider string
	Name     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("secret %q not found in %s provider", e.Name, e.Provider)
}

// Is reports whether target is ErrSecretNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrSecretNotFound
}

// SecretProvider retrieves secrets from a backend.
type SecretProvider interface {
	// GetSecret retrieves a secret by name.
	GetSecret(ctx context.Context, name string) (string, error)

	// ListSecrets returns the names this provider can serve. Values are
	// never included.
	ListSecrets(ctx context.Context) ([]string, error)

	// Provider returns the provider name.
	Provider() string

	// Supports indicates if this provider may serve the given name.
	Supports(name string) bool
}

// RefreshableProvider can drop its cached state.
type RefreshableProvider interface {
	SecretProvider

	// Refresh reloads all secrets from the backend.
	Refresh(ctx context.Context) error
}

// StaticProvider serves a fixed set of values. Empty values are treated as
// absent.
type StaticProvider struct {
	values map[string]string
}

// NewStaticProvider creates a provider over a copy of values.
func NewStaticProvider(values map[string]string) *StaticProvider {
	p := &StaticProvider{values: make(map[string]string, len(values))}
	for k, v := range values {
		if v != "" {
			p.values[k] = v
		}
	}
	return p
}

// GetSecret implements SecretProvider.
func (p *StaticProvider) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := p.values[name]
	if !ok {
		return "", &NotFoundError{Provider: p.Provider(), Name: name}
	}
	return v, nil
}

// ListSecrets implements SecretProvider.
func (p *StaticProvider) ListSecrets(context.Context) ([]string, error) {
	names := make([]string, 0, len(p.values))
	for k := range p.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

// Provider implements SecretProvider.
func (p *StaticProvider) Provider() string { return "static" }

// Supports implements SecretProvider.
func (p *StaticProvider) Supports(name string) bool {
	_, ok := p.values[name]
	return ok
}

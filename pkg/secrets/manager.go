package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Manager orchestrates multiple secret providers with priority-based fallback.
type Manager struct {
	providers []SecretProvider
	cache     *Cache
	logger    *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a manager over providers, tried in the given order.
func NewManager(providers []SecretProvider, cacheConfig CacheConfig, opts ...ManagerOption) *Manager {
	m := &Manager{
		providers: providers,
		cache:     NewCache(cacheConfig),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "secrets.manager")
	return m
}

// GetSecret retrieves a secret from the first provider that supports it.
// The error matches ErrSecretNotFound when no provider has a value.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	if value, ok := m.cache.Get(name); ok {
		m.logger.Debug("secret cache hit", "name", redactSecretName(name))
		return value, nil
	}

	var lastErr error
	for _, provider := range m.providers {
		if !provider.Supports(name) {
			continue
		}

		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			m.logger.Debug("provider failed to get secret",
				"provider", provider.Provider(),
				"name", redactSecretName(name),
				"error", err,
			)
			if lastErr == nil || !errors.Is(err, ErrSecretNotFound) {
				lastErr = err
			}
			continue
		}

		m.cache.Set(name, value)
		m.logger.Debug("secret retrieved",
			"provider", provider.Provider(),
			"name", redactSecretName(name),
		)
		return value, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, lastErr)
	}
	return "", fmt.Errorf("failed to get secret %q: %w", name, ErrSecretNotFound)
}

// Lookup is GetSecret reporting absence as false instead of an error.
// Provider failures other than absence are still returned.
func (m *Manager) Lookup(ctx context.Context, name string) (string, bool, error) {
	value, err := m.GetSecret(ctx, name)
	switch {
	case err == nil:
		return value, true, nil
	case errors.Is(err, ErrSecretNotFound):
		return "", false, nil
	default:
		return "", false, err
	}
}

// Refresh reloads all refreshable providers and clears the cache.
func (m *Manager) Refresh(ctx context.Context) error {
	var failures []string
	for _, provider := range m.providers {
		refreshable, ok := provider.(RefreshableProvider)
		if !ok {
			continue
		}
		if err := refreshable.Refresh(ctx); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", provider.Provider(), err))
			m.logger.Error("failed to refresh provider", "provider", provider.Provider(), "error", err)
		}
	}

	m.cache.Clear()

	if len(failures) > 0 {
		return fmt.Errorf("failed to refresh some providers: %s", strings.Join(failures, "; "))
	}
	return nil
}

// ListSecrets returns the sorted union of secret names from all providers.
func (m *Manager) ListSecrets(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, provider := range m.providers {
		names, err := provider.ListSecrets(ctx)
		if err != nil {
			m.logger.Warn("failed to list secrets from provider", "provider", provider.Provider(), "error", err)
			continue
		}
		for _, name := range names {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// redactSecretName shows only the first and last two characters.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}

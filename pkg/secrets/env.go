package secrets

import (
	"context"
	"sort"
	"strings"
)

// EnvProvider loads secrets from an environment snapshot.
//
// Secret names are converted to upper-case variable names with hyphens
// replaced by underscores, then prefixed:
//
//   - Secret name: "encryption-key"
//   - Env var name: "CONFKIT_ENCRYPTION_KEY" (with prefix "CONFKIT_")
type EnvProvider struct {
	Prefix string
	env    map[string]string
}

// NewEnvProvider creates a provider over env. The map is read, never
// modified.
func NewEnvProvider(prefix string, env map[string]string) *EnvProvider {
	return &EnvProvider{Prefix: prefix, env: env}
}

// GetSecret implements SecretProvider. An empty variable counts as unset.
func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	value := p.env[p.secretNameToEnvVar(name)]
	if value == "" {
		return "", &NotFoundError{Provider: p.Provider(), Name: name}
	}
	return value, nil
}

// ListSecrets implements SecretProvider.
func (p *EnvProvider) ListSecrets(context.Context) ([]string, error) {
	var names []string
	for key := range p.env {
		if !strings.HasPrefix(key, p.Prefix) {
			continue
		}
		names = append(names, p.envVarToSecretName(key))
	}
	sort.Strings(names)
	return names, nil
}

// Provider implements SecretProvider.
func (p *EnvProvider) Provider() string { return "env" }

// Supports implements SecretProvider. Any name may be set in the
// environment, so the provider always attempts a lookup.
func (p *EnvProvider) Supports(string) bool { return true }

// EnvVar returns the variable name that holds secret name.
func (p *EnvProvider) EnvVar(name string) string {
	return p.secretNameToEnvVar(name)
}

func (p *EnvProvider) secretNameToEnvVar(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func (p *EnvProvider) envVarToSecretName(envVar string) string {
	name := strings.TrimPrefix(envVar, p.Prefix)
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

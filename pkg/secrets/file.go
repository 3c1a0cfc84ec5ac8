package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileProvider loads secrets from individual files.
//
// A name is looked up in Files first; otherwise, when BasePath is set, it is
// read from BasePath/<name>. File permissions must be 0600 or 0400 so a
// world-readable key is never used by accident. Values are trimmed and
// cached until Refresh.
type FileProvider struct {
	BasePath string
	Files    map[string]string

	mu    sync.RWMutex
	cache map[string]string
}

// NewFileProvider creates a provider reading secrets from basePath.
func NewFileProvider(basePath string) *FileProvider {
	return &FileProvider{BasePath: basePath, cache: make(map[string]string)}
}

// NewKeyFileProvider creates a provider that serves the content of path
// under name.
func NewKeyFileProvider(name, path string) *FileProvider {
	return &FileProvider{
		Files: map[string]string{name: path},
		cache: make(map[string]string),
	}
}

// GetSecret implements SecretProvider.
func (p *FileProvider) GetSecret(_ context.Context, name string) (string, error) {
	p.mu.RLock()
	if value, ok := p.cache[name]; ok {
		p.mu.RUnlock()
		return value, nil
	}
	p.mu.RUnlock()

	path, err := p.pathFor(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Provider: p.Provider(), Name: name}
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", path)
	}
	if mode := info.Mode().Perm(); mode != 0o600 && mode != 0o400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, mode)
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is confined to BasePath or configured explicitly
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	value := strings.TrimSpace(string(data))

	p.mu.Lock()
	if p.cache == nil {
		p.cache = make(map[string]string)
	}
	p.cache[name] = value
	p.mu.Unlock()

	return value, nil
}

func (p *FileProvider) pathFor(name string) (string, error) {
	if path, ok := p.Files[name]; ok {
		return path, nil
	}
	if p.BasePath == "" {
		return "", &NotFoundError{Provider: p.Provider(), Name: name}
	}

	absBase, err := filepath.Abs(p.BasePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(p.BasePath, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve secret path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid secret name %q: directory traversal detected", name)
	}
	return absPath, nil
}

// ListSecrets implements SecretProvider.
func (p *FileProvider) ListSecrets(context.Context) ([]string, error) {
	seen := make(map[string]bool, len(p.Files))
	for name := range p.Files {
		seen[name] = true
	}
	if p.BasePath != "" {
		entries, err := os.ReadDir(p.BasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read secrets directory: %w", err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				seen[entry.Name()] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Provider implements SecretProvider.
func (p *FileProvider) Provider() string { return "file" }

// Supports implements SecretProvider.
func (p *FileProvider) Supports(name string) bool {
	if _, ok := p.Files[name]; ok {
		return true
	}
	return p.BasePath != ""
}

// Refresh implements RefreshableProvider by dropping cached values.
func (p *FileProvider) Refresh(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cache = make(map[string]string)
	return nil
}

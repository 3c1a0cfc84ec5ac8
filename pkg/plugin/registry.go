package plugin

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"mercator-hq/confkit/pkg/source"
)

// Registry holds named plugins.
//
// Registry is thread-safe and can be used concurrently.
type Registry struct {
	plugins map[string]source.Plugin
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		plugins: make(map[string]source.Plugin),
		logger:  logger.With("component", "plugin.registry"),
	}
}

// Register adds p under p.Name(). An existing plugin with the same name is
// replaced and a warning is logged.
func (r *Registry) Register(p source.Plugin) {
	name := p.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[name]; ok {
		r.logger.Warn("replacing existing plugin", "name", name)
	}
	r.plugins[name] = p

	r.logger.Debug("plugin registered", "name", name, "total_plugins", len(r.plugins))
}

// Get returns the plugin registered under name.
func (r *Registry) Get(name string) (source.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	return p, ok
}

// Has reports whether a plugin is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Unregister removes the plugin registered under name and reports whether
// one was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[name]; !ok {
		return false
	}
	delete(r.plugins, name)
	r.logger.Debug("plugin unregistered", "name", name, "remaining_plugins", len(r.plugins))
	return true
}

// List returns the registered plugin names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes every plugin.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plugins = make(map[string]source.Plugin)
}

// LoadFunc is the signature of a plugin load function.
type LoadFunc func(ctx context.Context, options map[string]any, lc source.LoadContext) (map[string]any, error)

type funcPlugin struct {
	name string
	fn   LoadFunc
}

// Func adapts fn to the source.Plugin interface.
func Func(name string, fn LoadFunc) source.Plugin {
	return funcPlugin{name: name, fn: fn}
}

func (f funcPlugin) Name() string { return f.name }

func (f funcPlugin) Load(ctx context.Context, options map[string]any, lc source.LoadContext) (map[string]any, error) {
	return f.fn(ctx, options, lc)
}

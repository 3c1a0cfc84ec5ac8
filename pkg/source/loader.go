package source

import (
	"context"
	"fmt"
)

// Loader reads one kind of Source into a configuration tree.
type Loader interface {
	// Name identifies the loader in provenance records.
	Name() string

	// Load reads src. The returned map belongs to the caller.
	Load(ctx context.Context, src Source, lc LoadContext) (map[string]any, error)
}

// Plugin is an externally supplied loader addressed by name.
type Plugin interface {
	// Name is the registration key.
	Name() string

	// Load returns the plugin's configuration tree for the given options.
	Load(ctx context.Context, options map[string]any, lc LoadContext) (map[string]any, error)
}

// PluginProvider looks plugins up by name.
type PluginProvider interface {
	Get(name string) (Plugin, bool)
}

// LoaderFor returns the loader for kind. Plugin sources are resolved through
// plugins, which may be nil when no plugins are configured.
func LoaderFor(kind Kind, plugins PluginProvider) (Loader, error) {
	switch kind {
	case KindEnv:
		return EnvLoader{}, nil
	case KindFile:
		return FileLoader{}, nil
	case KindObject:
		return ObjectLoader{}, nil
	case KindPlugin:
		return PluginLoader{Plugins: plugins}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}

// ObjectLoader returns a source's Data.
type ObjectLoader struct{}

// Name implements Loader.
func (ObjectLoader) Name() string { return string(KindObject) }

// Load implements Loader. Nested maps and slices of any concrete type are
// normalized to map[string]any and []any.
func (ObjectLoader) Load(_ context.Context, src Source, _ LoadContext) (map[string]any, error) {
	if src.Data == nil {
		return map[string]any{}, nil
	}
	return normalizeMap(src.Data), nil
}

// PluginLoader delegates to a registered Plugin.
type PluginLoader struct {
	Plugins PluginProvider
}

// Name implements Loader.
func (PluginLoader) Name() string { return string(KindPlugin) }

// Load implements Loader.
func (l PluginLoader) Load(ctx context.Context, src Source, lc LoadContext) (map[string]any, error) {
	if l.Plugins == nil {
		return nil, &PluginNotFoundError{Name: src.Name}
	}
	p, ok := l.Plugins.Get(src.Name)
	if !ok {
		return nil, &PluginNotFoundError{Name: src.Name}
	}
	data, err := p.Load(ctx, src.Options, lc)
	if err != nil {
		return nil, fmt.Errorf("plugin %q failed to load: %w", src.Name, err)
	}
	if data == nil {
		return map[string]any{}, nil
	}
	return normalizeMap(data), nil
}

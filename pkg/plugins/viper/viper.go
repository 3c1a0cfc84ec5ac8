// Package viper provides a source plugin for the file formats the core
// loaders do not parse: TOML, INI, HCL and Java properties. Decoding is
// delegated to spf13/viper.
//
// Viper folds keys to lower case, so keys from these sources are always
// lower case. INI and properties values are plain strings and are coerced
// the same way environment values are.
package viper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"mercator-hq/confkit/pkg/plugin"
	"mercator-hq/confkit/pkg/source"
	"mercator-hq/confkit/pkg/tree"
)

// Name is the name the plugin registers under.
const Name = "viper"

// SupportedTypes lists the accepted values of the type option.
var SupportedTypes = []string{"toml", "ini", "hcl", "properties", "props", "prop", "json", "yaml", "yml"}

// Options are the plugin options accepted in a source definition.
type Options struct {
	// Path is the file to read, resolved against the load directory.
	Path string `mapstructure:"path"`

	// Type overrides the format inferred from the file extension.
	Type string `mapstructure:"type"`

	// Optional makes a missing file load as an empty tree.
	Optional bool `mapstructure:"optional"`
}

// Plugin loads configuration files through viper.
type Plugin struct {
	logger *slog.Logger
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the plugin logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates the plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "plugins.viper")
	return p
}

// Name implements source.Plugin.
func (p *Plugin) Name() string { return Name }

// Load implements source.Plugin.
func (p *Plugin) Load(ctx context.Context, options map[string]any, lc source.LoadContext) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts Options
	if err := plugin.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.Path == "" {
		return nil, errors.New("viper: path is required")
	}

	path := opts.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(lc.Cwd, path)
	}

	configType := strings.ToLower(opts.Type)
	if configType == "" {
		configType = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	if !supported(configType) {
		return nil, fmt.Errorf("viper: unsupported type %q", configType)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if opts.Optional {
				return map[string]any{}, nil
			}
			return nil, &source.FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil {
		return nil, &source.ParseError{Path: path, Format: source.Format(configType), Cause: err}
	}

	data := v.AllSettings()
	if configType == "ini" || strings.HasPrefix(configType, "prop") {
		data = coerceStrings(data)
	}

	p.logger.Debug("loaded configuration file", "path", path, "type", configType, "keys", len(data))
	return data, nil
}

func supported(configType string) bool {
	for _, t := range SupportedTypes {
		if t == configType {
			return true
		}
	}
	return false
}

func coerceStrings(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	tree.Walk(data, func(path string, value any) {
		if s, ok := value.(string); ok {
			value = source.Coerce(s)
		}
		tree.Set(out, path, value)
	})
	return out
}

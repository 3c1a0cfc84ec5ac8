package manifest

import (
	"time"

	"mercator-hq/confkit/pkg/mask"
	"mercator-hq/confkit/pkg/source"
)

// Manifest is the root of a confkit.yaml file.
type Manifest struct {
	// Profile is the default profile. CONFKIT_PROFILE and the --profile
	// flag take precedence.
	Profile string `yaml:"profile"`

	// Cwd is the directory sources are resolved against, relative to the
	// manifest file.
	Cwd string `yaml:"cwd"`

	// Sources are loaded in order; later sources override earlier ones.
	Sources []source.Source `yaml:"sources"`

	// Profiles override sources and supply defaults per profile.
	Profiles map[string]ProfileConfig `yaml:"profiles"`

	// Schema is a declarative schema definition file.
	Schema string `yaml:"schema"`

	Encryption    EncryptionConfig    `yaml:"encryption"`
	Interpolation InterpolationConfig `yaml:"interpolation"`
	Watch         WatchConfig         `yaml:"watch"`
	Refresh       RefreshConfig       `yaml:"refresh"`
	Secrets       SecretsConfig       `yaml:"secrets"`
	Mask          MaskConfig          `yaml:"mask"`
	Logging       LoggingConfig       `yaml:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Tracing       TracingConfig       `yaml:"tracing"`

	// Plugins enables bundled plugins by name. Values are reserved for
	// plugin-level settings and currently ignored.
	Plugins map[string]map[string]any `yaml:"plugins"`

	// dir is the directory of the manifest file.
	dir string
}

// ProfileConfig mirrors config.Profile.
type ProfileConfig struct {
	Sources  []source.Source `yaml:"sources"`
	Defaults map[string]any  `yaml:"defaults"`
}

// EncryptionConfig configures envelope decryption.
type EncryptionConfig struct {
	// KeyFile holds the passphrase. It must have 0600 or 0400 permissions.
	KeyFile string `yaml:"key_file"`

	// Disabled leaves envelopes untouched.
	Disabled bool `yaml:"disabled"`
}

// InterpolationConfig configures placeholder expansion.
type InterpolationConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce  time.Duration `yaml:"debounce"`
	Immediate bool          `yaml:"immediate"`
}

// RefreshConfig configures scheduled reloads.
type RefreshConfig struct {
	// Schedule is a standard five-field cron expression. Empty disables
	// scheduled reloads.
	Schedule string `yaml:"schedule"`
}

// SecretsConfig configures the secret manager behind ${secret:name}.
type SecretsConfig struct {
	// Dir holds one file per secret.
	Dir string `yaml:"dir"`

	// EnvPrefix exposes secrets from environment variables named
	// EnvPrefix + NAME.
	EnvPrefix string `yaml:"env_prefix"`

	CacheTTL  time.Duration `yaml:"cache_ttl"`
	CacheSize int           `yaml:"cache_size"`
}

// MaskConfig extends the masked view.
type MaskConfig struct {
	Keys     []string       `yaml:"keys"`
	Patterns []mask.Pattern `yaml:"patterns"`
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Redact *bool  `yaml:"redact"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Addr      string `yaml:"addr"`
}

// TracingConfig configures OTLP span export.
type TracingConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Endpoint    string        `yaml:"endpoint"`
	Insecure    bool          `yaml:"insecure"`
	Timeout     time.Duration `yaml:"timeout"`
	Sampler     string        `yaml:"sampler"`
	SampleRatio float64       `yaml:"sample_ratio"`
	ServiceName string        `yaml:"service_name"`
}

// Dir returns the directory the manifest was loaded from.
func (m *Manifest) Dir() string {
	return m.dir
}

// PluginNames returns the enabled plugin names.
func (m *Manifest) PluginNames() []string {
	names := make([]string, 0, len(m.Plugins))
	for name := range m.Plugins {
		names = append(names, name)
	}
	return sortStrings(names)
}

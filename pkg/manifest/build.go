package manifest

import (
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/confkit/pkg/config"
	"mercator-hq/confkit/pkg/mask"
	"mercator-hq/confkit/pkg/plugin"
	"mercator-hq/confkit/pkg/plugins"
	"mercator-hq/confkit/pkg/schema"
	"mercator-hq/confkit/pkg/secrets"
	"mercator-hq/confkit/pkg/source"
	"mercator-hq/confkit/pkg/telemetry/logging"
	"mercator-hq/confkit/pkg/telemetry/tracing"
)

// Deps are the runtime collaborators Options wires into the loader.
type Deps struct {
	// Env replaces the process environment snapshot when non-nil.
	Env map[string]string

	// Logger defaults to a discard logger.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics config.Recorder

	// EncryptionKey overrides every other key source.
	EncryptionKey string

	// Tracer is optional.
	Tracer trace.Tracer
}

// Masker builds the masker for the masked view and log redaction.
func (m *Manifest) Masker() (*mask.Masker, error) {
	return mask.NewMasker(
		mask.WithSensitiveKeys(m.Mask.Keys...),
		mask.WithPatterns(m.Mask.Patterns...),
	)
}

// Logger builds the CLI logger writing to w.
func (m *Manifest) Logger(w io.Writer) (*slog.Logger, error) {
	masker, err := m.Masker()
	if err != nil {
		return nil, err
	}
	redact := DefaultLogRedact
	if m.Logging.Redact != nil {
		redact = *m.Logging.Redact
	}
	return logging.New(logging.Config{
		Level:  m.Logging.Level,
		Format: m.Logging.Format,
		Redact: redact,
		Masker: masker,
		Writer: w,
	})
}

// Tracer builds the span exporter. It is a no-op unless tracing.enabled
// is set.
func (m *Manifest) Tracer(version string) (*tracing.Tracer, error) {
	return tracing.New(tracing.Config{
		Enabled:     m.Tracing.Enabled,
		Endpoint:    m.Tracing.Endpoint,
		Insecure:    m.Tracing.Insecure,
		Timeout:     m.Tracing.Timeout,
		Sampler:     m.Tracing.Sampler,
		SampleRatio: m.Tracing.SampleRatio,
		ServiceName: m.Tracing.ServiceName,
	}, version)
}

// Registry returns a registry holding the enabled bundled plugins.
func (m *Manifest) Registry(logger *slog.Logger) (*plugin.Registry, error) {
	reg := plugin.NewRegistry(logger)
	if err := plugins.Register(reg, logger, m.PluginNames()...); err != nil {
		return nil, err
	}
	return reg, nil
}

// SecretManager returns the manager for ${secret:name} placeholders, or nil
// when no secret backend is configured.
func (m *Manifest) SecretManager(env map[string]string, logger *slog.Logger) *secrets.Manager {
	var providers []secrets.SecretProvider
	if m.Secrets.Dir != "" {
		providers = append(providers, secrets.NewFileProvider(m.Path(m.Secrets.Dir)))
	}
	if m.Secrets.EnvPrefix != "" {
		if env == nil {
			env = source.EnvironSnapshot()
		}
		providers = append(providers, secrets.NewEnvProvider(m.Secrets.EnvPrefix, env))
	}
	if len(providers) == 0 {
		return nil
	}

	var opts []secrets.ManagerOption
	if logger != nil {
		opts = append(opts, secrets.WithLogger(logger))
	}
	return secrets.NewManager(providers, secrets.CacheConfig{
		Enabled: m.Secrets.CacheTTL > 0,
		TTL:     m.Secrets.CacheTTL,
		MaxSize: m.Secrets.CacheSize,
	}, opts...)
}

// Options converts the manifest into loader options.
func (m *Manifest) Options(deps Deps) (config.Options, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	masker, err := m.Masker()
	if err != nil {
		return config.Options{}, fmt.Errorf("invalid mask configuration: %w", err)
	}
	reg, err := m.Registry(logger)
	if err != nil {
		return config.Options{}, err
	}

	opts := config.Options{
		Sources:            m.Sources,
		Profile:            m.Profile,
		Cwd:                m.Path(m.Cwd),
		Env:                deps.Env,
		EncryptionKey:      deps.EncryptionKey,
		EncryptionKeyFile:  m.Path(m.Encryption.KeyFile),
		DisableDecryption:  m.Encryption.Disabled,
		InterpolationDepth: m.Interpolation.MaxDepth,
		Plugins:            reg,
		Secrets:            m.SecretManager(deps.Env, logger),
		Masker:             masker,
		Logger:             logger,
		Metrics:            deps.Metrics,
		Tracer:             deps.Tracer,
	}

	if len(m.Profiles) > 0 {
		opts.Profiles = make(map[string]config.Profile, len(m.Profiles))
		for name, p := range m.Profiles {
			opts.Profiles[name] = config.Profile{Sources: p.Sources, Defaults: p.Defaults}
		}
	}

	if m.Schema != "" {
		field, err := schema.LoadDefinition(m.Path(m.Schema))
		if err != nil {
			return config.Options{}, err
		}
		opts.Schema = field
	}

	return opts, nil
}

// WatchOptions returns the watch settings.
func (m *Manifest) WatchOptions() config.WatchOptions {
	return config.WatchOptions{Debounce: m.Watch.Debounce, Immediate: m.Watch.Immediate}
}

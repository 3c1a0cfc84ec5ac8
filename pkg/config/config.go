package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/confkit/pkg/encryption"
	"mercator-hq/confkit/pkg/mask"
	"mercator-hq/confkit/pkg/provenance"
	"mercator-hq/confkit/pkg/source"
	"mercator-hq/confkit/pkg/tree"
	"mercator-hq/confkit/pkg/watch"
)

// Config is a loaded, immutable configuration with optional file watching.
type Config struct {
	opts   Options
	logger *slog.Logger
	cipher *encryption.Cipher
	masker *mask.Masker
	tracer trace.Tracer

	state atomic.Pointer[snapshot]

	// runMu serializes pipeline runs.
	runMu    sync.Mutex
	initOnce sync.Once
	initErr  error

	watchMu   sync.Mutex
	watching  bool
	watchGen  uint64
	watchers  []watch.Watcher
	debouncer *watch.Debouncer
	cancel    context.CancelFunc

	listenerMu sync.RWMutex
	listeners  []listener
	nextID     ListenerID
}

// New returns a Config that runs the pipeline on first access.
func New(opts Options) *Config {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cipher := opts.Cipher
	if cipher == nil {
		cipher = encryption.NewCipher()
	}
	masker := opts.Masker
	if masker == nil {
		masker = mask.New()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Config{
		opts:   opts,
		logger: logger.With("component", "config"),
		cipher: cipher,
		masker: masker,
		tracer: tracer,
	}
}

// Load runs the pipeline and returns the loaded Config.
func Load(ctx context.Context, opts Options) (*Config, error) {
	c := New(opts)
	c.initOnce.Do(func() { c.initErr = c.initialLoad(ctx) })
	if c.initErr != nil {
		return nil, c.initErr
	}
	return c, nil
}

// initialLoad runs the first pipeline. It emits no events.
func (c *Config) initialLoad(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.state.Load() != nil {
		return nil
	}

	start := time.Now()
	snap, err := c.run(ctx)
	c.recordLoad(snap, time.Since(start), err)
	if err != nil {
		c.logger.Error("failed to load configuration", "error", err)
		return err
	}
	c.state.Store(snap)
	c.logger.Info("configuration loaded",
		"profile", snap.context.Profile,
		"sources", len(snap.sources),
		"duration", time.Since(start),
	)
	return nil
}

func (c *Config) recordLoad(snap *snapshot, d time.Duration, err error) {
	if c.opts.Metrics == nil {
		return
	}
	profile := c.opts.Profile
	if snap != nil {
		profile = snap.context.Profile
	}
	c.opts.Metrics.RecordLoad(profile, d, err)
}

// current returns the active snapshot, loading it on first use. It returns
// nil when the lazy load failed.
func (c *Config) current() *snapshot {
	if s := c.state.Load(); s != nil {
		return s
	}
	c.initOnce.Do(func() { c.initErr = c.initialLoad(context.Background()) })
	return c.state.Load()
}

// Err reports the error of a failed lazy load. It returns nil once any
// load has succeeded.
func (c *Config) Err() error {
	if c.current() != nil {
		return nil
	}
	return c.initErr
}

// Get returns a copy of the value at the dot path.
func (c *Config) Get(path string) (any, bool) {
	s := c.current()
	if s == nil {
		return nil, false
	}
	return s.data.Get(path)
}

// All returns the whole configuration.
func (c *Config) All() tree.Frozen {
	s := c.current()
	if s == nil {
		return tree.Frozen{}
	}
	return s.data
}

// Has reports whether the dot path resolves to a value.
func (c *Config) Has(path string) bool {
	s := c.current()
	return s != nil && s.data.Has(path)
}

// Source returns the label of the source that supplied path, or of its
// nearest ancestor that was supplied as a whole.
func (c *Config) Source(path string) (string, bool) {
	s := c.current()
	if s == nil {
		return "", false
	}
	return s.provenance.Source(path)
}

// Provenance returns the full provenance entry for path.
func (c *Config) Provenance(path string) (provenance.Entry, bool) {
	s := c.current()
	if s == nil {
		return provenance.Entry{}, false
	}
	return s.provenance.Lookup(path)
}

// Origins returns every provenance entry in path order.
func (c *Config) Origins() []provenance.Entry {
	s := c.current()
	if s == nil {
		return nil
	}
	return s.provenance.Entries()
}

// Masked returns the configuration with secrets hidden: values under
// sensitive keys, values that were decrypted, and secret-looking strings.
func (c *Config) Masked() tree.Frozen {
	s := c.current()
	if s == nil {
		return tree.Frozen{}
	}
	return tree.Freeze(c.masker.Tree(s.data.Map(), s.encrypted))
}

// Profile returns the profile of the active snapshot.
func (c *Config) Profile() string {
	s := c.current()
	if s == nil {
		return ""
	}
	return s.context.Profile
}

// LoadedAt returns when the active snapshot was produced.
func (c *Config) LoadedAt() time.Time {
	s := c.current()
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}

// Bind decodes the whole configuration into target, which must be a
// pointer. Fields are matched by their mapstructure tag.
func (c *Config) Bind(target any) error {
	s := c.current()
	if s == nil {
		return c.initErr
	}
	if err := decode(s.data.Map(), target); err != nil {
		return fmt.Errorf("failed to bind configuration: %w", err)
	}
	return nil
}

// Value returns the value at path converted to T. Maps decode into structs
// by mapstructure tag; strings decode into time.Duration and
// encoding.TextUnmarshaler types.
func Value[T any](c *Config, path string) (T, error) {
	var out T
	v, ok := c.Get(path)
	if !ok {
		if err := c.Err(); err != nil {
			return out, err
		}
		return out, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	if err := decode(v, &out); err != nil {
		return out, fmt.Errorf("failed to convert %s: %w", path, err)
	}
	return out, nil
}

// ValueOr returns the value at path, or def when the path is missing or
// cannot be converted.
func ValueOr[T any](c *Config, path string, def T) T {
	v, err := Value[T](c, path)
	if err != nil {
		return def
	}
	return v
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: output,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// activeContext returns the loader context of the current snapshot, or a
// fresh one when nothing has loaded.
func (c *Config) activeContext() (source.LoadContext, []source.Source, error) {
	if s := c.current(); s != nil {
		return s.context, s.sources, nil
	}
	lc, err := c.loadContext()
	if err != nil {
		return source.LoadContext{}, nil, err
	}
	return lc, c.opts.activeSources(lc.Profile), nil
}

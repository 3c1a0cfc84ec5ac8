package config

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/confkit/pkg/encryption"
	"mercator-hq/confkit/pkg/mask"
	"mercator-hq/confkit/pkg/schema"
	"mercator-hq/confkit/pkg/secrets"
	"mercator-hq/confkit/pkg/source"
	"mercator-hq/confkit/pkg/watch"
)

const (
	// ProfileEnvVar selects the profile when Options.Profile is empty.
	ProfileEnvVar = "CONFKIT_PROFILE"

	// KeyEnvPrefix prefixes secret names looked up in the environment, so
	// the encryption key is read from CONFKIT_ENCRYPTION_KEY.
	KeyEnvPrefix = "CONFKIT_"

	// DefaultProfile is used when no profile is configured.
	DefaultProfile = "development"

	// DefaultDebounce is the quiet period between a file change and the
	// reload it triggers.
	DefaultDebounce = 100 * time.Millisecond
)

// Profile holds per-profile sources and defaults.
type Profile struct {
	// Sources replace Options.Sources when non-empty.
	Sources []source.Source

	// Defaults are merged before any source and recorded in provenance as
	// "profile:<name>".
	Defaults map[string]any
}

// Options configures a Config. Only Sources is required.
type Options struct {
	// Sources are loaded in order; later sources override earlier ones.
	Sources []source.Source

	// Schema validates the merged tree. Nil skips validation.
	Schema schema.Schema

	// Profile is the active profile name.
	Profile string

	// Profiles maps profile names to their sources and defaults.
	Profiles map[string]Profile

	// Cwd resolves relative file paths. Defaults to the process working
	// directory.
	Cwd string

	// Env replaces the process environment snapshot when non-nil.
	Env map[string]string

	// EncryptionKey is the passphrase for encrypted values.
	EncryptionKey string

	// EncryptionKeyFile holds the passphrase. It must have 0600 or 0400
	// permissions.
	EncryptionKeyFile string

	// DisableDecryption leaves envelopes untouched.
	DisableDecryption bool

	// Cipher overrides the default envelope cipher.
	Cipher *encryption.Cipher

	// InterpolationDepth bounds nested placeholder expansion. Zero means
	// interpolate.DefaultMaxDepth.
	InterpolationDepth int

	// Plugins resolves plugin sources. A *plugin.Registry is the usual
	// implementation.
	Plugins source.PluginProvider

	// Secrets resolves ${secret:name} placeholders and is the last fallback
	// for the encryption key.
	Secrets *secrets.Manager

	// Masker builds the Masked view. Defaults to mask.New().
	Masker *mask.Masker

	// Logger receives debug and warning output. Defaults to a discard
	// logger.
	Logger *slog.Logger

	// Metrics records pipeline measurements when set.
	Metrics Recorder

	// Tracer records a span per pipeline run and per source. Defaults to a
	// no-op tracer.
	Tracer trace.Tracer

	// WatcherFactory opens file watchers. Defaults to watch.FSNotify.
	WatcherFactory watch.Factory

	// AfterFunc schedules debounced reloads. Defaults to time.AfterFunc.
	AfterFunc watch.AfterFunc
}

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce is the quiet period before a reload. Zero means
	// DefaultDebounce.
	Debounce time.Duration

	// Immediate runs one reload as soon as watching starts.
	Immediate bool
}

// Recorder receives pipeline measurements.
type Recorder interface {
	RecordLoad(profile string, duration time.Duration, err error)
	RecordReload(profile string, changedPaths int, err error)
	RecordEvent(eventType string)
	SetWatchedFiles(n int)
}

// activeProfile resolves the profile name against the environment
// snapshot.
func (o Options) activeProfile(env map[string]string) string {
	if o.Profile != "" {
		return o.Profile
	}
	if p := env[ProfileEnvVar]; p != "" {
		return p
	}
	return DefaultProfile
}

// activeSources returns the sources for profile.
func (o Options) activeSources(profile string) []source.Source {
	if p, ok := o.Profiles[profile]; ok && len(p.Sources) > 0 {
		return p.Sources
	}
	return o.Sources
}

package manifest

import (
	"time"

	"mercator-hq/confkit/pkg/config"
	"mercator-hq/confkit/pkg/interpolate"
	"mercator-hq/confkit/pkg/telemetry/tracing"
)

// Default values for manifest fields.
const (
	DefaultFileName           = "confkit.yaml"
	DefaultCwd                = "."
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultLogRedact          = true
	DefaultMetricsNamespace   = "confkit"
	DefaultMetricsAddr        = "127.0.0.1:9464"
	DefaultSecretsCacheTTL    = 5 * time.Minute
	DefaultSecretsCacheSize   = 256
	DefaultWatchDebounce      = config.DefaultDebounce
	DefaultInterpolationDepth = interpolate.DefaultMaxDepth
	DefaultTracingSampler     = tracing.SamplerAlways
	DefaultTracingTimeout     = 10 * time.Second
)

// ApplyDefaults fills every unset field.
func ApplyDefaults(m *Manifest) {
	if m.Cwd == "" {
		m.Cwd = DefaultCwd
	}
	if m.Interpolation.MaxDepth == 0 {
		m.Interpolation.MaxDepth = DefaultInterpolationDepth
	}
	if m.Watch.Debounce == 0 {
		m.Watch.Debounce = DefaultWatchDebounce
	}
	if m.Secrets.CacheTTL == 0 {
		m.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}
	if m.Secrets.CacheSize == 0 {
		m.Secrets.CacheSize = DefaultSecretsCacheSize
	}
	if m.Logging.Level == "" {
		m.Logging.Level = DefaultLogLevel
	}
	if m.Logging.Format == "" {
		m.Logging.Format = DefaultLogFormat
	}
	if m.Logging.Redact == nil {
		redact := DefaultLogRedact
		m.Logging.Redact = &redact
	}
	if m.Metrics.Namespace == "" {
		m.Metrics.Namespace = DefaultMetricsNamespace
	}
	if m.Metrics.Addr == "" {
		m.Metrics.Addr = DefaultMetricsAddr
	}
	if m.Tracing.Sampler == "" {
		m.Tracing.Sampler = DefaultTracingSampler
	}
	if m.Tracing.Timeout == 0 {
		m.Tracing.Timeout = DefaultTracingTimeout
	}
}

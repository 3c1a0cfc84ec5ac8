package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	// otherLabel replaces label values beyond the cardinality limit.
	otherLabel = "other"
)

// Config configures a Collector.
type Config struct {
	// Enabled turns recording on. A disabled collector still registers its
	// metrics but never updates them.
	Enabled bool

	// Namespace and Subsystem prefix every metric name.
	Namespace string
	Subsystem string

	// DurationBuckets are the load duration histogram buckets in seconds.
	DurationBuckets []float64

	// MaxProfiles bounds the number of distinct profile labels.
	MaxProfiles int
}

// Collector records pipeline metrics. It implements config.Recorder.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	pipeline *PipelineMetrics
	refresh  *RefreshMetrics

	profiles *CardinalityLimiter
}

// NewCollector creates a collector registered with registry. A nil
// registry gets a fresh one.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "confkit"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "config"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Local files load in microseconds; remote plugins in seconds.
		cfg.DurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
	}
	if cfg.MaxProfiles <= 0 {
		cfg.MaxProfiles = 32
	}

	return &Collector{
		config:   cfg,
		registry: registry,
		pipeline: NewPipelineMetrics(cfg, registry),
		refresh:  NewRefreshMetrics(cfg, registry),
		profiles: NewCardinalityLimiter(cfg.MaxProfiles),
	}
}

func (c *Collector) profile(name string) string {
	if !c.profiles.Allow(name) {
		return otherLabel
	}
	return name
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}

// RecordLoad records one pipeline run.
func (c *Collector) RecordLoad(profile string, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.pipeline.RecordLoad(c.profile(profile), status(err), duration)
}

// RecordReload records the outcome of a reload and how many paths changed.
func (c *Collector) RecordReload(profile string, changedPaths int, err error) {
	if !c.config.Enabled {
		return
	}
	c.pipeline.RecordReload(c.profile(profile), status(err), changedPaths)
}

// RecordEvent counts an emitted event.
func (c *Collector) RecordEvent(eventType string) {
	if !c.config.Enabled {
		return
	}
	c.pipeline.events.WithLabelValues(eventType).Inc()
}

// SetWatchedFiles sets the number of watched files.
func (c *Collector) SetWatchedFiles(n int) {
	if !c.config.Enabled {
		return
	}
	c.pipeline.watchedFiles.Set(float64(n))
}

// RecordRefresh records one scheduled refresh.
func (c *Collector) RecordRefresh(err error) {
	if !c.config.Enabled {
		return
	}
	c.refresh.runs.WithLabelValues(status(err)).Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality
// distinct values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already admitted or can still be.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of admitted values.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}

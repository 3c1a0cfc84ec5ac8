package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks load and reload activity.
type PipelineMetrics struct {
	loadsTotal   *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	lastSuccess  prometheus.Gauge

	reloadsTotal *prometheus.CounterVec
	changedPaths prometheus.Histogram

	events       *prometheus.CounterVec
	watchedFiles prometheus.Gauge
}

// NewPipelineMetrics creates and registers pipeline metrics.
func NewPipelineMetrics(cfg Config, registry *prometheus.Registry) *PipelineMetrics {
	pm := &PipelineMetrics{
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "loads_total",
				Help:      "Total number of pipeline runs",
			},
			[]string{"profile", "status"},
		),

		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "load_duration_seconds",
				Help:      "Duration of pipeline runs in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"profile"},
		),

		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful pipeline run",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reloads_total",
				Help:      "Total number of reloads",
			},
			[]string{"profile", "status"},
		),

		changedPaths: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "changed_paths",
				Help:      "Number of configuration paths changed per successful reload",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		),

		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "events_total",
				Help:      "Total number of emitted configuration events",
			},
			[]string{"type"},
		),

		watchedFiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "watched_files",
				Help:      "Number of configuration files being watched",
			},
		),
	}

	registry.MustRegister(
		pm.loadsTotal,
		pm.loadDuration,
		pm.lastSuccess,
		pm.reloadsTotal,
		pm.changedPaths,
		pm.events,
		pm.watchedFiles,
	)

	return pm
}

// RecordLoad records one pipeline run.
func (pm *PipelineMetrics) RecordLoad(profile, status string, duration time.Duration) {
	pm.loadsTotal.WithLabelValues(profile, status).Inc()
	pm.loadDuration.WithLabelValues(profile).Observe(duration.Seconds())
	if status == statusSuccess {
		pm.lastSuccess.SetToCurrentTime()
	}
}

// RecordReload records a reload outcome.
func (pm *PipelineMetrics) RecordReload(profile, status string, changed int) {
	pm.reloadsTotal.WithLabelValues(profile, status).Inc()
	if status == statusSuccess {
		pm.changedPaths.Observe(float64(changed))
	}
}

// RefreshMetrics tracks scheduled refreshes.
type RefreshMetrics struct {
	runs *prometheus.CounterVec
}

// NewRefreshMetrics creates and registers refresh metrics.
func NewRefreshMetrics(cfg Config, registry *prometheus.Registry) *RefreshMetrics {
	rm := &RefreshMetrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "refresh_runs_total",
				Help:      "Total number of scheduled configuration refreshes",
			},
			[]string{"status"},
		),
	}
	registry.MustRegister(rm.runs)
	return rm
}

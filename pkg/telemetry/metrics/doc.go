// Package metrics provides Prometheus metrics for the configuration
// pipeline.
//
// # Metrics
//
//   - confkit_config_loads_total: pipeline runs by profile and status
//   - confkit_config_load_duration_seconds: pipeline duration histogram
//   - confkit_config_reloads_total: reloads by profile and status
//   - confkit_config_changed_paths: paths changed per reload
//   - confkit_config_last_success_timestamp_seconds: last successful run
//   - confkit_config_events_total: emitted events by type
//   - confkit_config_watched_files: files currently watched
//   - confkit_config_refresh_runs_total: scheduled refreshes by status
//
// # Usage
//
//	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
//	cfg, err := config.Load(ctx, config.Options{
//		Sources: sources,
//		Metrics: collector,
//	})
//	http.Handle("/metrics", collector.Handler())
//
// # Cardinality Management
//
// Profile names come from the environment, so the collector caps the
// number of distinct profile labels; further profiles are recorded as
// "other".
package metrics

// Package telemetry groups the observability packages used by confkit.
//
//   - logging: slog construction with secret redaction and context helpers
//   - metrics: Prometheus collectors for loads, reloads and refreshes
//   - tracing: OpenTelemetry spans for pipeline runs
//   - health: liveness and readiness probes for confkit watch
//
// None of them ever record configuration values, only paths, labels and
// counts.
package telemetry

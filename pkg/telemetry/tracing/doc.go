// Package tracing records OpenTelemetry spans for configuration loads.
//
// A disabled Tracer is a no-op. An enabled one exports through OTLP/gRPC:
//
//	t, err := tracing.New(tracing.Config{
//	    Enabled:     true,
//	    Endpoint:    "localhost:4317",
//	    Insecure:    true,
//	    Sampler:     tracing.SamplerRatio,
//	    SampleRatio: 0.25,
//	}, "1.0.0")
//	defer t.Shutdown(context.Background())
//
//	opts.Tracer = t.Tracer()
//
// The loader then emits one "confkit.load" span per pipeline run with a
// "confkit.source" child per source. Span attributes carry paths, labels
// and counts only, never configuration values.
package tracing

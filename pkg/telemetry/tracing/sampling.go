package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sampling strategies.
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
)

// ValidateSampler checks a strategy and ratio pair.
func ValidateSampler(strategy string, ratio float64) error {
	switch strategy {
	case "", SamplerAlways, SamplerNever:
		return nil
	case SamplerRatio:
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %g", ratio)
		}
		return nil
	default:
		return fmt.Errorf("unknown sampler strategy %q (valid: always, never, ratio)", strategy)
	}
}

// newSampler returns a parent-based sampler. An empty strategy samples
// everything.
func newSampler(strategy string, ratio float64) (sdktrace.Sampler, error) {
	if err := ValidateSampler(strategy, ratio); err != nil {
		return nil, err
	}
	var base sdktrace.Sampler
	switch strategy {
	case SamplerNever:
		base = sdktrace.NeverSample()
	case SamplerRatio:
		base = sdktrace.TraceIDRatioBased(ratio)
	default:
		base = sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(base), nil
}

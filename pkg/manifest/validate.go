package manifest

import (
	"fmt"
	"sort"
	"strings"

	"mercator-hq/confkit/pkg/mask"
	"mercator-hq/confkit/pkg/plugins"
	"mercator-hq/confkit/pkg/refresh"
	"mercator-hq/confkit/pkg/source"
	"mercator-hq/confkit/pkg/telemetry/logging"
	"mercator-hq/confkit/pkg/telemetry/tracing"
)

// FieldError represents a validation error for a specific manifest field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "sources[0].path").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a manifest.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "manifest validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("manifest validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("manifest validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks m and returns a ValidationError listing every problem.
// Defaults should be applied first.
func Validate(m *Manifest) error {
	var errs []FieldError

	errs = append(errs, validatePlugins(m.Plugins)...)
	errs = append(errs, validateSources("sources", m.Sources, m.Plugins)...)

	for _, name := range sortedProfileNames(m.Profiles) {
		errs = append(errs, validateSources(fmt.Sprintf("profiles.%s.sources", name), m.Profiles[name].Sources, m.Plugins)...)
	}
	if len(m.Sources) == 0 && !anyProfileSources(m.Profiles) {
		errs = append(errs, FieldError{Field: "sources", Message: "at least one source is required"})
	}

	if m.Interpolation.MaxDepth < 0 {
		errs = append(errs, FieldError{Field: "interpolation.max_depth", Message: "must not be negative"})
	}
	if m.Watch.Debounce < 0 {
		errs = append(errs, FieldError{Field: "watch.debounce", Message: "must not be negative"})
	}
	if m.Refresh.Schedule != "" {
		if err := refresh.ValidateSchedule(m.Refresh.Schedule); err != nil {
			errs = append(errs, FieldError{Field: "refresh.schedule", Message: err.Error()})
		}
	}
	if m.Secrets.CacheTTL < 0 {
		errs = append(errs, FieldError{Field: "secrets.cache_ttl", Message: "must not be negative"})
	}
	if m.Secrets.CacheSize < 0 {
		errs = append(errs, FieldError{Field: "secrets.cache_size", Message: "must not be negative"})
	}

	for i, p := range m.Mask.Patterns {
		if _, err := mask.NewMasker(mask.WithPatterns(p)); err != nil {
			errs = append(errs, FieldError{Field: fmt.Sprintf("mask.patterns[%d]", i), Message: err.Error()})
		}
	}

	if _, err := logging.ParseLevel(m.Logging.Level); err != nil {
		errs = append(errs, FieldError{Field: "logging.level", Message: err.Error()})
	}
	if _, err := logging.ParseFormat(m.Logging.Format); err != nil {
		errs = append(errs, FieldError{Field: "logging.format", Message: err.Error()})
	}

	if m.Metrics.Enabled && m.Metrics.Namespace == "" {
		errs = append(errs, FieldError{Field: "metrics.namespace", Message: "namespace is required when metrics are enabled"})
	}

	if m.Tracing.Enabled && m.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{Field: "tracing.endpoint", Message: "endpoint is required when tracing is enabled"})
	}
	if err := tracing.ValidateSampler(m.Tracing.Sampler, m.Tracing.SampleRatio); err != nil {
		errs = append(errs, FieldError{Field: "tracing.sampler", Message: err.Error()})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validatePlugins(enabled map[string]map[string]any) []FieldError {
	var errs []FieldError
	for _, name := range sortStrings(keys(enabled)) {
		if !plugins.IsBuiltin(name) {
			errs = append(errs, FieldError{
				Field:   "plugins." + name,
				Message: fmt.Sprintf("unknown plugin (available: %s)", strings.Join(plugins.Names(), ", ")),
			})
		}
	}
	return errs
}

func validateSources(field string, sources []source.Source, enabled map[string]map[string]any) []FieldError {
	var errs []FieldError
	for i, src := range sources {
		path := fmt.Sprintf("%s[%d]", field, i)
		if err := src.Validate(); err != nil {
			errs = append(errs, FieldError{Field: path, Message: err.Error()})
			continue
		}
		if src.Kind == source.KindPlugin {
			if _, ok := enabled[src.Name]; !ok {
				errs = append(errs, FieldError{
					Field:   path + ".name",
					Message: fmt.Sprintf("plugin %q is not enabled in the plugins section", src.Name),
				})
			}
		}
	}
	return errs
}

func anyProfileSources(profiles map[string]ProfileConfig) bool {
	for _, p := range profiles {
		if len(p.Sources) > 0 {
			return true
		}
	}
	return false
}

func sortedProfileNames(profiles map[string]ProfileConfig) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	return sortStrings(names)
}

func keys(m map[string]map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortStrings(s []string) []string {
	sort.Strings(s)
	return s
}

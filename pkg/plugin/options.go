package plugin

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeOptions decodes a source's plugin options into target, which must be
// a pointer to a struct. Field names are matched against `mapstructure` tags,
// strings are weakly converted to numbers and booleans, and duration strings
// such as "30s" are accepted for time.Duration fields. Unknown keys are an
// error.
func DecodeOptions(options map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create options decoder: %w", err)
	}
	if err := dec.Decode(options); err != nil {
		return fmt.Errorf("invalid plugin options: %w", err)
	}
	return nil
}

package schema

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"mercator-hq/confkit/pkg/tree"
)

// Definition is the serialized form of a Field. In YAML:
//
//	server:
//	  type: object
//	  fields:
//	    host: {type: string, default: localhost}
//	    port: {type: integer, min: 1, max: 65535, default: 3000}
//	log_level:
//	  type: string
//	  enum: [debug, info, warn, error]
//	  default: info
//	tags: {type: array, items: string, optional: true}
//
// A bare string is shorthand for {type: <string>}. An object without fields
// keeps every key.
type Definition struct {
	Type        string                `mapstructure:"type" validate:"required,oneof=object string number integer boolean bool array any duration url"`
	Fields      map[string]Definition `mapstructure:"fields" validate:"-"`
	Items       *Definition           `mapstructure:"items" validate:"-"`
	Default     any                   `mapstructure:"default"`
	Optional    bool                  `mapstructure:"optional"`
	Min         *float64              `mapstructure:"min"`
	Max         *float64              `mapstructure:"max"`
	Enum        []any                 `mapstructure:"enum"`
	Pattern     string                `mapstructure:"pattern"`
	Passthrough bool                  `mapstructure:"passthrough"`
	Description string                `mapstructure:"description"`
}

var definitionValidator = validator.New()

// FromDefinition builds an object schema from a decoded definition. def is
// either the map of top-level fields or a single definition with type
// "object".
func FromDefinition(def map[string]any) (*Field, error) {
	var root Definition
	if t, ok := def["type"].(string); ok && t == string(KindObject) {
		if _, hasFields := def["fields"]; hasFields {
			if err := decodeDefinition(def, &root); err != nil {
				return nil, err
			}
			return root.build("")
		}
	}

	root = Definition{Type: string(KindObject)}
	if err := decodeDefinition(def, &root.Fields); err != nil {
		return nil, err
	}
	if len(root.Fields) == 0 {
		return nil, errors.New("schema definition has no fields")
	}
	return root.build("")
}

// LoadDefinition reads a YAML or JSON definition file.
func LoadDefinition(path string) (*Field, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var def map[string]any
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %q: %w", path, err)
	}
	field, err := FromDefinition(def)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file %q: %w", path, err)
	}
	return field, nil
}

func decodeDefinition(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncType(shorthandHook),
		ErrorUnused: true,
		Result:      output,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("failed to decode schema definition: %w", err)
	}
	return nil
}

var definitionType = reflect.TypeOf(Definition{})

// shorthandHook expands `port: integer` to `port: {type: integer}`.
func shorthandHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	if to == definitionType || (to.Kind() == reflect.Ptr && to.Elem() == definitionType) {
		return map[string]any{"type": data}, nil
	}
	return data, nil
}

func (d Definition) build(path string) (*Field, error) {
	if err := definitionValidator.Struct(d); err != nil {
		return nil, definitionError(path, err)
	}

	var f *Field
	switch Kind(d.Type) {
	case KindObject:
		fields := make(map[string]*Field, len(d.Fields))
		names := make([]string, 0, len(d.Fields))
		for name := range d.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child, err := d.Fields[name].build(tree.Join(path, name))
			if err != nil {
				return nil, err
			}
			fields[name] = child
		}
		f = Object(fields)
		if len(fields) == 0 {
			f.passthrough = true
		}
	case KindString:
		f = String()
	case KindNumber:
		f = Number()
	case KindInteger:
		f = Integer()
	case KindBool, "bool":
		f = Bool()
	case KindArray:
		f = Array(nil)
		if d.Items != nil {
			items, err := d.Items.build(tree.Join(path, "items"))
			if err != nil {
				return nil, err
			}
			f.items = items
		}
	case KindAny:
		f = Any()
	case KindDuration:
		f = Duration()
	case KindURL:
		f = URL()
	}

	if d.Pattern != "" {
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern at %q: %w", path, err)
		}
		f.pattern = re
	}
	if d.Min != nil {
		f = f.Min(*d.Min)
	}
	if d.Max != nil {
		f = f.Max(*d.Max)
	}
	if len(d.Enum) > 0 {
		f = f.OneOf(d.Enum...)
	}
	if d.Optional {
		f = f.Optional()
	}
	if d.Passthrough {
		f = f.Passthrough()
	}
	if d.Default != nil {
		f = f.Default(d.Default)
	}
	if d.Description != "" {
		f = f.Describe(d.Description)
	}
	return f, nil
}

func definitionError(path string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		where := path
		if where == "" {
			where = "<root>"
		}
		return fmt.Errorf("invalid schema definition at %q: field %s failed %q validation (value %v)", where, fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid schema definition at %q: %w", path, err)
}

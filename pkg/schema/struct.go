package schema

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"mercator-hq/confkit/pkg/tree"
)

var (
	decodeMessageRegex = regexp.MustCompile(`^'([^']*)' (.*)$`)
	expectedTypeRegex  = regexp.MustCompile(`expected type '([^']+)'`)
	indexRegex         = regexp.MustCompile(`\[(\d+)\]`)
)

// StructSchema validates by decoding into T.
//
// Zero-valued fields left after decoding are filled from the defaults value,
// so an explicit zero in the input (0, false, "") is indistinguishable from
// a missing value and also receives the default.
type StructSchema[T any] struct {
	defaults T
	validate *validator.Validate
}

// Struct returns a schema for T with the given defaults. Keys are matched
// through `mapstructure` tags and constraints come from `validate` tags.
func Struct[T any](defaults T) *StructSchema[T] {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		default:
			return name
		}
	})
	return &StructSchema[T]{defaults: defaults, validate: v}
}

// Decode converts data into a defaulted, validated T.
func (s *StructSchema[T]) Decode(data map[string]any) (T, []Issue) {
	var out T

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result: &out,
	})
	if err != nil {
		return out, []Issue{{Message: err.Error()}}
	}
	if err := dec.Decode(data); err != nil {
		return out, decodeIssues(err, data)
	}

	if err := mergo.Merge(&out, s.defaults); err != nil {
		return out, []Issue{{Message: fmt.Sprintf("failed to apply defaults: %v", err)}}
	}

	if reflect.Indirect(reflect.ValueOf(out)).Kind() != reflect.Struct {
		return out, nil
	}
	if err := s.validate.Struct(out); err != nil {
		return out, validationIssues(err)
	}
	return out, nil
}

// Check implements Schema.
func (s *StructSchema[T]) Check(data map[string]any) []Issue {
	_, issues := s.Decode(data)
	return issues
}

// Parse implements Schema. The output is T converted back to a tree using
// the same mapstructure key names.
func (s *StructSchema[T]) Parse(data map[string]any) (map[string]any, error) {
	value, issues := s.Decode(data)
	if len(issues) > 0 {
		return nil, &IssuesError{Issues: issues}
	}

	var m map[string]any
	if err := mapstructure.Decode(value, &m); err != nil {
		return nil, fmt.Errorf("failed to convert %T to a tree: %w", value, err)
	}
	out, _ := tree.Normalize(m).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func decodeIssues(err error, data map[string]any) []Issue {
	var merr *mapstructure.Error
	if !errors.As(err, &merr) {
		return []Issue{{Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(merr.Errors))
	for _, msg := range merr.Errors {
		issue := Issue{Message: msg}
		if m := decodeMessageRegex.FindStringSubmatch(msg); m != nil {
			issue.Path = indexRegex.ReplaceAllString(m[1], ".$1")
			issue.Message = m[2]
		}
		if m := expectedTypeRegex.FindStringSubmatch(msg); m != nil {
			issue.Expected = m[1]
		}
		if v, ok := tree.Get(data, issue.Path); ok && issue.Path != "" {
			issue.Received = v
			issue.HasReceived = true
		}
		issues = append(issues, issue)
	}
	return issues
}

func validationIssues(err error) []Issue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		path = indexRegex.ReplaceAllString(path, ".$1")

		expected := fe.Tag()
		if fe.Param() != "" {
			expected += "=" + fe.Param()
		}

		issue := Issue{
			Path:     path,
			Message:  fmt.Sprintf("failed %q validation", expected),
			Expected: expected,
		}
		if fe.Tag() != "required" {
			issue.Received = fe.Value()
			issue.HasReceived = true
		} else {
			issue.Message = "Required"
		}
		issues = append(issues, issue)
	}
	return issues
}

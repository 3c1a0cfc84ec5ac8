package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"mercator-hq/confkit/pkg/tree"
)

var (
	errTrailingData = errors.New("unexpected data after top-level value")
	errNotObject    = errors.New("top-level value must be an object")
)

// Parse decodes data in the given format into a configuration tree. Errors
// are returned as *ParseError without a path; callers that know the file
// fill it in.
func Parse(data []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatDotenv:
		values, err := ParseDotenv(data)
		if err != nil {
			return nil, err
		}
		return NestDotenv(values), nil
	case FormatJSON, "":
		return parseJSON(data)
	default:
		return nil, &ParseError{Format: format, Cause: fmt.Errorf("unsupported format %q", format)}
	}
}

func parseJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{Format: FormatJSON, Cause: err}
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, &ParseError{Format: FormatJSON, Cause: errTrailingData}
	}

	m, ok := normalizeNumbers(v).(map[string]any)
	if !ok {
		return nil, &ParseError{Format: FormatJSON, Cause: errNotObject}
	}
	return m, nil
}

func parseYAML(data []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &ParseError{Format: FormatYAML, Cause: err}
	}
	if v == nil {
		return map[string]any{}, nil
	}
	m, ok := normalizeYAML(v).(map[string]any)
	if !ok {
		return nil, &ParseError{Format: FormatYAML, Cause: errNotObject}
	}
	return m, nil
}

// normalizeYAML converts map[any]any nodes produced for non-string keys.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

type jsonNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// normalizeNumbers turns decoder number values into int when integral and
// float64 otherwise.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeNumbers(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalizeNumbers(val)
		}
		return t
	case jsonNumber:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out, _ := tree.Normalize(m).(map[string]any)
	if out == nil {
		return map[string]any{}
	}
	return out
}

package schema

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"mercator-hq/confkit/pkg/tree"
)

// Kind is the value type a Field accepts.
type Kind string

const (
	KindObject   Kind = "object"
	KindString   Kind = "string"
	KindNumber   Kind = "number"
	KindInteger  Kind = "integer"
	KindBool     Kind = "boolean"
	KindArray    Kind = "array"
	KindAny      Kind = "any"
	KindDuration Kind = "duration"
	KindURL      Kind = "url"
)

// Field is a node of a declarative schema. Builder methods return modified
// copies, so a Field can be shared between schemas.
//
// A missing or null value takes the field's default when one is set, is
// omitted when the field is optional, and is otherwise reported as
// required. Objects are the exception: a missing object is treated as an
// empty one so that the defaults of its fields apply.
type Field struct {
	kind        Kind
	fields      map[string]*Field
	items       *Field
	def         any
	hasDefault  bool
	optional    bool
	min, max    *float64
	oneOf       []any
	pattern     *regexp.Regexp
	passthrough bool
	description string
}

// Object returns an object field with the given members.
func Object(fields map[string]*Field) *Field {
	copied := make(map[string]*Field, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Field{kind: KindObject, fields: copied}
}

// String returns a string field.
func String() *Field { return &Field{kind: KindString} }

// Number returns a field accepting any integer or floating point number.
func Number() *Field { return &Field{kind: KindNumber} }

// Integer returns a field accepting whole numbers. Integral floats are
// converted to int.
func Integer() *Field { return &Field{kind: KindInteger} }

// Bool returns a boolean field.
func Bool() *Field { return &Field{kind: KindBool} }

// Array returns an array field whose elements match items. A nil items
// accepts any element.
func Array(items *Field) *Field { return &Field{kind: KindArray, items: items} }

// Any returns a field accepting every value.
func Any() *Field { return &Field{kind: KindAny} }

// Duration returns a field accepting Go duration strings ("1m30s"). The
// parsed value is a time.Duration.
func Duration() *Field { return &Field{kind: KindDuration} }

// URL returns a string field that must be an absolute URL.
func URL() *Field { return &Field{kind: KindURL} }

func (f *Field) clone() *Field {
	c := *f
	return &c
}

// Default sets the value used when the field is missing.
func (f *Field) Default(v any) *Field {
	c := f.clone()
	c.def = tree.Normalize(v)
	c.hasDefault = true
	return c
}

// Optional allows the field to be missing.
func (f *Field) Optional() *Field {
	c := f.clone()
	c.optional = true
	return c
}

// Min sets a lower bound: the value for numbers, the length for strings
// and arrays.
func (f *Field) Min(n float64) *Field {
	c := f.clone()
	c.min = &n
	return c
}

// Max sets an upper bound: the value for numbers, the length for strings
// and arrays.
func (f *Field) Max(n float64) *Field {
	c := f.clone()
	c.max = &n
	return c
}

// OneOf restricts the field to the given values.
func (f *Field) OneOf(values ...any) *Field {
	c := f.clone()
	c.oneOf = make([]any, len(values))
	for i, v := range values {
		c.oneOf[i] = tree.Normalize(v)
	}
	return c
}

// Pattern requires strings to match expr. It panics if expr does not
// compile.
func (f *Field) Pattern(expr string) *Field {
	c := f.clone()
	c.pattern = regexp.MustCompile(expr)
	return c
}

// Passthrough keeps keys of an object that have no declared field.
func (f *Field) Passthrough() *Field {
	c := f.clone()
	c.passthrough = true
	return c
}

// Describe attaches a description.
func (f *Field) Describe(text string) *Field {
	c := f.clone()
	c.description = text
	return c
}

// Kind returns the field kind.
func (f *Field) Kind() Kind { return f.kind }

// Description returns the text set with Describe.
func (f *Field) Description() string { return f.description }

// Field returns the member name of an object field.
func (f *Field) Field(name string) (*Field, bool) {
	child, ok := f.fields[name]
	return child, ok
}

// Check implements Schema. The receiver must be an object field.
func (f *Field) Check(data map[string]any) []Issue {
	_, issues := f.parseRoot(data)
	return issues
}

// Parse implements Schema. The receiver must be an object field.
func (f *Field) Parse(data map[string]any) (map[string]any, error) {
	out, issues := f.parseRoot(data)
	if len(issues) > 0 {
		return nil, &IssuesError{Issues: issues}
	}
	return out, nil
}

func (f *Field) parseRoot(data map[string]any) (map[string]any, []Issue) {
	if f.kind != KindObject {
		return nil, []Issue{{Message: "root schema must be an object", Expected: string(KindObject)}}
	}
	var issues []Issue
	if data == nil {
		data = map[string]any{}
	}
	out := f.parseObject("", data, &issues)
	return out, issues
}

// parse validates v at path. The boolean result reports whether the output
// should contain the key.
func (f *Field) parse(path string, v any, present bool, issues *[]Issue) (any, bool) {
	if !present || v == nil {
		switch {
		case f.hasDefault:
			if f.def == nil {
				return nil, true
			}
			return f.parse(path, tree.Clone(f.def), true, issues)
		case f.optional:
			return nil, false
		case f.kind == KindObject:
			return f.parseObject(path, map[string]any{}, issues), true
		case f.kind == KindAny && present:
			return nil, true
		}
		*issues = append(*issues, Issue{Path: path, Message: "Required", Expected: string(f.kind)})
		return nil, false
	}

	switch f.kind {
	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, f.kind, v, issues)
		}
		return f.parseObject(path, m, issues), true

	case KindString:
		s, ok := v.(string)
		if !ok {
			return mismatch(path, f.kind, v, issues)
		}
		f.checkBounds(path, float64(utf8.RuneCountInString(s)), "length", s, issues)
		if f.pattern != nil && !f.pattern.MatchString(s) {
			*issues = append(*issues, Issue{
				Path:        path,
				Message:     fmt.Sprintf("Must match pattern %s", f.pattern),
				Expected:    f.pattern.String(),
				Received:    s,
				HasReceived: true,
			})
		}
		f.checkOneOf(path, s, issues)
		return s, true

	case KindNumber:
		n, ok := toFloat(v)
		if !ok {
			return mismatch(path, f.kind, v, issues)
		}
		f.checkBounds(path, n, "value", v, issues)
		f.checkOneOf(path, v, issues)
		return v, true

	case KindInteger:
		n, ok := toFloat(v)
		if !ok {
			return mismatch(path, f.kind, v, issues)
		}
		if n != float64(int64(n)) {
			*issues = append(*issues, Issue{
				Path:        path,
				Message:     "Expected integer, received float",
				Expected:    string(KindInteger),
				Received:    v,
				HasReceived: true,
			})
			return nil, false
		}
		f.checkBounds(path, n, "value", v, issues)
		f.checkOneOf(path, int(n), issues)
		return int(n), true

	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(path, f.kind, v, issues)
		}
		return b, true

	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			return mismatch(path, f.kind, v, issues)
		}
		f.checkBounds(path, float64(len(arr)), "length", v, issues)
		out := make([]any, len(arr))
		for i, elem := range arr {
			if f.items == nil {
				out[i] = tree.Clone(elem)
				continue
			}
			r, _ := f.items.parse(tree.Join(path, strconv.Itoa(i)), elem, true, issues)
			out[i] = r
		}
		return out, true

	case KindDuration:
		switch t := v.(type) {
		case time.Duration:
			return t, true
		case string:
			d, err := time.ParseDuration(t)
			if err != nil {
				*issues = append(*issues, Issue{
					Path:        path,
					Message:     fmt.Sprintf("Invalid duration %q", t),
					Expected:    string(KindDuration),
					Received:    v,
					HasReceived: true,
				})
				return nil, false
			}
			return d, true
		default:
			return mismatch(path, f.kind, v, issues)
		}

	case KindURL:
		s, ok := v.(string)
		if !ok {
			return mismatch(path, f.kind, v, issues)
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			*issues = append(*issues, Issue{
				Path:        path,
				Message:     "Invalid url",
				Expected:    string(KindURL),
				Received:    s,
				HasReceived: true,
			})
			return nil, false
		}
		f.checkOneOf(path, s, issues)
		return s, true

	default:
		return tree.Clone(v), true
	}
}

func (f *Field) parseObject(path string, m map[string]any, issues *[]Issue) map[string]any {
	out := make(map[string]any, len(f.fields))

	names := make([]string, 0, len(f.fields))
	for name := range f.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, present := m[name]
		if r, ok := f.fields[name].parse(tree.Join(path, name), v, present, issues); ok {
			out[name] = r
		}
	}

	if f.passthrough {
		for k, v := range m {
			if _, declared := f.fields[k]; !declared {
				out[k] = tree.Clone(v)
			}
		}
	}
	return out
}

func (f *Field) checkBounds(path string, n float64, what string, received any, issues *[]Issue) {
	if f.min != nil && n < *f.min {
		*issues = append(*issues, Issue{
			Path:        path,
			Message:     fmt.Sprintf("Expected %s >= %s", what, formatFloat(*f.min)),
			Expected:    ">= " + formatFloat(*f.min),
			Received:    received,
			HasReceived: true,
		})
	}
	if f.max != nil && n > *f.max {
		*issues = append(*issues, Issue{
			Path:        path,
			Message:     fmt.Sprintf("Expected %s <= %s", what, formatFloat(*f.max)),
			Expected:    "<= " + formatFloat(*f.max),
			Received:    received,
			HasReceived: true,
		})
	}
}

func (f *Field) checkOneOf(path string, v any, issues *[]Issue) {
	if len(f.oneOf) == 0 {
		return
	}
	for _, allowed := range f.oneOf {
		if tree.LeafEqual(allowed, v) {
			return
		}
	}
	labels := make([]string, len(f.oneOf))
	for i, allowed := range f.oneOf {
		labels[i] = fmt.Sprint(allowed)
	}
	*issues = append(*issues, Issue{
		Path:        path,
		Message:     fmt.Sprintf("Expected one of [%s]", strings.Join(labels, ", ")),
		Expected:    strings.Join(labels, " | "),
		Received:    v,
		HasReceived: true,
	})
}

func mismatch(path string, kind Kind, v any, issues *[]Issue) (any, bool) {
	*issues = append(*issues, Issue{
		Path:        path,
		Message:     fmt.Sprintf("Expected %s, received %s", kind, TypeName(v)),
		Expected:    string(kind),
		Received:    v,
		HasReceived: true,
	})
	return nil, false
}

// TypeName returns the schema vocabulary name of a decoded value's type.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Duration:
		return "duration"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

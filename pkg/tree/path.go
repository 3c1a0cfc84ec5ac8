package tree

import (
	"reflect"
	"strings"
)

// Separator is the path segment separator used by Get and Set.
const Separator = "."

// Split splits a dot path into its segments. An empty path has no segments.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// Join joins path segments, skipping empty ones.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, Separator)
}

// Get returns the value at the dot path. It reports false when any segment
// is missing or an intermediate value is not a map. The empty path returns
// the tree itself.
func Get(m map[string]any, path string) (any, bool) {
	if m == nil {
		return nil, false
	}
	var current any = m
	for _, seg := range Split(path) {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set stores value at the dot path, creating intermediate maps as needed.
// A non-map intermediate is replaced by a new map.
func Set(m map[string]any, path string, value any) {
	SetPath(m, Split(path), value)
}

// SetPath is Set with pre-split segments. Segments may contain dots.
func SetPath(m map[string]any, segments []string, value any) {
	if m == nil || len(segments) == 0 {
		return
	}
	node := m
	for _, seg := range segments[:len(segments)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[seg] = next
		}
		node = next
	}
	node[segments[len(segments)-1]] = value
}

// Walk calls fn for every leaf of m with its dot path. Maps are descended;
// everything else, including slices, is a leaf. Keys are visited in sorted
// order.
func Walk(m map[string]any, fn func(path string, value any)) {
	walk("", m, fn)
}

func walk(prefix string, m map[string]any, fn func(string, any)) {
	for _, k := range SortedKeys(m) {
		path := Join(prefix, k)
		if child, ok := m[k].(map[string]any); ok {
			walk(path, child, fn)
			continue
		}
		fn(path, m[k])
	}
}

// Leaves returns every leaf of m keyed by dot path.
func Leaves(m map[string]any) map[string]any {
	out := make(map[string]any)
	Walk(m, func(path string, value any) {
		out[path] = value
	})
	return out
}

// Normalize converts arbitrary string-keyed maps and slices into the
// map[string]any / []any shapes the rest of the package expects. Byte slices
// are kept as they are.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []byte:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

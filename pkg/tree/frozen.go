package tree

import (
	json "github.com/goccy/go-json"
)

// Frozen is an immutable configuration tree. The zero value is an empty tree.
//
// A Frozen holds a private deep copy of the map it was built from and exposes
// no way to modify it: every accessor returns copies of nested maps and
// slices.
type Frozen struct {
	m map[string]any
}

// Freeze returns an immutable snapshot of m.
func Freeze(m map[string]any) Frozen {
	return Frozen{m: CloneMap(m)}
}

// Freeze returns f itself. Freezing an already frozen tree is a no-op.
func (f Frozen) Freeze() Frozen {
	return f
}

// Get returns a copy of the value at the dot path.
func (f Frozen) Get(path string) (any, bool) {
	v, ok := Get(f.m, path)
	if !ok {
		return nil, false
	}
	return Clone(v), true
}

// Has reports whether the dot path resolves to a value.
func (f Frozen) Has(path string) bool {
	_, ok := Get(f.m, path)
	return ok
}

// Map returns a deep copy of the whole tree.
func (f Frozen) Map() map[string]any {
	return CloneMap(f.m)
}

// Len returns the number of top-level keys.
func (f Frozen) Len() int {
	return len(f.m)
}

// Keys returns the sorted top-level keys.
func (f Frozen) Keys() []string {
	return SortedKeys(f.m)
}

// Leaves returns every leaf keyed by dot path. Slice leaves are copied.
func (f Frozen) Leaves() map[string]any {
	out := make(map[string]any)
	Walk(f.m, func(path string, value any) {
		out[path] = Clone(value)
	})
	return out
}

// Diff returns the paths that differ between f and other. See Diff.
func (f Frozen) Diff(other Frozen) []string {
	return Diff(f.m, other.m)
}

// MarshalJSON encodes the tree as a JSON object.
func (f Frozen) MarshalJSON() ([]byte, error) {
	if f.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f.m)
}

// MarshalYAML returns a copy of the tree for YAML encoding.
func (f Frozen) MarshalYAML() (any, error) {
	return f.Map(), nil
}

// Package provenance records which source supplied each configuration value.
package provenance

import (
	"sort"
	"strings"

	"mercator-hq/confkit/pkg/tree"
)

// Entry describes the origin of one leaf.
type Entry struct {
	Path   string `json:"path" yaml:"path"`
	Value  any    `json:"value" yaml:"value"`
	Source string `json:"source" yaml:"source"`
	Loader string `json:"loader" yaml:"loader"`
}

// Table maps leaf dot-paths to their origin. The zero value is empty and
// ready to use; a Table is not safe for concurrent writes.
type Table struct {
	entries map[string]Entry
}

// New returns an empty table.
func New() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Record adds every leaf of data under the given labels, replacing earlier
// entries for the same path. Records must be made in source order so the
// table agrees with a right-biased merge of the same inputs.
//
// A map value in data replaces earlier entries beneath its path only where
// the new map defines leaves; a scalar replacing a map removes the entries
// beneath it.
func (t *Table) Record(data map[string]any, source, loader string) {
	if t.entries == nil {
		t.entries = make(map[string]Entry)
	}
	tree.Walk(data, func(path string, value any) {
		t.dropBelow(path)
		t.dropAbove(path)
		t.entries[path] = Entry{Path: path, Value: value, Source: source, Loader: loader}
	})
}

// dropBelow removes entries nested under path, which is now a leaf.
func (t *Table) dropBelow(path string) {
	prefix := path + tree.Separator
	for p := range t.entries {
		if strings.HasPrefix(p, prefix) {
			delete(t.entries, p)
		}
	}
}

// dropAbove removes entries for ancestors of path, which are now maps.
func (t *Table) dropAbove(path string) {
	for i := strings.LastIndex(path, tree.Separator); i > 0; i = strings.LastIndex(path[:i], tree.Separator) {
		delete(t.entries, path[:i])
	}
}

// Lookup returns the entry for path. When path is not a recorded leaf the
// nearest recorded ancestor is returned, so an error about a nested value
// inside an array or a replaced subtree still names a source.
func (t *Table) Lookup(path string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	if e, ok := t.entries[path]; ok {
		return e, true
	}
	for i := strings.LastIndex(path, tree.Separator); i > 0; i = strings.LastIndex(path[:i], tree.Separator) {
		if e, ok := t.entries[path[:i]]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Source returns the source label for path.
func (t *Table) Source(path string) (string, bool) {
	e, ok := t.Lookup(path)
	return e.Source, ok
}

// Paths returns every recorded leaf path in sorted order.
func (t *Table) Paths() []string {
	if t == nil {
		return nil
	}
	paths := make([]string, 0, len(t.entries))
	for p := range t.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Entries returns a copy of all entries in path order.
func (t *Table) Entries() []Entry {
	paths := t.Paths()
	out := make([]Entry, len(paths))
	for i, p := range paths {
		out[i] = t.entries[p]
	}
	return out
}

// Len returns the number of recorded leaves.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

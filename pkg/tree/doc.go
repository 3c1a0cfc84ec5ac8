// Package tree provides the nested-map primitives the configuration pipeline
// is built on.
//
// A configuration tree is a map[string]any whose values are either nested
// map[string]any values or leaves (scalars and []any slices). The package
// offers dot-path access (Get, Set), a right-biased deep merge (Merge),
// structural diffing (Diff) and an immutable snapshot type (Frozen).
//
// # Merge Semantics
//
// Merge folds its arguments left to right. When both the existing and the
// incoming value at a key are maps they are merged recursively; any other
// combination replaces the existing value outright, including slices:
//
//	base := map[string]any{"server": map[string]any{"port": 3000, "host": "a"}}
//	over := map[string]any{"server": map[string]any{"port": 8080}}
//	tree.Merge(base, over) // {"server": {"port": 8080, "host": "a"}}
//
// A key that is absent from an incoming map never removes or overwrites the
// existing value. An explicit nil does overwrite it.
//
// # Immutability
//
// Frozen wraps a private deep copy of a tree. Reads hand out copies of nested
// maps and slices, so no caller can reach the backing storage.
package tree

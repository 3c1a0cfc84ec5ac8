package tree

import (
	"reflect"
	"sort"
	"strconv"
)

// Diff returns the sorted dot paths whose values differ between before and
// after.
//
// Maps are compared key by key over the union of their keys and slices index
// by index. A path is reported when the two leaves differ, or when one side
// is a map or slice and the other is not (or is missing). Substructures whose
// leaves are all equal produce no paths.
func Diff(before, after map[string]any) []string {
	var paths []string
	diffMaps("", before, after, &paths)
	sort.Strings(paths)
	return paths
}

func diffMaps(prefix string, before, after map[string]any, out *[]string) {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}
	for k := range keys {
		o, oldOK := before[k]
		n, newOK := after[k]
		diffValues(Join(prefix, k), o, oldOK, n, newOK, out)
	}
}

func diffValues(path string, o any, oldOK bool, n any, newOK bool, out *[]string) {
	oMap, oIsMap := o.(map[string]any)
	nMap, nIsMap := n.(map[string]any)
	if oldOK && newOK && oIsMap && nIsMap {
		diffMaps(path, oMap, nMap, out)
		return
	}

	oSlice, oIsSlice := o.([]any)
	nSlice, nIsSlice := n.([]any)
	if oldOK && newOK && oIsSlice && nIsSlice {
		diffSlices(path, oSlice, nSlice, out)
		return
	}

	if oldOK != newOK || !LeafEqual(o, n) {
		*out = append(*out, path)
	}
}

func diffSlices(prefix string, before, after []any, out *[]string) {
	size := len(before)
	if len(after) > size {
		size = len(after)
	}
	for i := 0; i < size; i++ {
		var o, n any
		oldOK, newOK := i < len(before), i < len(after)
		if oldOK {
			o = before[i]
		}
		if newOK {
			n = after[i]
		}
		diffValues(Join(prefix, strconv.Itoa(i)), o, oldOK, n, newOK, out)
	}
}

// LeafEqual reports whether two leaf values are equal. Numbers compare by
// value regardless of their Go type. A container is never equal to a
// non-container.
func LeafEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	_, aIsMap := a.(map[string]any)
	_, bIsMap := b.(map[string]any)
	_, aIsSlice := a.([]any)
	_, bIsSlice := b.([]any)
	if aIsMap != bIsMap || aIsSlice != bIsSlice {
		return false
	}
	return reflect.DeepEqual(a, b)
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
	}
	return 0, false
}

package tree

import "sort"

// Merge deep-merges sources left to right into a new map. Inputs are never
// modified and the result shares no maps or slices with them.
func Merge(sources ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, src := range sources {
		mergeInto(out, src)
	}
	return out
}

func mergeInto(dst, src map[string]any) {
	for k, incoming := range src {
		incomingMap, incomingIsMap := incoming.(map[string]any)
		existingMap, existingIsMap := dst[k].(map[string]any)
		if incomingIsMap && existingIsMap {
			mergeInto(existingMap, incomingMap)
			continue
		}
		dst[k] = Clone(incoming)
	}
}

// Clone returns a deep copy of v. Maps and slices are copied recursively;
// other values are returned as they are.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}

// CloneMap returns a deep copy of m. A nil map clones to an empty map.
func CloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

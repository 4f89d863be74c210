// Package record defines the JSON-shaped record tree shared by the
// generation and evaluation stages, and the canonical path operations
// (flattening, deep copy, missing-field stripping) over it.
package record

import (
	"fmt"
	"sort"
)

// Record is a tree of string-keyed maps, ordered sequences ([]any) and
// scalar leaves (string, float64, bool, nil), as produced by decoding JSON.
type Record map[string]any

// Clone returns a deep copy of the record. Every transform in this package
// is copy-first: the caller's record is never mutated.
func Clone(rec Record) Record {
	if rec == nil {
		return nil
	}
	return cloneValue(map[string]any(rec)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return t
	}
}

// Flatten converts a nested record into a map from canonical path to scalar
// leaf value. Map entries join with "." and sequence indices append as "[i]"
// with no separator, e.g. "address.history[0].city". The input is not
// mutated. If two structural positions produce the same path (caller error),
// the later entry wins.
func Flatten(rec Record) map[string]any {
	flat := make(map[string]any)
	flattenValue(map[string]any(rec), "", flat)
	return flat
}

func flattenValue(v any, path string, flat map[string]any) {
	switch t := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(t) {
			flattenValue(t[k], joinPath(path, k), flat)
		}
	case []any:
		for i, item := range t {
			flattenValue(item, fmt.Sprintf("%s[%d]", path, i), flat)
		}
	default:
		flat[path] = t
	}
}

// joinPath appends a map key to a parent path.
func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// sortedKeys returns the map's keys in lexicographic order. Traversal order
// is stable so flattening and stripping report paths deterministically.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

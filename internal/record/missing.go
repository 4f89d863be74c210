package record

import (
	"fmt"
	"sort"
)

// MissingMarker is the sentinel leaf value meaning "this field's true value
// is deliberately withheld". The form generator plants it, the conversation
// renderer keeps the marked facts out of the dialogue, and the evaluator
// excuses marked fields from penalty. It only ever appears as a leaf value,
// never as a key.
const MissingMarker = "MISSING INFORMATION"

// StripMissing returns a copy of the record with every MissingMarker leaf
// removed, together with the canonical paths of the removed leaves. Map keys
// carrying the marker are deleted; sequence elements carrying it are deleted
// in descending index order so earlier deletions do not shift the indices of
// elements still pending deletion, and each removed element is reported
// under its pre-deletion index. The input record is not mutated.
//
// The recursion mirrors Flatten's path grammar exactly: the reported paths
// are later matched against reconciler paths by string equality.
func StripMissing(rec Record) (Record, []string) {
	cleaned := Clone(rec)
	missing := []string{}
	stripMap(map[string]any(cleaned), "", &missing)
	return cleaned, missing
}

func stripMap(m map[string]any, path string, missing *[]string) {
	for _, k := range sortedKeys(m) {
		child := joinPath(path, k)
		switch v := m[k].(type) {
		case map[string]any:
			stripMap(v, child, missing)
		case []any:
			m[k] = stripSequence(v, child, missing)
		default:
			if v == MissingMarker {
				*missing = append(*missing, child)
				delete(m, k)
			}
		}
	}
}

func stripSequence(seq []any, path string, missing *[]string) []any {
	var drop []int
	for i, item := range seq {
		child := fmt.Sprintf("%s[%d]", path, i)
		switch v := item.(type) {
		case map[string]any:
			stripMap(v, child, missing)
		case []any:
			seq[i] = stripSequence(v, child, missing)
		default:
			if v == MissingMarker {
				*missing = append(*missing, child)
				drop = append(drop, i)
			}
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(drop)))
	for _, i := range drop {
		seq = append(seq[:i], seq[i+1:]...)
	}
	return seq
}

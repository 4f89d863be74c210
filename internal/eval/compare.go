// Package eval scores an extracted record against its ground truth: it
// reconciles the two flattened field sets into per-field verdicts, rolls
// them up into precision/recall/F1 metrics, and averages metrics across
// runs.
package eval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hartfield-labs/factfind/internal/record"
)

// Oracle answers whether two short strings describe the same real-world
// fact, ignoring formatting, spelling and wording differences. It is only
// consulted after exact matching fails.
type Oracle interface {
	Equivalent(ctx context.Context, a, b string) (bool, error)
}

// Short strings are too ambiguous to reason about and large length gaps
// almost never describe the same fact, so the oracle is skipped for both.
const (
	minOracleLen     = 3
	maxOracleLenDiff = 20
)

// Comparator decides whether two scalar values denote the same fact:
// exact normalized match first, then the oracle as a fallback.
type Comparator struct {
	oracle Oracle
}

// NewComparator returns a Comparator backed by the given oracle. A nil
// oracle disables the fuzzy tier; only exact matching applies.
func NewComparator(oracle Oracle) *Comparator {
	return &Comparator{oracle: oracle}
}

// Compare reports whether a ground-truth value and an extracted value
// denote the same fact. Oracle failures are downgraded to "no match" so a
// broken collaborator can never spuriously call things equal.
func (c *Comparator) Compare(ctx context.Context, truth, extracted any) bool {
	if truth == nil && extracted == nil {
		return true
	}
	if truth == nil || extracted == nil {
		return false
	}

	s1 := stringify(truth)
	s2 := stringify(extracted)

	// An extractor that echoes the marker text for a field it correctly
	// identified as unknown is right, not wrong.
	m1 := strings.Contains(s1, record.MissingMarker)
	m2 := strings.Contains(s2, record.MissingMarker)
	if m1 || m2 {
		return m1 && m2
	}

	s1 = strings.ToLower(strings.TrimSpace(s1))
	s2 = strings.ToLower(strings.TrimSpace(s2))
	if s1 == s2 {
		return true
	}

	if c.oracle == nil {
		return false
	}
	if len(s1) < minOracleLen || len(s2) < minOracleLen {
		return false
	}
	if diff := len(s1) - len(s2); diff > maxOracleLenDiff || -diff > maxOracleLenDiff {
		return false
	}

	equal, err := c.oracle.Equivalent(ctx, s1, s2)
	if err != nil {
		zap.L().Warn("eval: equivalence oracle failed, treating as mismatch",
			zap.String("truth", s1),
			zap.String("extracted", s2),
			zap.Error(err),
		)
		return false
	}
	return equal
}

// stringify renders a scalar the way encoding/json would print it, so
// "50000" and float64(50000) normalize to comparable text.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// Trim the ".0" that %v would keep for integral floats.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

package eval

import (
	"context"
	"strings"

	"github.com/hartfield-labs/factfind/internal/record"
)

// Field categories. Present/extra/missing partition the union of ground
// truth and extracted canonical paths.
const (
	CategoryPresent = "present"
	CategoryExtra   = "extra"
	CategoryMissing = "missing"
)

// Error tags attached to unmatched fields.
const (
	ErrorMissingField = "missing_field"
	ErrorExtraField   = "extra_field"
)

// FieldResult is the verdict for one canonical path. Immutable once built.
type FieldResult struct {
	GroundTruth any    `json:"ground_truth"`
	Extracted   any    `json:"extracted"`
	Match       bool   `json:"match"`
	Category    string `json:"category"`
	Error       string `json:"error,omitempty"`
}

// Evaluation is the persisted per-run artifact: summary metrics plus the
// full field-level audit trail.
type Evaluation struct {
	Metrics       Metrics                `json:"metrics"`
	FieldResults  map[string]FieldResult `json:"field_results"`
	MissingFields []string               `json:"missing_fields"`
}

// Reconciler matches two flattened field sets by canonical path and
// classifies every field.
type Reconciler struct {
	comparator *Comparator
}

// NewReconciler returns a Reconciler using the given comparator.
func NewReconciler(c *Comparator) *Reconciler {
	return &Reconciler{comparator: c}
}

// Reconcile flattens both records and produces one FieldResult per
// canonical path in the union of the two field sets.
//
// The ground truth must already be stripped of MissingMarker leaves
// (record.StripMissing); a stripped path can then only surface here when
// the extractor still emits something for it, which is scored as a
// correctly-reported missing field when the marker is echoed, or as an
// extra field otherwise. missingPaths itself is only carried through into
// the metrics count.
func (r *Reconciler) Reconcile(ctx context.Context, groundTruth, extracted record.Record, missingPaths []string) map[string]FieldResult {
	flatTruth := record.Flatten(groundTruth)
	flatExtracted := record.Flatten(extracted)

	results := make(map[string]FieldResult, len(flatTruth)+len(flatExtracted))

	for path, truthVal := range flatTruth {
		extractedVal, ok := flatExtracted[path]
		if !ok {
			results[path] = FieldResult{
				GroundTruth: truthVal,
				Extracted:   nil,
				Match:       false,
				Category:    CategoryPresent,
				Error:       ErrorMissingField,
			}
			continue
		}
		results[path] = FieldResult{
			GroundTruth: truthVal,
			Extracted:   extractedVal,
			Match:       r.comparator.Compare(ctx, truthVal, extractedVal),
			Category:    CategoryPresent,
		}
	}

	for path, extractedVal := range flatExtracted {
		if _, ok := flatTruth[path]; ok {
			continue
		}
		if stringContainsMarker(extractedVal) {
			// The ground truth never carried this field because it was
			// stripped as missing; the extractor correctly reported
			// ignorance. Recorded with the marker on both sides for audit
			// symmetry and never penalized.
			results[path] = FieldResult{
				GroundTruth: record.MissingMarker,
				Extracted:   extractedVal,
				Match:       true,
				Category:    CategoryMissing,
			}
			continue
		}
		results[path] = FieldResult{
			GroundTruth: nil,
			Extracted:   extractedVal,
			Match:       false,
			Category:    CategoryExtra,
			Error:       ErrorExtraField,
		}
	}

	return results
}

func stringContainsMarker(v any) bool {
	s, ok := v.(string)
	return ok && strings.Contains(s, record.MissingMarker)
}

package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartfield-labs/factfind/internal/record"
)

func TestScore_Empty(t *testing.T) {
	m := Score(map[string]FieldResult{}, nil)

	assert.Equal(t, 0.0, m.Precision)
	assert.Equal(t, 0.0, m.Recall)
	assert.Equal(t, 0.0, m.F1Score)
	assert.Equal(t, 0.0, m.OverallAccuracy)
	assert.Equal(t, 0, m.TotalFields)
	assert.Equal(t, 0.0, m.Categories[CategoryPresent].Accuracy)
}

func TestScore_Counters(t *testing.T) {
	results := map[string]FieldResult{
		"a": {Category: CategoryPresent, Match: true},
		"b": {Category: CategoryPresent, Match: false},
		"c": {Category: CategoryPresent, Match: false, Error: ErrorMissingField},
		"d": {Category: CategoryExtra, Match: false, Error: ErrorExtraField},
		"e": {Category: CategoryMissing, Match: true},
	}

	m := Score(results, []string{"e"})

	assert.Equal(t, 1, m.TruePositives)
	assert.Equal(t, 2, m.FalsePositives) // wrong value + extra
	assert.Equal(t, 1, m.FalseNegatives)
	assert.Equal(t, 5, m.TotalFields)
	assert.Equal(t, 1, m.MissingFieldsCount)

	assert.InDelta(t, 1.0/3.0, m.Precision, 1e-9)
	assert.InDelta(t, 0.5, m.Recall, 1e-9)
	assert.InDelta(t, 0.4, m.F1Score, 1e-9)
	assert.InDelta(t, 0.25, m.OverallAccuracy, 1e-9)
}

func TestScore_CategoryBreakdown(t *testing.T) {
	results := map[string]FieldResult{
		"a": {Category: CategoryPresent, Match: true},
		"b": {Category: CategoryPresent, Match: false},
		"c": {Category: CategoryMissing, Match: true},
	}

	m := Score(results, nil)

	present := m.Categories[CategoryPresent]
	assert.Equal(t, 2, present.Total)
	assert.Equal(t, 1, present.Matched)
	assert.InDelta(t, 0.5, present.Accuracy, 1e-9)

	missing := m.Categories[CategoryMissing]
	assert.Equal(t, 1, missing.Total)
	assert.InDelta(t, 1.0, missing.Accuracy, 1e-9)

	assert.Equal(t, 0, m.Categories[CategoryExtra].Total)
	assert.Equal(t, 0.0, m.Categories[CategoryExtra].Accuracy)
}

// noOracle always reports non-equivalence, standing in for an oracle that
// rejects numeric near-misses like 50000 vs 50500.
type noOracle struct{}

func (noOracle) Equivalent(ctx context.Context, a, b string) (bool, error) {
	return false, nil
}

// Full scenario: stripped ground truth, case-insensitive match, numeric
// mismatch, and a correctly-echoed marker for a withheld field.
func TestScore_EndToEndScenario(t *testing.T) {
	groundTruth := record.Record{
		"name":   "Jane Doe",
		"income": "50000",
		"phone":  record.MissingMarker,
	}

	stripped, missingPaths := record.StripMissing(groundTruth)
	require.Equal(t, []string{"phone"}, missingPaths)
	require.Equal(t, record.Record{"name": "Jane Doe", "income": "50000"}, stripped)

	extracted := record.Record{
		"name":   "jane doe",
		"income": "50500",
		"phone":  record.MissingMarker,
	}

	r := NewReconciler(NewComparator(noOracle{}))
	results := r.Reconcile(context.Background(), stripped, extracted, missingPaths)

	assert.True(t, results["name"].Match)
	assert.Equal(t, CategoryPresent, results["name"].Category)
	assert.False(t, results["income"].Match)
	assert.Equal(t, CategoryPresent, results["income"].Category)
	assert.True(t, results["phone"].Match)
	assert.Equal(t, CategoryMissing, results["phone"].Category)

	m := Score(results, missingPaths)
	assert.Equal(t, 1, m.TruePositives)
	assert.Equal(t, 1, m.FalsePositives)
	assert.Equal(t, 0, m.FalseNegatives)
	assert.InDelta(t, 0.5, m.Precision, 1e-9)
	assert.InDelta(t, 1.0, m.Recall, 1e-9)
	assert.InDelta(t, 0.667, m.F1Score, 0.001)
	assert.InDelta(t, 0.5, m.OverallAccuracy, 1e-9)
}

func TestAggregate_MeanOfMeans(t *testing.T) {
	runs := []RunMetrics{
		{Run: "conversation_1", Metrics: Metrics{OverallAccuracy: 0.5, Precision: 0.5, Recall: 1.0, F1Score: 0.6}},
		{Run: "conversation_2", Metrics: Metrics{OverallAccuracy: 1.0, Precision: 1.0, Recall: 0.5, F1Score: 0.8}},
	}

	agg := Aggregate("exp-1", runs)

	assert.Equal(t, 2, agg.TotalConversations)
	assert.InDelta(t, 0.75, agg.Metrics["overall_accuracy"], 1e-9)
	assert.InDelta(t, 0.75, agg.Metrics["precision"], 1e-9)
	assert.InDelta(t, 0.75, agg.Metrics["recall"], 1e-9)
	assert.InDelta(t, 0.7, agg.Metrics["f1_score"], 1e-9)
}

// One corrupt run out of three is skipped; averages cover the other two.
func TestAggregate_SkipOnError(t *testing.T) {
	runs := []RunMetrics{
		{Run: "conversation_1", Metrics: Metrics{Precision: 1.0}},
		{Run: "conversation_2", Err: errors.New("unexpected end of JSON input")},
		{Run: "conversation_3", Metrics: Metrics{Precision: 0.5}},
	}

	agg := Aggregate("exp-1", runs)

	assert.Equal(t, 2, agg.TotalConversations)
	assert.InDelta(t, 0.75, agg.Metrics["precision"], 1e-9)
}

func TestAggregate_NoRuns(t *testing.T) {
	agg := Aggregate("exp-1", nil)

	assert.Equal(t, 0, agg.TotalConversations)
	assert.Empty(t, agg.Metrics)
}

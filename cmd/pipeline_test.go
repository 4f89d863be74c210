package main

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartfield-labs/factfind/internal/eval"
	"github.com/hartfield-labs/factfind/internal/record"
	"github.com/hartfield-labs/factfind/internal/workspace"
)

func TestEvaluateConversation_FromArtifacts(t *testing.T) {
	ws, err := workspace.Open(t.TempDir(), "exp-eval")
	require.NoError(t, err)
	conv, err := ws.CreateConversation()
	require.NoError(t, err)

	groundTruth := record.Record{
		"name":  "Jane Doe",
		"phone": record.MissingMarker,
	}
	extracted := record.Record{
		"name":  "jane doe",
		"phone": record.MissingMarker,
	}
	require.NoError(t, ws.SaveJSON(ws.GroundTruthPath(conv), groundTruth))
	require.NoError(t, ws.SaveJSON(ws.ExtractedPath(conv), extracted))

	rec := eval.NewReconciler(eval.NewComparator(nil))
	ev, err := evaluateConversation(context.Background(), ws, rec, conv)
	require.NoError(t, err)

	// The stripped phone field is echoed back as missing and never
	// penalized; the name matches after normalization.
	assert.Equal(t, 1, ev.Metrics.TruePositives)
	assert.Equal(t, 0, ev.Metrics.FalsePositives)
	assert.Equal(t, 0, ev.Metrics.FalseNegatives)
	assert.Equal(t, []string{"phone"}, ev.MissingFields)
	assert.InDelta(t, 1.0, ev.Metrics.OverallAccuracy, 1e-9)

	// evaluation.json was persisted and round-trips.
	loaded, err := ws.LoadEvaluation(conv)
	require.NoError(t, err)
	assert.Equal(t, ev.Metrics.TruePositives, loaded.Metrics.TruePositives)
}

func TestEvaluateConversation_MissingArtifact(t *testing.T) {
	ws, err := workspace.Open(t.TempDir(), "exp-eval")
	require.NoError(t, err)
	conv, err := ws.CreateConversation()
	require.NoError(t, err)

	rec := eval.NewReconciler(eval.NewComparator(nil))
	_, err = evaluateConversation(context.Background(), ws, rec, conv)
	require.Error(t, err)
	assert.True(t, eris.Is(err, workspace.ErrNotFound))
}

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hartfield-labs/factfind/internal/eval"
	"github.com/hartfield-labs/factfind/internal/store"
)

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("12345678-abcd-efgh"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	runs := []store.Run{
		{
			ID:           "aaaaaaaa-1111-2222",
			Experiment:   "exp-a1b2c3d4",
			Conversation: "conversation_1",
			Status:       store.RunStatusEvaluated,
			Metrics:      &eval.Metrics{F1Score: 0.8125},
			CreatedAt:    created,
		},
		{
			ID:           "bbbbbbbb-3333-4444",
			Experiment:   "exp-a1b2c3d4",
			Conversation: "conversation_2",
			Status:       store.RunStatusFailed,
			CreatedAt:    created,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "aaaaaaaa")
	assert.Contains(t, out, "0.813")
	assert.Contains(t, out, "evaluated")
	// No metrics yet renders as a dash.
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "2026-08-25 10:30")
}

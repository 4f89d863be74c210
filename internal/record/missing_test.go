package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripMissing_MapKeys(t *testing.T) {
	rec := Record{
		"name":   "Jane Doe",
		"income": "50000",
		"phone":  MissingMarker,
	}

	cleaned, missing := StripMissing(rec)

	assert.Equal(t, Record{"name": "Jane Doe", "income": "50000"}, cleaned)
	assert.Equal(t, []string{"phone"}, missing)
}

func TestStripMissing_NestedPath(t *testing.T) {
	rec := Record{
		"client": map[string]any{
			"contact": map[string]any{
				"email": MissingMarker,
				"phone": "01134960000",
			},
		},
	}

	cleaned, missing := StripMissing(rec)

	assert.Equal(t, []string{"client.contact.email"}, missing)
	contact := cleaned["client"].(map[string]any)["contact"].(map[string]any)
	assert.Equal(t, map[string]any{"phone": "01134960000"}, contact)
}

func TestStripMissing_SequenceElements(t *testing.T) {
	rec := Record{
		"dependants": []any{"Tom", MissingMarker, "Ada", MissingMarker},
	}

	cleaned, missing := StripMissing(rec)

	// Pre-deletion indices are reported; survivors shift down.
	assert.Equal(t, []string{"dependants[1]", "dependants[3]"}, missing)
	assert.Equal(t, []any{"Tom", "Ada"}, cleaned["dependants"])
}

func TestStripMissing_MapInsideSequence(t *testing.T) {
	rec := Record{
		"accounts": []any{
			map[string]any{"bank": "Northern", "balance": MissingMarker},
			map[string]any{"bank": "Coastal", "balance": "1200"},
		},
	}

	cleaned, missing := StripMissing(rec)

	assert.Equal(t, []string{"accounts[0].balance"}, missing)
	first := cleaned["accounts"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"bank": "Northern"}, first)
}

func TestStripMissing_AlreadyClean(t *testing.T) {
	rec := Record{
		"name": "Jane",
		"jobs": []any{map[string]any{"title": "Engineer"}},
	}

	cleaned, missing := StripMissing(rec)

	assert.Empty(t, missing)
	assert.Equal(t, rec, cleaned)
}

func TestStripMissing_DoesNotMutateInput(t *testing.T) {
	rec := Record{
		"phone":      MissingMarker,
		"dependants": []any{MissingMarker, "Ada"},
	}

	_, _ = StripMissing(rec)

	assert.Equal(t, MissingMarker, rec["phone"])
	require.Len(t, rec["dependants"], 2)
	assert.Equal(t, MissingMarker, rec["dependants"].([]any)[0])
}

func TestStripMissing_DeterministicOrder(t *testing.T) {
	rec := Record{
		"zeta":  MissingMarker,
		"alpha": MissingMarker,
		"mid":   map[string]any{"beta": MissingMarker},
	}

	_, missing := StripMissing(rec)

	// Depth-first with sorted keys at each level.
	assert.Equal(t, []string{"alpha", "mid.beta", "zeta"}, missing)
}

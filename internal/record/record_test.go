package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_NestedMaps(t *testing.T) {
	rec := Record{
		"client": map[string]any{
			"name": "Jane Doe",
			"address": map[string]any{
				"city": "Leeds",
			},
		},
		"income": "50000",
	}

	flat := Flatten(rec)

	assert.Equal(t, "Jane Doe", flat["client.name"])
	assert.Equal(t, "Leeds", flat["client.address.city"])
	assert.Equal(t, "50000", flat["income"])
	assert.Len(t, flat, 3)
}

func TestFlatten_SequenceIndices(t *testing.T) {
	rec := Record{
		"address": map[string]any{
			"history": []any{
				map[string]any{"city": "Leeds"},
				map[string]any{"city": "York"},
			},
		},
		"dependants": []any{"Tom", "Ada"},
	}

	flat := Flatten(rec)

	assert.Equal(t, "Leeds", flat["address.history[0].city"])
	assert.Equal(t, "York", flat["address.history[1].city"])
	assert.Equal(t, "Tom", flat["dependants[0]"])
	assert.Equal(t, "Ada", flat["dependants[1]"])
}

func TestFlatten_NestedSequence(t *testing.T) {
	rec := Record{
		"grid": []any{
			[]any{"a", "b"},
		},
	}

	flat := Flatten(rec)

	assert.Equal(t, "a", flat["grid[0][0]"])
	assert.Equal(t, "b", flat["grid[0][1]"])
}

func TestFlatten_ScalarTypes(t *testing.T) {
	rec := Record{
		"name":    "Jane",
		"age":     float64(41),
		"retired": false,
		"notes":   nil,
	}

	flat := Flatten(rec)

	assert.Equal(t, float64(41), flat["age"])
	assert.Equal(t, false, flat["retired"])
	assert.Nil(t, flat["notes"])
	assert.Len(t, flat, 4)
}

// Every leaf path of a map-only record, split on ".", must reconstruct the
// original key chain.
func TestFlatten_PathGrammarRoundTrip(t *testing.T) {
	rec := Record{
		"a": map[string]any{
			"b": map[string]any{
				"c": "leaf",
			},
		},
	}

	flat := Flatten(rec)
	require.Len(t, flat, 1)
	for path := range flat {
		assert.Equal(t, []string{"a", "b", "c"}, strings.Split(path, "."))
	}
}

func TestFlatten_DoesNotMutateInput(t *testing.T) {
	rec := Record{
		"list": []any{"x", "y"},
		"map":  map[string]any{"k": "v"},
	}

	_ = Flatten(rec)

	assert.Equal(t, []any{"x", "y"}, rec["list"])
	assert.Equal(t, map[string]any{"k": "v"}, rec["map"])
}

func TestFlatten_MarkerRecordedAsLeaf(t *testing.T) {
	rec := Record{"phone": MissingMarker}

	flat := Flatten(rec)

	assert.Equal(t, MissingMarker, flat["phone"])
}

func TestClone_Independent(t *testing.T) {
	rec := Record{
		"nested": map[string]any{"k": "v"},
		"seq":    []any{"a"},
	}

	cp := Clone(rec)
	cp["nested"].(map[string]any)["k"] = "changed"
	cp["seq"].([]any)[0] = "changed"

	assert.Equal(t, "v", rec["nested"].(map[string]any)["k"])
	assert.Equal(t, "a", rec["seq"].([]any)[0])
}

func TestClone_Nil(t *testing.T) {
	assert.Nil(t, Clone(nil))
}

package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hartfield-labs/factfind/internal/record"
)

// stubOracle records calls and returns a fixed answer.
type stubOracle struct {
	equal bool
	err   error
	calls int
}

func (s *stubOracle) Equivalent(ctx context.Context, a, b string) (bool, error) {
	s.calls++
	return s.equal, s.err
}

func TestCompare_BothNil(t *testing.T) {
	c := NewComparator(nil)
	assert.True(t, c.Compare(context.Background(), nil, nil))
}

func TestCompare_SingleNil(t *testing.T) {
	c := NewComparator(nil)
	assert.False(t, c.Compare(context.Background(), nil, "x"))
	assert.False(t, c.Compare(context.Background(), "x", nil))
}

func TestCompare_MarkerSymmetry(t *testing.T) {
	c := NewComparator(nil)
	ctx := context.Background()

	assert.True(t, c.Compare(ctx, record.MissingMarker, record.MissingMarker))
	assert.False(t, c.Compare(ctx, record.MissingMarker, "123 Main St"))
	assert.False(t, c.Compare(ctx, "123 Main St", record.MissingMarker))
}

func TestCompare_MarkerEchoedWithinText(t *testing.T) {
	c := NewComparator(nil)
	extracted := "value: " + record.MissingMarker
	assert.True(t, c.Compare(context.Background(), record.MissingMarker, extracted))
}

func TestCompare_ExactNormalized(t *testing.T) {
	c := NewComparator(&stubOracle{})
	ctx := context.Background()

	assert.True(t, c.Compare(ctx, "Jane Doe", "jane doe"))
	assert.True(t, c.Compare(ctx, "  50000 ", "50000"))
}

func TestCompare_NumberAgainstString(t *testing.T) {
	c := NewComparator(nil)
	assert.True(t, c.Compare(context.Background(), float64(50000), "50000"))
}

func TestCompare_ShortStringShortCircuit(t *testing.T) {
	oracle := &stubOracle{equal: true}
	c := NewComparator(oracle)

	assert.False(t, c.Compare(context.Background(), "ab", "cd"))
	assert.Equal(t, 0, oracle.calls)
}

func TestCompare_LengthGapShortCircuit(t *testing.T) {
	oracle := &stubOracle{equal: true}
	c := NewComparator(oracle)

	long := "a very long description of the client's employment history"
	assert.False(t, c.Compare(context.Background(), "short", long))
	assert.Equal(t, 0, oracle.calls)
}

func TestCompare_OracleFallback(t *testing.T) {
	oracle := &stubOracle{equal: true}
	c := NewComparator(oracle)

	assert.True(t, c.Compare(context.Background(), "fifty thousand", "50,000 pounds"))
	assert.Equal(t, 1, oracle.calls)
}

func TestCompare_OracleSaysNo(t *testing.T) {
	oracle := &stubOracle{equal: false}
	c := NewComparator(oracle)

	assert.False(t, c.Compare(context.Background(), "50000", "50500"))
	assert.Equal(t, 1, oracle.calls)
}

// Oracle failures must never produce a spurious match.
func TestCompare_OracleFailureFailsClosed(t *testing.T) {
	oracle := &stubOracle{equal: true, err: errors.New("api timeout")}
	c := NewComparator(oracle)

	assert.False(t, c.Compare(context.Background(), "engineer", "engneer"))
	assert.Equal(t, 1, oracle.calls)
}

func TestCompare_NilOracleExactOnly(t *testing.T) {
	c := NewComparator(nil)
	assert.False(t, c.Compare(context.Background(), "engineer", "engneer"))
}

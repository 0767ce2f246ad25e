package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestFallback() *Fallback {
	return NewFallback("unsafe", 20, 80, 95)
}

func TestFallbackMarkerFails(t *testing.T) {
	f := newTestFallback()

	verdict := f.Evaluate("this content is unsafe for children")
	assert.False(t, verdict.Ok)
	assert.Equal(t, 20, verdict.Score)
}

func TestFallbackMarkerIsCaseInsensitive(t *testing.T) {
	f := newTestFallback()

	verdict := f.Evaluate("UNSAFE payload")
	assert.False(t, verdict.Ok)
	assert.Equal(t, 20, verdict.Score)
}

func TestFallbackCleanContentPasses(t *testing.T) {
	f := newTestFallback()

	verdict := f.Evaluate("a perfectly fine poem")
	assert.True(t, verdict.Ok)
	assert.GreaterOrEqual(t, verdict.Score, 80)
	assert.LessOrEqual(t, verdict.Score, 95)
}

func TestFallbackIsDeterministic(t *testing.T) {
	f := newTestFallback()

	first := f.Evaluate("same bytes")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f.Evaluate("same bytes"))
	}

	// Different content is allowed to score differently, but must stay in band.
	other := f.Evaluate("other bytes")
	assert.True(t, other.Ok)
	assert.GreaterOrEqual(t, other.Score, 80)
	assert.LessOrEqual(t, other.Score, 95)
}

func TestFallbackDegenerateBand(t *testing.T) {
	f := NewFallback("unsafe", 20, 90, 90)

	verdict := f.Evaluate("anything")
	assert.True(t, verdict.Ok)
	assert.Equal(t, 90, verdict.Score)
}

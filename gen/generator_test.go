package gen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow() TimeWindow {
	return TimeWindow{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestNewBaseRejectsInvertedWindow(t *testing.T) {
	w := testWindow()
	_, err := NewBase(1, TimeWindow{Start: w.End, End: w.Start}, 100)
	require.Error(t, err)
	assert.True(t, IsKind(err, FaultConfiguration))
}

func TestNewBaseRejectsZeroBatchSize(t *testing.T) {
	_, err := NewBase(1, testWindow(), 0)
	require.Error(t, err)
	assert.True(t, IsKind(err, FaultConfiguration))
}

func TestUniformTimestampInvertedRange(t *testing.T) {
	base, err := NewBase(1, testWindow(), 100)
	require.NoError(t, err)

	w := testWindow()
	_, err = base.UniformTimestamp(w.End, w.Start)
	require.Error(t, err)
	assert.True(t, IsKind(err, FaultInvalidRange))
}

func TestUniformTimestampWithinBounds(t *testing.T) {
	base, err := NewBase(7, testWindow(), 100)
	require.NoError(t, err)

	w := testWindow()
	for i := 0; i < 1000; i++ {
		ts, err := base.WindowTimestamp()
		require.NoError(t, err)
		assert.False(t, ts.Before(w.Start))
		assert.False(t, ts.After(w.End))
	}
}

func TestUniformTimestampDegenerateRange(t *testing.T) {
	base, err := NewBase(1, testWindow(), 100)
	require.NoError(t, err)

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ts, err := base.UniformTimestamp(at, at)
	require.NoError(t, err)
	assert.True(t, ts.Equal(at))
}

func TestBaseDeterminism(t *testing.T) {
	a, err := NewBase(42, testWindow(), 100)
	require.NoError(t, err)
	b, err := NewBase(42, testWindow(), 100)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		tsA, errA := a.WindowTimestamp()
		tsB, errB := b.WindowTimestamp()
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.True(t, tsA.Equal(tsB), "draw %d diverged: %s vs %s", i, tsA, tsB)
	}
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.Rand().Uint64(), b.Rand().Uint64())
	}
}

func TestBaseSeedsDiverge(t *testing.T) {
	a, err := NewBase(1, testWindow(), 100)
	require.NoError(t, err)
	b, err := NewBase(2, testWindow(), 100)
	require.NoError(t, err)

	same := true
	for i := 0; i < 16; i++ {
		if a.Rand().Uint64() != b.Rand().Uint64() {
			same = false
			break
		}
	}
	assert.False(t, same)
}

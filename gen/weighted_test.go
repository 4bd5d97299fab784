package gen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestWeightedTableEmptyFails(t *testing.T) {
	_, err := NewWeightedTable[string]()
	require.Error(t, err)
	assert.True(t, IsKind(err, FaultConfiguration))
}

func TestWeightedTableAllZeroWeightsFails(t *testing.T) {
	_, err := NewWeightedTable(
		WeightedEntry[string]{"a", 0},
		WeightedEntry[string]{"b", 0},
	)
	require.Error(t, err)
	assert.True(t, IsKind(err, FaultConfiguration))
}

func TestWeightedTableNegativeWeightFails(t *testing.T) {
	_, err := NewWeightedTable(
		WeightedEntry[string]{"a", 1},
		WeightedEntry[string]{"b", -0.5},
	)
	require.Error(t, err)
	assert.True(t, IsKind(err, FaultConfiguration))
}

func TestWeightedTableConvergence(t *testing.T) {
	table := MustWeightedTable(
		WeightedEntry[string]{"A", 0.7},
		WeightedEntry[string]{"B", 0.3},
	)
	rng := rand.New(rand.NewSource(1))

	const draws = 100000
	countA := 0
	for i := 0; i < draws; i++ {
		if table.Pick(rng) == "A" {
			countA++
		}
	}
	freq := float64(countA) / draws
	assert.InDelta(t, 0.7, freq, 0.02)
}

func TestWeightedTableSingleOutcome(t *testing.T) {
	table := MustWeightedTable(WeightedEntry[string]{"only", 1})
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		assert.Equal(t, "only", table.Pick(rng))
	}
}

func TestWeightedTableZeroWeightNeverDrawn(t *testing.T) {
	table := MustWeightedTable(
		WeightedEntry[string]{"never", 0},
		WeightedEntry[string]{"always", 1},
	)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		assert.Equal(t, "always", table.Pick(rng))
	}
}

func TestWeightedTableAdjust(t *testing.T) {
	base := MustWeightedTable(
		WeightedEntry[string]{"x", 2},
		WeightedEntry[string]{"y", 2},
	)
	boosted := base.Adjust("y", 3)

	rng := rand.New(rand.NewSource(1))
	const draws = 50000
	countY := 0
	for i := 0; i < draws; i++ {
		if boosted.Pick(rng) == "y" {
			countY++
		}
	}
	// y now carries weight 6 of 8 total.
	assert.InDelta(t, 0.75, float64(countY)/draws, 0.02)

	// The original table is untouched.
	assert.True(t, math.Abs(base.total-4) < 1e-9)
	assert.True(t, math.Abs(boosted.total-8) < 1e-9)
}

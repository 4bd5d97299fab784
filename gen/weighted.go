package gen

import (
	"golang.org/x/exp/rand"
)

// WeightedEntry pairs an outcome with its relative weight.
type WeightedEntry[T comparable] struct {
	Outcome T
	Weight  float64
}

// WeightedTable draws outcomes from a discrete distribution. Entry order is
// fixed at construction so draws are reproducible for a given random source.
type WeightedTable[T comparable] struct {
	entries []WeightedEntry[T]
	total   float64
}

// NewWeightedTable builds a table from the given entries. It returns a
// Configuration fault if no entry exists, any weight is negative, or all
// weights are zero.
func NewWeightedTable[T comparable](entries ...WeightedEntry[T]) (*WeightedTable[T], error) {
	if len(entries) == 0 {
		return nil, Configurationf("weighted table has no entries")
	}
	total := 0.0
	for _, e := range entries {
		if e.Weight < 0 {
			return nil, Configurationf("weighted table has negative weight %f for %v", e.Weight, e.Outcome)
		}
		total += e.Weight
	}
	if total == 0 {
		return nil, Configurationf("weighted table has all-zero weights")
	}
	return &WeightedTable[T]{entries: entries, total: total}, nil
}

// MustWeightedTable is NewWeightedTable for statically known tables.
func MustWeightedTable[T comparable](entries ...WeightedEntry[T]) *WeightedTable[T] {
	t, err := NewWeightedTable(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Pick draws one outcome; over many draws the empirical frequency of each
// outcome converges to weight/total.
func (t *WeightedTable[T]) Pick(rng *rand.Rand) T {
	x := rng.Float64() * t.total
	acc := 0.0
	for _, e := range t.entries {
		acc += e.Weight
		if x < acc {
			return e.Outcome
		}
	}
	// Float64 returns values in [0,1), but guard against accumulated
	// floating point error on the last boundary.
	return t.entries[len(t.entries)-1].Outcome
}

// Adjust returns a copy of the table with the weight of the given outcome
// scaled by factor. Unknown outcomes leave the table unchanged.
func (t *WeightedTable[T]) Adjust(outcome T, factor float64) *WeightedTable[T] {
	entries := make([]WeightedEntry[T], len(t.entries))
	copy(entries, t.entries)
	total := 0.0
	for i := range entries {
		if entries[i].Outcome == outcome {
			entries[i].Weight *= factor
		}
		total += entries[i].Weight
	}
	return &WeightedTable[T]{entries: entries, total: total}
}

// Outcomes returns the table's outcomes in draw order.
func (t *WeightedTable[T]) Outcomes() []T {
	out := make([]T, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Outcome
	}
	return out
}

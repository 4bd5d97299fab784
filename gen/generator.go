package gen

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// TimestampLayout is the layout used when records are flattened for the
// destination store.
const TimestampLayout = "2006-01-02 15:04:05"

// TimeWindow bounds all generated timestamps for a run.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Base carries the per-run random state shared by the entity generators:
// a seeded source, the run time window, and the default market distribution
// tables. Every generator holds its own Base so parallel stages never share
// a random source.
type Base struct {
	seed      uint64
	window    TimeWindow
	batchSize int

	src   rand.Source
	rng   *rand.Rand
	faker *gofakeit.Faker

	countries *WeightedTable[string]
	referrers *WeightedTable[string]
}

// DefaultCountryTable returns the built-in country market-share weights.
func DefaultCountryTable() *WeightedTable[string] {
	return MustWeightedTable(
		WeightedEntry[string]{"US", 30},
		WeightedEntry[string]{"GB", 10},
		WeightedEntry[string]{"DE", 8},
		WeightedEntry[string]{"IN", 8},
		WeightedEntry[string]{"FR", 6},
		WeightedEntry[string]{"CA", 6},
		WeightedEntry[string]{"AU", 5},
		WeightedEntry[string]{"BR", 5},
		WeightedEntry[string]{"JP", 5},
		WeightedEntry[string]{"CN", 4},
		WeightedEntry[string]{"MX", 3},
		WeightedEntry[string]{"ES", 3},
		WeightedEntry[string]{"IT", 3},
		WeightedEntry[string]{"NL", 2},
		WeightedEntry[string]{"SE", 2},
	)
}

// DefaultReferrerTable returns the built-in traffic-source weights.
func DefaultReferrerTable() *WeightedTable[string] {
	return MustWeightedTable(
		WeightedEntry[string]{"google", 35},
		WeightedEntry[string]{"direct", 25},
		WeightedEntry[string]{"social", 15},
		WeightedEntry[string]{"email", 10},
		WeightedEntry[string]{"bing", 5},
		WeightedEntry[string]{"affiliate", 5},
		WeightedEntry[string]{"referral", 5},
	)
}

// NewBase constructs the shared generator state. The same seed yields an
// identical sequence of draws across runs.
func NewBase(seed int64, window TimeWindow, batchSize int) (*Base, error) {
	if window.Start.After(window.End) {
		return nil, Configurationf("time window start %s is after end %s",
			window.Start.Format(TimestampLayout), window.End.Format(TimestampLayout))
	}
	if batchSize <= 0 {
		return nil, Configurationf("batch size must be positive, got %d", batchSize)
	}
	src := rand.NewSource(uint64(seed))
	return &Base{
		seed:      uint64(seed),
		window:    window,
		batchSize: batchSize,
		src:       src,
		rng:       rand.New(src),
		faker:     gofakeit.New(seed),
		countries: DefaultCountryTable(),
		referrers: DefaultReferrerTable(),
	}, nil
}

// UniformTimestamp samples uniformly between start and end, truncated to
// whole seconds. An inverted range is an InvalidRange fault.
func (b *Base) UniformTimestamp(start, end time.Time) (time.Time, error) {
	if start.After(end) {
		return time.Time{}, InvalidRangef("timestamp range start %s is after end %s",
			start.Format(TimestampLayout), end.Format(TimestampLayout))
	}
	lo := start.Unix()
	hi := end.Unix()
	if lo == hi {
		return time.Unix(lo, 0).UTC(), nil
	}
	u := distuv.Uniform{Min: float64(lo), Max: float64(hi), Src: b.src}
	return time.Unix(int64(u.Rand()), 0).UTC(), nil
}

// WindowTimestamp samples uniformly from the run window.
func (b *Base) WindowTimestamp() (time.Time, error) {
	return b.UniformTimestamp(b.window.Start, b.window.End)
}

func (b *Base) Window() TimeWindow { return b.window }

func (b *Base) BatchSize() int { return b.batchSize }

func (b *Base) Rand() *rand.Rand { return b.rng }

// Src exposes the seeded source for gonum distributions.
func (b *Base) Src() rand.Source { return b.src }

func (b *Base) Faker() *gofakeit.Faker { return b.faker }

func (b *Base) Countries() *WeightedTable[string] { return b.countries }

func (b *Base) Referrers() *WeightedTable[string] { return b.referrers }

// FloatRange draws uniformly from [min, max].
func (b *Base) FloatRange(min, max float64) float64 {
	return min + b.rng.Float64()*(max-min)
}

package gen

import (
	"time"
)

// User is one generated account. Tier and the two propensities are latent
// attributes that steer the downstream generators; they are stripped before
// records reach the destination store.
type User struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
	Country   string
	City      string
	Referrer  string
	IsActive  bool

	Tier               Tier
	ActivityPropensity float64
	PurchasePropensity float64
}

// UserGen produces user records with signup times biased toward weekdays
// and business hours, and country-correlated referrer sources.
type UserGen struct {
	base      *Base
	tierTable *WeightedTable[Tier]
}

func NewUserGen(base *Base) *UserGen {
	return &UserGen{
		base: base,
		tierTable: MustWeightedTable(
			WeightedEntry[Tier]{TierFree, 60},
			WeightedEntry[Tier]{TierBasic, 25},
			WeightedEntry[Tier]{TierPremium, 12},
			WeightedEntry[Tier]{TierEnterprise, 3},
		),
	}
}

// GenerateBatch produces count users with ids startID..startID+count-1.
// Ids are contiguous and unique within the batch; the caller is responsible
// for never reusing an id range across calls.
func (g *UserGen) GenerateBatch(count int, startID int64) ([]*User, error) {
	if count <= 0 {
		return nil, Configurationf("user batch count must be positive, got %d", count)
	}
	rng := g.base.Rand()
	faker := g.base.Faker()

	users := make([]*User, 0, count)
	for i := 0; i < count; i++ {
		createdAt, err := g.base.WindowTimestamp()
		if err != nil {
			return nil, err
		}
		createdAt = g.biasWeekday(createdAt)
		createdAt = g.biasBusinessHours(createdAt)

		country := g.base.Countries().Pick(rng)
		referrer := g.referrerTableFor(country).Pick(rng)

		users = append(users, &User{
			ID:        startID + int64(i),
			Username:  faker.Username(),
			Email:     faker.Email(),
			FirstName: faker.FirstName(),
			LastName:  faker.LastName(),
			CreatedAt: createdAt,
			Country:   country,
			City:      faker.City(),
			Referrer:  referrer,
			IsActive:  rng.Float64() < 0.85,

			Tier:               g.tierTable.Pick(rng),
			ActivityPropensity: g.base.FloatRange(0.1, 0.9),
			PurchasePropensity: g.base.FloatRange(0.05, 0.8),
		})
	}
	return users, nil
}

// biasWeekday shifts 70% of weekend signups forward onto the next Monday.
// The shift never escapes the run window.
func (g *UserGen) biasWeekday(ts time.Time) time.Time {
	var shift int
	switch ts.Weekday() {
	case time.Saturday:
		shift = 2
	case time.Sunday:
		shift = 1
	default:
		return ts
	}
	if g.base.Rand().Float64() >= 0.7 {
		return ts
	}
	moved := ts.AddDate(0, 0, shift)
	if moved.After(g.base.Window().End) {
		return ts
	}
	return moved
}

// biasBusinessHours replaces the hour of day with a uniform draw from
// [9, 17] for 70% of signups. The rewrite never escapes the run window:
// on a final partial day the original timestamp is kept.
func (g *UserGen) biasBusinessHours(ts time.Time) time.Time {
	rng := g.base.Rand()
	if rng.Float64() >= 0.7 {
		return ts
	}
	hour := 9 + int(rng.Int63n(9))
	moved := time.Date(ts.Year(), ts.Month(), ts.Day(), hour, ts.Minute(), ts.Second(), 0, ts.Location())
	if moved.After(g.base.Window().End) {
		return ts
	}
	return moved
}

// referrerTableFor adjusts the default referrer weights for the country:
// outside the core markets search engines lose share and direct traffic
// gains it.
func (g *UserGen) referrerTableFor(country string) *WeightedTable[string] {
	table := g.base.Referrers()
	if IsCoreMarket(country) {
		return table
	}
	return table.Adjust("google", 0.6).Adjust("direct", 1.5)
}

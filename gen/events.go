package gen

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Event is one behavioral event inside a session.
type Event struct {
	ID              int64
	UserID          int64
	SessionID       string
	Type            EventType
	Timestamp       time.Time
	UTMSource       string
	UTMMedium       string
	Device          DeviceType
	DurationSeconds int64
	Revenue         float64
}

// EventGen emits session-grouped events over a frozen user snapshot. The
// snapshot is read-only, so event and order generation can consume it
// concurrently.
type EventGen struct {
	base  *Base
	users []*User

	picker  sampleuv.Weighted
	weights []float64

	sessionLen distuv.Gamma
	gap        distuv.Exponential

	typeMix     map[Tier]*WeightedTable[EventType]
	mediums     *WeightedTable[string]
	devices     *WeightedTable[DeviceType]
	buyerSource *WeightedTable[string]
}

// NewEventGen requires at least one generated user; events cannot exist
// before their owners.
func NewEventGen(base *Base, users []*User) (*EventGen, error) {
	if len(users) == 0 {
		return nil, PrerequisiteMissingf("event generation requires at least one user")
	}
	weights := make([]float64, len(users))
	for i, u := range users {
		weights[i] = u.ActivityPropensity
	}
	return &EventGen{
		base:       base,
		users:      users,
		picker:     sampleuv.NewWeighted(weights, base.Src()),
		weights:    weights,
		sessionLen: distuv.Gamma{Alpha: 2, Beta: 0.5, Src: base.Src()},
		gap:        distuv.Exponential{Rate: 0.5, Src: base.Src()},
		typeMix:    tierTypeMix(),
		mediums: MustWeightedTable(
			WeightedEntry[string]{"cpc", 30},
			WeightedEntry[string]{"organic", 30},
			WeightedEntry[string]{"email", 15},
			WeightedEntry[string]{"social", 15},
			WeightedEntry[string]{"referral", 10},
		),
		devices: MustWeightedTable(
			WeightedEntry[DeviceType]{DeviceDesktop, 55},
			WeightedEntry[DeviceType]{DeviceMobile, 35},
			WeightedEntry[DeviceType]{DeviceTablet, 10},
		),
		buyerSource: MustWeightedTable(
			WeightedEntry[string]{"email", 40},
			WeightedEntry[string]{"google", 40},
			WeightedEntry[string]{"direct", 20},
		),
	}, nil
}

// tierTypeMix returns the per-tier event type distributions. Lower tiers
// skew toward passive browsing, higher tiers toward cart and purchase
// actions.
func tierTypeMix() map[Tier]*WeightedTable[EventType] {
	return map[Tier]*WeightedTable[EventType]{
		TierFree: MustWeightedTable(
			WeightedEntry[EventType]{EventPageView, 45},
			WeightedEntry[EventType]{EventClick, 20},
			WeightedEntry[EventType]{EventScroll, 15},
			WeightedEntry[EventType]{EventLogin, 8},
			WeightedEntry[EventType]{EventSearch, 5},
			WeightedEntry[EventType]{EventLogout, 4},
			WeightedEntry[EventType]{EventSignup, 2},
			WeightedEntry[EventType]{EventAddToCart, 0.7},
			WeightedEntry[EventType]{EventPurchase, 0.3},
		),
		TierBasic: MustWeightedTable(
			WeightedEntry[EventType]{EventPageView, 38},
			WeightedEntry[EventType]{EventClick, 22},
			WeightedEntry[EventType]{EventScroll, 12},
			WeightedEntry[EventType]{EventLogin, 9},
			WeightedEntry[EventType]{EventSearch, 6},
			WeightedEntry[EventType]{EventAddToCart, 6},
			WeightedEntry[EventType]{EventLogout, 4},
			WeightedEntry[EventType]{EventPurchase, 3},
		),
		TierPremium: MustWeightedTable(
			WeightedEntry[EventType]{EventPageView, 30},
			WeightedEntry[EventType]{EventClick, 20},
			WeightedEntry[EventType]{EventAddToCart, 12},
			WeightedEntry[EventType]{EventLogin, 10},
			WeightedEntry[EventType]{EventScroll, 8},
			WeightedEntry[EventType]{EventSearch, 8},
			WeightedEntry[EventType]{EventPurchase, 8},
			WeightedEntry[EventType]{EventLogout, 4},
		),
		TierEnterprise: MustWeightedTable(
			WeightedEntry[EventType]{EventPageView, 25},
			WeightedEntry[EventType]{EventClick, 18},
			WeightedEntry[EventType]{EventAddToCart, 15},
			WeightedEntry[EventType]{EventPurchase, 13},
			WeightedEntry[EventType]{EventLogin, 12},
			WeightedEntry[EventType]{EventSearch, 8},
			WeightedEntry[EventType]{EventScroll, 5},
			WeightedEntry[EventType]{EventLogout, 4},
		),
	}
}

// GenerateBatch produces at least count events starting at startID. Events
// are emitted a full session at a time, so the batch may overshoot count
// rather than cut a session short.
func (g *EventGen) GenerateBatch(count int, startID int64) ([]*Event, error) {
	if count <= 0 {
		return nil, Configurationf("event batch count must be positive, got %d", count)
	}
	events := make([]*Event, 0, count)
	nextID := startID
	for len(events) < count {
		session, err := g.generateSession(nextID)
		if err != nil {
			return nil, err
		}
		nextID += int64(len(session))
		events = append(events, session...)
	}
	return events, nil
}

// generateSession expands one simulated visit for a propensity-selected
// user. Session length follows Gamma(2,2); inter-event gaps are exponential
// with rate 0.5, capped so the session never exceeds its planned duration.
func (g *EventGen) generateSession(startID int64) ([]*Event, error) {
	user := g.pickUser()
	rng := g.base.Rand()

	start, err := g.sessionStart(user)
	if err != nil {
		return nil, err
	}

	length := int(math.Round(g.sessionLen.Rand()))
	if length < 1 {
		length = 1
	}
	budget := g.base.FloatRange(2, 20) * user.Tier.Multiplier() // minutes
	mix := g.typeMix[user.Tier]
	sessionID := g.base.Faker().UUID()

	events := make([]*Event, 0, length)
	ts := start
	elapsed := 0.0
	for i := 0; i < length; i++ {
		if i > 0 {
			gap := g.gap.Rand()
			if remaining := budget - elapsed; gap > remaining {
				gap = remaining
			}
			if gap > 0 {
				elapsed += gap
				next := ts.Add(time.Duration(gap * float64(time.Minute)))
				if end := g.base.Window().End; next.After(end) {
					next = end
				}
				// The window clamp must never move the session backwards.
				if next.Before(ts) {
					next = ts
				}
				ts = next
			}
		}
		typ := mix.Pick(rng)
		ev := &Event{
			ID:        startID + int64(i),
			UserID:    user.ID,
			SessionID: sessionID,
			Type:      typ,
			Timestamp: ts,
			UTMSource: g.utmSource(user, typ),
			UTMMedium: g.mediums.Pick(rng),
			Device:    g.devices.Pick(rng),
		}
		if typ == EventPageView {
			ev.DurationSeconds = 1 + rng.Int63n(1800)
		}
		if typ == EventPurchase {
			ev.Revenue = math.Round(g.base.FloatRange(10, 500)*100) / 100
		}
		events = append(events, ev)
	}
	return events, nil
}

// pickUser draws a session owner weighted by activity propensity. The taken
// index is immediately reweighted so sampling stays with-replacement.
func (g *EventGen) pickUser() *User {
	i, ok := g.picker.Take()
	if !ok {
		// All propensities zero; fall back to uniform.
		return g.users[g.base.Rand().Int63n(int64(len(g.users)))]
	}
	g.picker.Reweight(i, g.weights[i])
	return g.users[i]
}

// sessionStart samples a start time after the owner's signup. If the signup
// sits at or past the window end, the signup time itself is used.
func (g *EventGen) sessionStart(user *User) (time.Time, error) {
	end := g.base.Window().End
	if !user.CreatedAt.Before(end) {
		return user.CreatedAt, nil
	}
	return g.base.UniformTimestamp(user.CreatedAt, end)
}

// utmSource reuses the owner's referrer source 70% of the time; otherwise
// buying-intent events skew toward email and search, anything else redraws
// from the general referrer table.
func (g *EventGen) utmSource(user *User, typ EventType) string {
	rng := g.base.Rand()
	if rng.Float64() < 0.7 {
		return user.Referrer
	}
	if typ.IsPurchaseSignal() {
		return g.buyerSource.Pick(rng)
	}
	return g.base.Referrers().Pick(rng)
}

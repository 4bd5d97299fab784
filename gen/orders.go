package gen

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Order is one purchase by a pooled user. Sequence is the 1-based position
// among that user's orders within the run.
type Order struct {
	ID             int64
	UserID         int64
	OrderNumber    string
	Sequence       int
	Timestamp      time.Time
	Category       ProductCategory
	Quantity       int
	Amount         float64
	Currency       string
	PaymentMethod  PaymentMethod
	DiscountAmount float64
	DiscountCode   string
}

// firstOrderMaxDays bounds how long after signup a user's first order may
// land; subsequent orders get the full year.
const (
	firstOrderMaxDays = 30.0
	laterOrderMaxDays = 365.0
)

// OrderGen selects a purchasing subset of the user snapshot, weighted by
// purchase propensity and by cart/purchase signals in the event stream, and
// prices each order by category and tier.
type OrderGen struct {
	base   *Base
	users  []*User
	signal map[int64]bool

	behavior   map[Tier]*WeightedTable[BehaviorClass]
	categories *WeightedTable[ProductCategory]
	payments   *WeightedTable[PaymentMethod]
	currencies *WeightedTable[string]
}

// NewOrderGen requires the user snapshot; the event collection may be empty
// (for example when the event stage runs concurrently), in which case no
// user carries a purchase signal.
func NewOrderGen(base *Base, users []*User, events []*Event) (*OrderGen, error) {
	if len(users) == 0 {
		return nil, PrerequisiteMissingf("order generation requires at least one user")
	}
	signal := make(map[int64]bool)
	for _, ev := range events {
		if ev.Type.IsPurchaseSignal() {
			signal[ev.UserID] = true
		}
	}
	return &OrderGen{
		base:   base,
		users:  users,
		signal: signal,
		behavior: map[Tier]*WeightedTable[BehaviorClass]{
			TierFree: MustWeightedTable(
				WeightedEntry[BehaviorClass]{BehaviorSingle, 70},
				WeightedEntry[BehaviorClass]{BehaviorRepeat, 25},
				WeightedEntry[BehaviorClass]{BehaviorLoyal, 5},
			),
			TierBasic: MustWeightedTable(
				WeightedEntry[BehaviorClass]{BehaviorSingle, 55},
				WeightedEntry[BehaviorClass]{BehaviorRepeat, 35},
				WeightedEntry[BehaviorClass]{BehaviorLoyal, 10},
			),
			TierPremium: MustWeightedTable(
				WeightedEntry[BehaviorClass]{BehaviorSingle, 35},
				WeightedEntry[BehaviorClass]{BehaviorRepeat, 45},
				WeightedEntry[BehaviorClass]{BehaviorLoyal, 20},
			),
			TierEnterprise: MustWeightedTable(
				WeightedEntry[BehaviorClass]{BehaviorSingle, 20},
				WeightedEntry[BehaviorClass]{BehaviorRepeat, 45},
				WeightedEntry[BehaviorClass]{BehaviorLoyal, 35},
			),
		},
		categories: MustWeightedTable(
			WeightedEntry[ProductCategory]{CategorySubscription, 40},
			WeightedEntry[ProductCategory]{CategoryPremiumAddon, 15},
			WeightedEntry[ProductCategory]{CategoryRenewal, 10},
			WeightedEntry[ProductCategory]{CategoryUpgrade, 10},
			WeightedEntry[ProductCategory]{CategorySupport, 8},
			WeightedEntry[ProductCategory]{CategoryTraining, 5},
			WeightedEntry[ProductCategory]{CategoryEnterpriseAddon, 5},
			WeightedEntry[ProductCategory]{CategoryConsulting, 2},
		),
		payments: MustWeightedTable(
			WeightedEntry[PaymentMethod]{PaymentCreditCard, 60},
			WeightedEntry[PaymentMethod]{PaymentPaypal, 20},
			WeightedEntry[PaymentMethod]{PaymentStripe, 12},
			WeightedEntry[PaymentMethod]{PaymentBankTransfer, 5},
			WeightedEntry[PaymentMethod]{PaymentCrypto, 2},
			WeightedEntry[PaymentMethod]{PaymentWire, 1},
		),
		currencies: MustWeightedTable(
			WeightedEntry[string]{"USD", 60},
			WeightedEntry[string]{"EUR", 20},
			WeightedEntry[string]{"GBP", 10},
			WeightedEntry[string]{"CAD", 5},
			WeightedEntry[string]{"AUD", 5},
		),
	}, nil
}

// GenerateBatch produces up to count orders starting at startID. Generation
// halts when the eligible pool is exhausted; a shortfall is not an error,
// the caller decides what to do with the smaller result.
func (g *OrderGen) GenerateBatch(count int, startID int64) ([]*Order, error) {
	if count <= 0 {
		return nil, Configurationf("order batch count must be positive, got %d", count)
	}
	pool := g.buildPool(count)

	orders := make([]*Order, 0, count)
	nextID := startID
	for _, user := range pool {
		if len(orders) >= count {
			break
		}
		n := g.orderCount(user.Tier)
		for seq := 1; seq <= n && len(orders) < count; seq++ {
			orders = append(orders, g.generateOrder(nextID, user, seq))
			nextID++
		}
	}
	return orders, nil
}

// buildPool selects the purchasing subset. Each user joins with probability
// purchase_propensity x 1.5-if-signalled x tier boost; if that leaves the
// pool under 30% of the order target it is topped up by propensity-weighted
// sampling (without duplicates) from the remaining users.
func (g *OrderGen) buildPool(target int) []*User {
	rng := g.base.Rand()
	pool := make([]*User, 0, len(g.users))
	pooled := make(map[int64]bool, len(g.users))
	for _, u := range g.users {
		p := u.PurchasePropensity * u.Tier.OrderBoost()
		if g.signal[u.ID] {
			p *= 1.5
		}
		if p > 1 {
			p = 1
		}
		if rng.Float64() < p {
			pool = append(pool, u)
			pooled[u.ID] = true
		}
	}

	minPool := int(math.Ceil(0.3 * float64(target)))
	if len(pool) >= minPool {
		return pool
	}

	var remaining []*User
	var weights []float64
	for _, u := range g.users {
		if !pooled[u.ID] {
			remaining = append(remaining, u)
			weights = append(weights, u.PurchasePropensity)
		}
	}
	if len(remaining) == 0 {
		return pool
	}
	picker := sampleuv.NewWeighted(weights, g.base.Src())
	for len(pool) < minPool {
		i, ok := picker.Take()
		if !ok {
			break
		}
		pool = append(pool, remaining[i])
	}
	return pool
}

// orderCount draws the behavior class for the user's tier and maps it to a
// number of orders: single 1, repeat 2-4, loyal 3-8.
func (g *OrderGen) orderCount(tier Tier) int {
	rng := g.base.Rand()
	switch g.behavior[tier].Pick(rng) {
	case BehaviorRepeat:
		return 2 + int(rng.Int63n(3))
	case BehaviorLoyal:
		return 3 + int(rng.Int63n(6))
	default:
		return 1
	}
}

func (g *OrderGen) generateOrder(id int64, user *User, seq int) *Order {
	rng := g.base.Rand()

	category := g.categoryFor(user.Tier, seq).Pick(rng)
	minPrice, maxPrice := category.PriceRange()
	gross := g.base.FloatRange(minPrice, maxPrice) * user.Tier.Multiplier() * g.base.FloatRange(0.9, 1.1)

	var discountAmount float64
	var discountCode string
	if rng.Float64() < 0.3 {
		rate := g.base.FloatRange(0.05, 0.5)
		discountAmount = round2(gross * rate)
		discountCode = g.base.Faker().Lexify("????##")
	}
	amount := round2(gross) - discountAmount
	if amount < 0.01 {
		amount = 0.01
	}

	return &Order{
		ID:             id,
		UserID:         user.ID,
		OrderNumber:    fmt.Sprintf("ORD-%06d", id),
		Sequence:       seq,
		Timestamp:      g.orderTime(user, seq),
		Category:       category,
		Quantity:       1 + int(rng.Int63n(5)),
		Amount:         amount,
		Currency:       g.currencies.Pick(rng),
		PaymentMethod:  g.paymentFor(user, amount).Pick(rng),
		DiscountAmount: discountAmount,
		DiscountCode:   discountCode,
	}
}

// orderTime places the order at signup + Gamma(2, maxDays/4) days, clamped
// to maxDays (30 for the first order, 365 after) and to the run end.
func (g *OrderGen) orderTime(user *User, seq int) time.Time {
	maxDays := firstOrderMaxDays
	if seq > 1 {
		maxDays = laterOrderMaxDays
	}
	gamma := distuv.Gamma{Alpha: 2, Beta: 4 / maxDays, Src: g.base.Src()}
	days := gamma.Rand()
	if days > maxDays {
		days = maxDays
	}
	ts := user.CreatedAt.Add(time.Duration(days * 24 * float64(time.Hour)))
	if end := g.base.Window().End; ts.After(end) {
		ts = end
	}
	if ts.Before(user.CreatedAt) {
		ts = user.CreatedAt
	}
	return ts
}

// categoryFor reshapes the base category weights for the order's position
// and the user's tier: first orders skew toward subscriptions, later ones
// toward renewals and upgrades, higher tiers toward the enterprise lines.
func (g *OrderGen) categoryFor(tier Tier, seq int) *WeightedTable[ProductCategory] {
	table := g.categories
	if seq == 1 {
		table = table.Adjust(CategorySubscription, 2.0)
	} else {
		table = table.Adjust(CategoryRenewal, 3.0).
			Adjust(CategoryUpgrade, 2.0).
			Adjust(CategorySubscription, 0.5)
	}
	switch tier {
	case TierPremium:
		table = table.Adjust(CategoryEnterpriseAddon, 2.0).Adjust(CategoryTraining, 2.0)
	case TierEnterprise:
		table = table.Adjust(CategoryEnterpriseAddon, 3.0).
			Adjust(CategoryTraining, 2.0).
			Adjust(CategoryConsulting, 3.0)
	}
	return table
}

// paymentFor biases the payment table toward wire and bank transfer for
// large amounts, and toward wire and alternative rails outside the core
// markets.
func (g *OrderGen) paymentFor(user *User, amount float64) *WeightedTable[PaymentMethod] {
	table := g.payments
	if amount > 500 {
		table = table.Adjust(PaymentWire, 8.0).Adjust(PaymentBankTransfer, 3.0)
	}
	if !IsCoreMarket(user.Country) {
		table = table.Adjust(PaymentWire, 4.0).
			Adjust(PaymentCrypto, 3.0).
			Adjust(PaymentBankTransfer, 2.0)
	}
	return table
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

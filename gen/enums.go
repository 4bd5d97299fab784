package gen

// Tier is the ordinal user classification driving event mix, session length
// and order pricing. Four levels, ordered from free to enterprise.
type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

var Tiers = []Tier{TierFree, TierBasic, TierPremium, TierEnterprise}

// Multiplier scales session durations and order amounts per tier.
func (t Tier) Multiplier() float64 {
	switch t {
	case TierBasic:
		return 1.5
	case TierPremium:
		return 2.0
	case TierEnterprise:
		return 2.5
	default:
		return 1.0
	}
}

// OrderBoost scales the effective purchase likelihood when building the
// eligible-buyer pool.
func (t Tier) OrderBoost() float64 {
	switch t {
	case TierFree:
		return 0.8
	case TierBasic:
		return 1.0
	case TierPremium:
		return 1.3
	default:
		return 1.6
	}
}

// EventType enumerates the behavioral event vocabulary.
type EventType string

const (
	EventPageView  EventType = "page_view"
	EventClick     EventType = "click"
	EventScroll    EventType = "scroll"
	EventSignup    EventType = "signup"
	EventLogin     EventType = "login"
	EventLogout    EventType = "logout"
	EventPurchase  EventType = "purchase"
	EventAddToCart EventType = "add_to_cart"
	EventSearch    EventType = "search"
)

// IsPurchaseSignal reports whether the event indicates buying intent.
func (t EventType) IsPurchaseSignal() bool {
	return t == EventPurchase || t == EventAddToCart
}

// DeviceType is the 3-way client device classification.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
)

// ProductCategory enumerates purchasable categories, each with a fixed
// base price range.
type ProductCategory string

const (
	CategorySubscription    ProductCategory = "subscription"
	CategoryPremiumAddon    ProductCategory = "premium_addon"
	CategoryEnterpriseAddon ProductCategory = "enterprise_addon"
	CategoryRenewal         ProductCategory = "renewal"
	CategoryUpgrade         ProductCategory = "upgrade"
	CategoryTraining        ProductCategory = "training"
	CategorySupport         ProductCategory = "support"
	CategoryConsulting      ProductCategory = "consulting"
)

// PriceRange returns the base [min, max] price for the category, before
// tier multipliers are applied.
func (c ProductCategory) PriceRange() (min, max float64) {
	switch c {
	case CategorySubscription:
		return 9.99, 99.99
	case CategoryPremiumAddon:
		return 4.99, 49.99
	case CategoryEnterpriseAddon:
		return 19.99, 199.99
	case CategoryRenewal:
		return 9.99, 149.99
	case CategoryUpgrade:
		return 19.99, 299.99
	case CategoryTraining:
		return 99.99, 999.99
	case CategorySupport:
		return 49.99, 499.99
	case CategoryConsulting:
		return 199.99, 1999.99
	default:
		return 9.99, 99.99
	}
}

// PaymentMethod enumerates how an order is paid.
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentStripe       PaymentMethod = "stripe"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCrypto       PaymentMethod = "crypto"
	PaymentWire         PaymentMethod = "wire"
)

// BehaviorClass is the per-user order-count category.
type BehaviorClass string

const (
	BehaviorSingle BehaviorClass = "single"
	BehaviorRepeat BehaviorClass = "repeat"
	BehaviorLoyal  BehaviorClass = "loyal"
)

// coreMarkets are the markets where the default referrer and payment
// distributions hold unadjusted.
var coreMarkets = map[string]bool{
	"US": true,
	"GB": true,
	"CA": true,
	"AU": true,
	"DE": true,
	"FR": true,
}

// IsCoreMarket reports whether the country code belongs to a core market.
func IsCoreMarket(country string) bool {
	return coreMarkets[country]
}

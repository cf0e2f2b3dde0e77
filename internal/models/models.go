package models

import (
	"strings"
	"time"
)

type AssetClass int

const (
	Stock AssetClass = iota
	Bond
	Crypto
	ETF
	Cash
	RealEstate
	Other
)

var AssetClasses = []AssetClass{Stock, Bond, Crypto, ETF, Cash, RealEstate, Other}

func (c AssetClass) String() string {
	switch c {
	case Stock:
		return "stock"
	case Bond:
		return "bond"
	case Crypto:
		return "crypto"
	case ETF:
		return "etf"
	case Cash:
		return "cash"
	case RealEstate:
		return "real estate"
	}
	return "other"
}

func (c AssetClass) DisplayName() string {
	switch c {
	case Stock:
		return "Stocks"
	case Bond:
		return "Bonds"
	case Crypto:
		return "Crypto"
	case ETF:
		return "ETF"
	case Cash:
		return "Cash"
	case RealEstate:
		return "Real Estate"
	}
	return "Other"
}

// Tradable classes are valued as quantity x price. Cash, real estate and
// other hold a direct dollar value.
func (c AssetClass) Tradable() bool {
	switch c {
	case Stock, Bond, Crypto, ETF:
		return true
	}
	return false
}

func (c AssetClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the canonical keys produced by MarshalText. Unknown
// keys decode as Other.
func (c *AssetClass) UnmarshalText(b []byte) error {
	*c = Other
	for _, class := range AssetClasses {
		if class.String() == string(b) {
			*c = class
			break
		}
	}
	return nil
}

// Holding is a recorded position as supplied by the store. The engine never
// mutates it.
type Holding struct {
	ID          int64   `json:"id"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	AssetClass  string  `json:"asset_type"`
	Quantity    float64 `json:"quantity"`
	StoredPrice float64 `json:"price"`
	StoredValue float64 `json:"value"`
}

type QuoteSource string

const (
	QuoteLive      QuoteSource = "live"
	QuoteStale     QuoteSource = "stale"
	QuoteSynthetic QuoteSource = "synthetic"
)

type Quote struct {
	Symbol        string      `json:"symbol"`
	Price         float64     `json:"price"`
	Change        float64     `json:"change"`
	ChangePercent float64     `json:"changePercent"`
	PreviousClose float64     `json:"previousClose"`
	FetchedAt     time.Time   `json:"fetchedAt"`
	Source        QuoteSource `json:"source"`
}

// IsFallback reports whether the quote was not freshly fetched from the
// market data provider.
func (q Quote) IsFallback() bool {
	return q.Source != QuoteLive
}

type AllocationEntry struct {
	Name          string     `json:"name"`
	Class         AssetClass `json:"class"`
	Percent       int        `json:"value"`
	RawValue      float64    `json:"rawValue"`
	TargetPercent float64    `json:"targetPercent,omitempty"`
}

type Action string

const (
	Buy  Action = "Buy"
	Sell Action = "Sell"
	Hold Action = "Hold"
)

type RebalancingAction struct {
	Action Action  `json:"action"`
	Target string  `json:"asset"`
	Amount float64 `json:"amount"`
}

type Recommendation struct {
	RebalancingAction
	CurrentValue   float64 `json:"current_value"`
	TargetValue    float64 `json:"target_value"`
	CurrentPercent float64 `json:"current_percentage"`
	TargetPercent  float64 `json:"target_percentage"`
	Difference     float64 `json:"difference"`
}

// Target is a per-symbol target weight, 0-100.
type Target struct {
	ID            int64   `json:"id,omitempty"`
	Symbol        string  `json:"symbol"`
	TargetPercent float64 `json:"target_percentage"`
	AssetClass    string  `json:"asset_type"`
}

// Position is a valued holding used for proportional distribution.
type Position struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

type BucketAllocation struct {
	Stocks float64 `json:"stocks"`
	Bonds  float64 `json:"bonds"`
	Cash   float64 `json:"cash"`
}

type Model struct {
	Name        string  `json:"name"`
	Stocks      float64 `json:"stocks"`
	Bonds       float64 `json:"bonds"`
	Cash        float64 `json:"cash"`
	Description string  `json:"description"`
}

var Models = []Model{
	{
		Name:        "Conservative",
		Stocks:      30,
		Bonds:       50,
		Cash:        20,
		Description: "Stable growth with a focus on preserving capital. Ideal for cautious investors.",
	},
	{
		Name:        "Moderate",
		Stocks:      60,
		Bonds:       30,
		Cash:        10,
		Description: "Balanced growth with diversified assets. Suitable for medium-risk investors.",
	},
	{
		Name:        "Aggressive",
		Stocks:      80,
		Bonds:       15,
		Cash:        5,
		Description: "High growth potential with more market fluctuations. Advisable for risk-tolerant investors.",
	},
}

func LookupModel(name string) (Model, bool) {
	for _, m := range Models {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return m, true
		}
	}
	return Model{}, false
}

type Metrics struct {
	TotalValue           float64 `json:"total_value"`
	NumHoldings          int     `json:"num_holdings"`
	LargestHolding       string  `json:"largest_holding,omitempty"`
	DiversificationScore float64 `json:"diversification_score"`
}

type Change struct {
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

package database

import (
	"time"

	"folio/internal/models"

	"github.com/shopspring/decimal"
)

type Portfolio struct {
	ID          int64           `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	TotalValue  decimal.Decimal `db:"total_value" json:"total_value"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type Asset struct {
	ID          int64           `db:"id" json:"id"`
	PortfolioID int64           `db:"portfolio_id" json:"portfolio_id"`
	Symbol      string          `db:"symbol" json:"symbol"`
	Name        string          `db:"name" json:"name"`
	AssetType   string          `db:"asset_type" json:"asset_type"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Value       decimal.Decimal `db:"value" json:"value"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

func (a Asset) Holding() models.Holding {
	return models.Holding{
		ID:          a.ID,
		Symbol:      a.Symbol,
		Name:        a.Name,
		AssetClass:  a.AssetType,
		Quantity:    a.Quantity.InexactFloat64(),
		StoredPrice: a.Price.InexactFloat64(),
		StoredValue: a.Value.InexactFloat64(),
	}
}

type Allocation struct {
	ID               int64           `db:"id" json:"id"`
	PortfolioID      int64           `db:"portfolio_id" json:"portfolio_id"`
	Symbol           string          `db:"symbol" json:"symbol"`
	TargetPercentage decimal.Decimal `db:"target_percentage" json:"target_percentage"`
	AssetType        string          `db:"asset_type" json:"asset_type"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

func (a Allocation) Target() models.Target {
	return models.Target{
		ID:            a.ID,
		Symbol:        a.Symbol,
		TargetPercent: a.TargetPercentage.InexactFloat64(),
		AssetClass:    a.AssetType,
	}
}

type NewAsset struct {
	Symbol    string
	Name      string
	AssetType string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	// Value defaults to Quantity x Price when nil.
	Value *decimal.Decimal
}

// AssetUpdate applies only the non-nil fields.
type AssetUpdate struct {
	Symbol    *string
	Name      *string
	AssetType *string
	Quantity  *decimal.Decimal
	Price     *decimal.Decimal
	Value     *decimal.Decimal
}

type quoteRow struct {
	Symbol        string          `db:"symbol"`
	Price         decimal.Decimal `db:"price"`
	PreviousClose decimal.Decimal `db:"previous_close"`
	ChangePercent decimal.Decimal `db:"change_percent"`
	FetchedAt     time.Time       `db:"fetched_at"`
}

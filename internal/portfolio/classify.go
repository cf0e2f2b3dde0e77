package portfolio

import (
	"strings"

	"folio/internal/models"
)

// Classify maps a free-form asset type onto the fixed taxonomy. Unknown
// input falls through to Other.
func Classify(raw string) models.AssetClass {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "stock", "stocks":
		return models.Stock
	case "bond", "bonds":
		return models.Bond
	case "crypto", "cryptocurrency", "cryptocurrencies":
		return models.Crypto
	case "etf", "etfs":
		return models.ETF
	case "cash", "currency":
		return models.Cash
	case "real estate", "realestate":
		return models.RealEstate
	}
	return models.Other
}

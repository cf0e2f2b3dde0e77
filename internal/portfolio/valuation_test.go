package portfolio

import (
	"math"
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValueOf_PrefersQuoteForTradable(t *testing.T) {
	h := models.Holding{Symbol: "AAPL", AssetClass: "stock", Quantity: 10, StoredPrice: 50, StoredValue: 500}
	assert.Equal(t, 550.0, ValueOf(h, &models.Quote{Price: 55}))
	assert.Equal(t, 55.0, DisplayPrice(h, &models.Quote{Price: 55}))
}

func TestValueOf_NoQuoteUsesStoredValue(t *testing.T) {
	h := models.Holding{Symbol: "AAPL", AssetClass: "stock", Quantity: 10, StoredPrice: 50, StoredValue: 500}
	assert.Equal(t, 500.0, ValueOf(h, nil))
	assert.Equal(t, 50.0, DisplayPrice(h, nil))
}

func TestValueOf_IgnoresQuoteForNonTradable(t *testing.T) {
	for _, class := range []string{"cash", "real estate", "collectibles"} {
		h := models.Holding{Symbol: "USD", AssetClass: class, Quantity: 1, StoredValue: 1000}
		assert.Equal(t, 1000.0, ValueOf(h, &models.Quote{Price: 123.45}), class)
		assert.Equal(t, 0.0, DisplayPrice(h, &models.Quote{Price: 123.45}), class)
	}
}

func TestValueOf_ZeroQuantityFallsBack(t *testing.T) {
	h := models.Holding{Symbol: "BTC", AssetClass: "crypto", Quantity: 0, StoredValue: 42}
	assert.Equal(t, 42.0, ValueOf(h, &models.Quote{Price: 60000}))
}

func TestTotalValue_QuoteLookupIsCaseInsensitive(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "aapl", AssetClass: "stock", Quantity: 2, StoredValue: 100},
		{Symbol: "CASH", AssetClass: "cash", Quantity: 1, StoredValue: 300},
		{Symbol: "BAD", AssetClass: "stock", StoredValue: math.NaN()},
	}
	quotes := map[string]models.Quote{"AAPL": {Symbol: "AAPL", Price: 75}}
	assert.Equal(t, 450.0, TotalValue(holdings, quotes))
}

package portfolio

import (
	"math"
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumPercent(entries []models.AllocationEntry) int {
	s := 0
	for _, e := range entries {
		s += e.Percent
	}
	return s
}

func TestAggregate_EmptyPortfolio(t *testing.T) {
	want := []models.AllocationEntry{{Name: "No assets", Class: models.Other, Percent: 100, RawValue: 0}}
	assert.Equal(t, want, Aggregate(nil, nil))
	assert.Equal(t, want, Aggregate([]models.Holding{{Symbol: "X", AssetClass: "cash", StoredValue: 0}}, nil))
}

func TestAggregate_GroupsAndSortsDescending(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "AAPL", AssetClass: "stock", Quantity: 10, StoredValue: 1000},
		{Symbol: "MSFT", AssetClass: "Stocks", Quantity: 5, StoredValue: 2000},
		{Symbol: "TLT", AssetClass: "bond", Quantity: 10, StoredValue: 1500},
		{Symbol: "BTC", AssetClass: "crypto", Quantity: 1, StoredValue: 500},
		{Symbol: "HOUSE", AssetClass: "real estate", Quantity: 1, StoredValue: 0},
	}
	entries := Aggregate(holdings, nil)
	require.Len(t, entries, 3)

	assert.Equal(t, "Stocks", entries[0].Name)
	assert.Equal(t, 3000.0, entries[0].RawValue)
	assert.Equal(t, 60, entries[0].Percent)
	assert.Equal(t, "Bonds", entries[1].Name)
	assert.Equal(t, 30, entries[1].Percent)
	assert.Equal(t, "Crypto", entries[2].Name)
	assert.Equal(t, 10, entries[2].Percent)
}

func TestAggregate_UsesLiveQuotes(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "AAPL", AssetClass: "stock", Quantity: 10, StoredPrice: 50, StoredValue: 500},
		{Symbol: "USD", AssetClass: "cash", Quantity: 1, StoredValue: 500},
	}
	quotes := map[string]models.Quote{
		"AAPL": {Symbol: "AAPL", Price: 150},
		"USD":  {Symbol: "USD", Price: 9999},
	}
	entries := Aggregate(holdings, quotes)
	require.Len(t, entries, 2)
	assert.Equal(t, 1500.0, entries[0].RawValue)
	assert.Equal(t, 75, entries[0].Percent)
	assert.Equal(t, 500.0, entries[1].RawValue)
	assert.Equal(t, 25, entries[1].Percent)
}

func TestAggregate_PositiveDriftGoesToLargest(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "A", AssetClass: "stock", StoredValue: 33.33},
		{Symbol: "B", AssetClass: "bond", StoredValue: 33.33},
		{Symbol: "C", AssetClass: "cash", StoredValue: 33.34},
	}
	entries := Aggregate(holdings, nil)
	require.Len(t, entries, 3)
	assert.Equal(t, "Cash", entries[0].Name)
	assert.Equal(t, 34, entries[0].Percent)
	assert.Equal(t, 33, entries[1].Percent)
	assert.Equal(t, 33, entries[2].Percent)
	assert.Equal(t, 100, sumPercent(entries))
}

func TestAggregate_NegativeDriftGoesToLargest(t *testing.T) {
	// 15.625% x 4 rounds to 16 each, 37.5% rounds to 38: 102 before reconciliation
	holdings := []models.Holding{
		{Symbol: "A", AssetClass: "bond", StoredValue: 5},
		{Symbol: "B", AssetClass: "crypto", StoredValue: 5},
		{Symbol: "C", AssetClass: "etf", StoredValue: 5},
		{Symbol: "D", AssetClass: "cash", StoredValue: 5},
		{Symbol: "E", AssetClass: "stock", StoredValue: 12},
	}
	entries := Aggregate(holdings, nil)
	require.Len(t, entries, 5)
	assert.Equal(t, "Stocks", entries[0].Name)
	assert.Equal(t, 36, entries[0].Percent)
	assert.Equal(t, 16, entries[1].Percent)
	assert.Equal(t, 100, sumPercent(entries))
}

func TestAggregate_IgnoresNonFiniteAndNegativeValues(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "A", AssetClass: "stock", StoredValue: 100},
		{Symbol: "B", AssetClass: "bond", StoredValue: math.Inf(1)},
		{Symbol: "C", AssetClass: "cash", StoredValue: -50},
		{Symbol: "D", AssetClass: "etf", StoredValue: math.NaN()},
	}
	entries := Aggregate(holdings, nil)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AllocationEntry{Name: "Stocks", Class: models.Stock, Percent: 100, RawValue: 100}, entries[0])
}

func overflowingHoldings() []models.Holding {
	return []models.Holding{
		{Symbol: "A", AssetClass: "stock", StoredValue: 1e308},
		{Symbol: "B", AssetClass: "bond", StoredValue: 1e308},
		{Symbol: "C", AssetClass: "cash", StoredValue: 1e308},
	}
}

func TestAggregate_OverflowingTotalIsEmpty(t *testing.T) {
	entries := Aggregate(overflowingHoldings(), nil)
	assert.Equal(t, []models.AllocationEntry{{Name: NoAssetsName, Class: models.Other, Percent: 100, RawValue: 0}}, entries)
	assert.Equal(t, 0.0, TotalValue(overflowingHoldings(), nil))
}

func TestAggregate_AlwaysSumsTo100(t *testing.T) {
	values := []float64{1, 2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}
	classes := []string{"stock", "bond", "crypto", "etf", "cash", "real estate", "other"}
	for n := 1; n <= len(values); n++ {
		holdings := []models.Holding{}
		for i := 0; i < n; i++ {
			holdings = append(holdings, models.Holding{Symbol: "S", AssetClass: classes[i%len(classes)], StoredValue: values[i] * 3.7})
		}
		assert.Equal(t, 100, sumPercent(Aggregate(holdings, nil)), "n=%d", n)
	}
}

func TestWithModelTargets(t *testing.T) {
	entries := []models.AllocationEntry{
		{Name: "Stocks", Class: models.Stock, Percent: 70},
		{Name: "Crypto", Class: models.Crypto, Percent: 20},
		{Name: "Cash", Class: models.Cash, Percent: 10},
	}
	model, _ := models.LookupModel("moderate")
	got := WithModelTargets(entries, model)
	assert.Equal(t, 60.0, got[0].TargetPercent)
	assert.Equal(t, 0.0, got[1].TargetPercent)
	assert.Equal(t, 10.0, got[2].TargetPercent)
	assert.Equal(t, 0.0, entries[0].TargetPercent, "input must not be modified")
}

package portfolio

import (
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanBySymbol(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "AAPL", AssetClass: "stock", StoredValue: 5000},
		{Symbol: "GOOGL", AssetClass: "stock", StoredValue: 3000},
		{Symbol: "MSFT", AssetClass: "stock", StoredValue: 2000},
	}
	targets := []models.Target{
		{Symbol: "AAPL", TargetPercent: 40},
		{Symbol: "GOOGL", TargetPercent: 30},
		{Symbol: "MSFT", TargetPercent: 30},
	}
	recs := PlanBySymbol(holdings, targets, nil)
	require.Len(t, recs, 3)

	assert.Equal(t, "AAPL", recs[0].Target)
	assert.InDelta(t, 4000, recs[0].TargetValue, 1e-9)
	assert.InDelta(t, -1000, recs[0].Difference, 1e-9)
	assert.Equal(t, models.Sell, recs[0].Action)
	assert.InDelta(t, 1000, recs[0].Amount, 1e-9)
	assert.InDelta(t, 50, recs[0].CurrentPercent, 1e-9)

	assert.Equal(t, models.Hold, recs[1].Action)
	assert.InDelta(t, 0, recs[1].Amount, HoldEpsilon)

	assert.Equal(t, models.Buy, recs[2].Action)
	assert.InDelta(t, 1000, recs[2].Amount, 1e-9)
}

func TestPlanBySymbol_BuyToTarget(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "AAPL", AssetClass: "stock", StoredValue: 2000},
		{Symbol: "BND", AssetClass: "bond", StoredValue: 8000},
	}
	recs := PlanBySymbol(holdings, []models.Target{{Symbol: "aapl", TargetPercent: 25}}, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, models.Buy, recs[0].Action)
	assert.Equal(t, "aapl", recs[0].Target)
	assert.InDelta(t, 2000, recs[0].CurrentValue, 1e-9)
	assert.InDelta(t, 20, recs[0].CurrentPercent, 1e-9)
	assert.InDelta(t, 2500, recs[0].TargetValue, 1e-9)
	assert.InDelta(t, 500, recs[0].Amount, 1e-9)
}

func TestPlanBySymbol_TargetNotHeld(t *testing.T) {
	holdings := []models.Holding{{Symbol: "AAPL", AssetClass: "stock", StoredValue: 1000}}
	recs := PlanBySymbol(holdings, []models.Target{{Symbol: "VTI", TargetPercent: 10}}, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, models.Buy, recs[0].Action)
	assert.InDelta(t, 100, recs[0].Amount, 1e-9)
	assert.Equal(t, 0.0, recs[0].CurrentValue)
}

func TestPlanBySymbol_HoldWithinEpsilon(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "A", AssetClass: "stock", StoredValue: 500.001},
		{Symbol: "B", AssetClass: "stock", StoredValue: 499.999},
	}
	recs := PlanBySymbol(holdings, []models.Target{{Symbol: "A", TargetPercent: 50}}, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, models.Hold, recs[0].Action)
}

func TestPlanBySymbol_ZeroTotal(t *testing.T) {
	targets := []models.Target{{Symbol: "AAPL", TargetPercent: 100}}
	assert.Empty(t, PlanBySymbol(nil, targets, nil))
	assert.Empty(t, PlanBySymbol([]models.Holding{{Symbol: "AAPL", StoredValue: 0}}, targets, nil))
}

func TestPlanByModel_ConservativeFromStockHeavy(t *testing.T) {
	model, ok := models.LookupModel("Conservative")
	require.True(t, ok)
	current := models.BucketAllocation{Stocks: 70, Bonds: 20, Cash: 10}
	stocks := []models.Position{{Symbol: "AAPL", Value: 40000}, {Symbol: "MSFT", Value: 30000}}

	actions := PlanByModel(current, model, 100000, stocks, PlanOptions{})
	require.Len(t, actions, 3)

	assert.Equal(t, models.Sell, actions[0].Action)
	assert.Equal(t, "Stocks", actions[0].Target)
	assert.InDelta(t, 40000, actions[0].Amount, 1e-6)

	assert.Equal(t, models.Buy, actions[1].Action)
	assert.Equal(t, "Bonds", actions[1].Target)
	assert.InDelta(t, 30000, actions[1].Amount, 1e-6)

	assert.Equal(t, models.Buy, actions[2].Action)
	assert.Equal(t, "Cash", actions[2].Target)
	assert.InDelta(t, 10000, actions[2].Amount, 1e-6)
}

func TestPlanByModel_StockBuysAreDistributed(t *testing.T) {
	model, _ := models.LookupModel("Aggressive")
	current := models.BucketAllocation{Stocks: 40, Bonds: 40, Cash: 20}
	stocks := []models.Position{
		{Symbol: "AAPL", Value: 30000},
		{Symbol: "TINY", Value: 0.5},
		{Symbol: "MSFT", Value: 10000},
	}

	actions := PlanByModel(current, model, 100000, stocks, PlanOptions{})
	require.Len(t, actions, 4)

	// 40,000 to buy, split 3:1 across AAPL and MSFT; TINY's share is under $1
	assert.Equal(t, models.RebalancingAction{Action: models.Buy, Target: "AAPL"}, withoutAmount(actions[0]))
	assert.InDelta(t, 29999.625, actions[0].Amount, 0.01)
	assert.Equal(t, models.RebalancingAction{Action: models.Buy, Target: "MSFT"}, withoutAmount(actions[1]))
	assert.InDelta(t, 9999.875, actions[1].Amount, 0.01)

	assert.Equal(t, models.RebalancingAction{Action: models.Sell, Target: "Bonds"}, withoutAmount(actions[2]))
	assert.InDelta(t, 25000, actions[2].Amount, 1e-6)
	assert.Equal(t, models.RebalancingAction{Action: models.Sell, Target: "Cash"}, withoutAmount(actions[3]))
	assert.InDelta(t, 15000, actions[3].Amount, 1e-6)
}

func TestPlanByModel_BuyWithoutStockPositions(t *testing.T) {
	model, _ := models.LookupModel("Moderate")
	current := models.BucketAllocation{Stocks: 0, Bonds: 90, Cash: 10}

	actions := PlanByModel(current, model, 1000, nil, PlanOptions{})
	require.Len(t, actions, 2)
	assert.Equal(t, models.Buy, actions[0].Action)
	assert.Equal(t, "Stocks", actions[0].Target)
	assert.InDelta(t, 600, actions[0].Amount, 1e-9)
	assert.Equal(t, "Bonds", actions[1].Target)
}

func TestPlanByModel_DecomposeSells(t *testing.T) {
	model, _ := models.LookupModel("Conservative")
	current := models.BucketAllocation{Stocks: 70, Bonds: 20, Cash: 10}
	stocks := []models.Position{{Symbol: "AAPL", Value: 40000}, {Symbol: "MSFT", Value: 30000}}

	actions := PlanByModel(current, model, 100000, stocks, PlanOptions{DecomposeSells: true})
	require.Len(t, actions, 4)
	assert.Equal(t, models.Sell, actions[0].Action)
	assert.Equal(t, "AAPL", actions[0].Target)
	assert.InDelta(t, 40000*4.0/7.0, actions[0].Amount, 1e-6)
	assert.Equal(t, "MSFT", actions[1].Target)
	assert.InDelta(t, 40000*3.0/7.0, actions[1].Amount, 1e-6)
}

func TestPlanByModel_AlreadyAligned(t *testing.T) {
	model, _ := models.LookupModel("Moderate")
	actions := PlanByModel(models.BucketAllocation{Stocks: 60, Bonds: 30, Cash: 10}, model, 5000, nil, PlanOptions{})
	assert.Empty(t, actions)
}

func TestPlanByModel_ZeroTotal(t *testing.T) {
	model, _ := models.LookupModel("Conservative")
	current := models.BucketAllocation{Stocks: 70, Bonds: 20, Cash: 10}
	assert.Equal(t, []models.RebalancingAction{}, PlanByModel(current, model, 0, nil, PlanOptions{}))
	assert.Empty(t, PlanByModel(current, model, -10, nil, PlanOptions{}))
}

func TestCurrentBuckets(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "AAPL", AssetClass: "stock", StoredValue: 500},
		{Symbol: "BTC", AssetClass: "crypto", StoredValue: 200},
		{Symbol: "BND", AssetClass: "bond", StoredValue: 200},
		{Symbol: "USD", AssetClass: "cash", StoredValue: 100},
	}
	buckets, positions, total := CurrentBuckets(holdings, nil)
	assert.InDelta(t, 1000, total, 1e-9)
	assert.InDelta(t, 70, buckets.Stocks, 1e-9)
	assert.InDelta(t, 20, buckets.Bonds, 1e-9)
	assert.InDelta(t, 10, buckets.Cash, 1e-9)
	assert.Equal(t, []models.Position{{Symbol: "AAPL", Value: 500}}, positions)
}

func TestCurrentBuckets_Empty(t *testing.T) {
	buckets, positions, total := CurrentBuckets(nil, nil)
	assert.Equal(t, models.BucketAllocation{}, buckets)
	assert.Empty(t, positions)
	assert.Equal(t, 0.0, total)
}

func TestPlanners_OverflowingTotal(t *testing.T) {
	targets := []models.Target{{Symbol: "A", TargetPercent: 50}}
	assert.Empty(t, PlanBySymbol(overflowingHoldings(), targets, nil))

	buckets, _, total := CurrentBuckets(overflowingHoldings(), nil)
	assert.Equal(t, models.BucketAllocation{}, buckets)
	assert.Equal(t, 0.0, total)
	assert.Equal(t, models.Metrics{}, ComputeMetrics(overflowingHoldings(), nil))
}

func withoutAmount(a models.RebalancingAction) models.RebalancingAction {
	a.Amount = 0
	return a
}

package portfolio

import (
	"math"
	"strings"

	"folio/internal/models"

	"github.com/samber/lo"
)

const (
	// HoldEpsilon is the dollar difference below which a position is left alone.
	HoldEpsilon = 0.005
	// MinActionAmount filters out per-holding stock actions that are just noise.
	MinActionAmount = 1.0
)

// PlanBySymbol compares each target weight against the current value of
// the matching holdings. Targets are evaluated in the order given.
func PlanBySymbol(holdings []models.Holding, targets []models.Target, quotes map[string]models.Quote) []models.Recommendation {
	values := valuate(holdings, quotes)
	total := totalOf(values)
	if total <= 0 {
		return []models.Recommendation{}
	}

	res := make([]models.Recommendation, 0, len(targets))
	for _, t := range targets {
		current := lo.SumBy(values, func(v valued) float64 {
			if strings.EqualFold(strings.TrimSpace(v.holding.Symbol), strings.TrimSpace(t.Symbol)) {
				return v.value
			}
			return 0
		})
		targetValue := t.TargetPercent / 100 * total
		diff := targetValue - current
		res = append(res, models.Recommendation{
			RebalancingAction: models.RebalancingAction{
				Action: actionFor(diff),
				Target: t.Symbol,
				Amount: math.Abs(diff),
			},
			CurrentValue:   current,
			TargetValue:    targetValue,
			CurrentPercent: current / total * 100,
			TargetPercent:  t.TargetPercent,
			Difference:     diff,
		})
	}
	return res
}

func actionFor(diff float64) models.Action {
	switch {
	case diff > HoldEpsilon:
		return models.Buy
	case diff < -HoldEpsilon:
		return models.Sell
	}
	return models.Hold
}

type PlanOptions struct {
	// DecomposeSells spreads a stock sell across the stock positions the
	// same way buys are spread. Off by default: sells are emitted as one
	// aggregate "Stocks" action.
	DecomposeSells bool
}

// PlanByModel derives the trades that move a stocks/bonds/cash split onto
// the model. Stock buys are distributed across the existing stock
// positions by their share of total stock value; bonds and cash are always
// a single aggregate action. Actions are ordered stocks, bonds, cash.
func PlanByModel(current models.BucketAllocation, model models.Model, totalValue float64, stocks []models.Position, opts PlanOptions) []models.RebalancingAction {
	actions := []models.RebalancingAction{}
	if !(totalValue > 0) || math.IsInf(totalValue, 0) {
		return actions
	}

	stockDiff := (model.Stocks - current.Stocks) / 100 * totalValue
	switch {
	case stockDiff > HoldEpsilon:
		actions = append(actions, distribute(models.Buy, stockDiff, stocks)...)
	case stockDiff < -HoldEpsilon:
		if opts.DecomposeSells {
			actions = append(actions, distribute(models.Sell, -stockDiff, stocks)...)
		} else {
			actions = append(actions, models.RebalancingAction{Action: models.Sell, Target: models.Stock.DisplayName(), Amount: -stockDiff})
		}
	}

	if a, ok := bucketAction(models.Bond.DisplayName(), (model.Bonds-current.Bonds)/100*totalValue); ok {
		actions = append(actions, a)
	}
	if a, ok := bucketAction(models.Cash.DisplayName(), (model.Cash-current.Cash)/100*totalValue); ok {
		actions = append(actions, a)
	}
	return actions
}

func bucketAction(name string, diff float64) (models.RebalancingAction, bool) {
	if math.Abs(diff) <= HoldEpsilon {
		return models.RebalancingAction{}, false
	}
	return models.RebalancingAction{Action: actionFor(diff), Target: name, Amount: math.Abs(diff)}, true
}

// distribute splits amount across positions by their share of the summed
// position value, in position order. Shares at or under MinActionAmount
// are dropped. With no valued positions the whole amount is one aggregate
// "Stocks" action.
func distribute(action models.Action, amount float64, positions []models.Position) []models.RebalancingAction {
	valuedPositions := lo.Filter(positions, func(p models.Position, _ int) bool { return sanitize(p.Value) > 0 })
	sum := lo.SumBy(valuedPositions, func(p models.Position) float64 { return p.Value })
	if sum <= 0 {
		return []models.RebalancingAction{{Action: action, Target: models.Stock.DisplayName(), Amount: amount}}
	}
	res := []models.RebalancingAction{}
	for _, p := range valuedPositions {
		share := amount * p.Value / sum
		if share > MinActionAmount {
			res = append(res, models.RebalancingAction{Action: action, Target: p.Symbol, Amount: share})
		}
	}
	return res
}

// CurrentBuckets folds holdings into the coarse stocks/bonds/cash split used
// by the model planner. Classes other than bonds and cash count as stocks.
// It also returns the valued stock positions and the portfolio total.
func CurrentBuckets(holdings []models.Holding, quotes map[string]models.Quote) (models.BucketAllocation, []models.Position, float64) {
	values := valuate(holdings, quotes)
	total := totalOf(values)

	var stocksValue, bondsValue, cashValue float64
	positions := []models.Position{}
	for _, v := range values {
		switch v.class {
		case models.Bond:
			bondsValue += v.value
		case models.Cash:
			cashValue += v.value
		default:
			stocksValue += v.value
			if v.class == models.Stock {
				positions = append(positions, models.Position{Symbol: v.holding.Symbol, Value: v.value})
			}
		}
	}
	if total <= 0 {
		return models.BucketAllocation{}, positions, 0
	}
	return models.BucketAllocation{
		Stocks: stocksValue / total * 100,
		Bonds:  bondsValue / total * 100,
		Cash:   cashValue / total * 100,
	}, positions, total
}

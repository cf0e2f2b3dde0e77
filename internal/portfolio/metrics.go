package portfolio

import (
	"math"

	"folio/internal/models"

	"github.com/samber/lo"
)

// ComputeMetrics summarises concentration. The diversification score is
// 1 minus the Herfindahl-Hirschman index of holding weights.
func ComputeMetrics(holdings []models.Holding, quotes map[string]models.Quote) models.Metrics {
	values := valuate(holdings, quotes)
	total := totalOf(values)
	if total <= 0 {
		return models.Metrics{}
	}

	hhi := lo.SumBy(values, func(v valued) float64 {
		w := v.value / total
		return w * w
	})
	largest := lo.MaxBy(values, func(a, b valued) bool { return a.value > b.value })

	return models.Metrics{
		TotalValue:           total,
		NumHoldings:          len(values),
		LargestHolding:       largest.holding.Symbol,
		DiversificationScore: math.Round((1-hhi)*1000) / 1000,
	}
}

// DayChange is the move since previous close across tradable holdings that
// have a quote.
func DayChange(holdings []models.Holding, quotes map[string]models.Quote) models.Change {
	var current, previous float64
	for _, h := range holdings {
		q := quoteFor(quotes, h.Symbol)
		if q == nil || !Classify(h.AssetClass).Tradable() || h.Quantity <= 0 || q.Price <= 0 {
			continue
		}
		current += sanitize(h.Quantity * q.Price)
		previous += sanitize(h.Quantity * q.PreviousClose)
	}
	change := current - previous
	pct := 0.0
	if previous != 0 {
		pct = change / previous * 100
	}
	return models.Change{Change: change, ChangePercent: pct}
}

package portfolio

import (
	"math"
	"strings"

	"folio/internal/models"

	"github.com/samber/lo"
)

// ValueOf returns the current value of a holding. A live quote only applies
// to tradable classes with a positive quantity; everything else uses the
// stored value.
func ValueOf(h models.Holding, q *models.Quote) float64 {
	if q != nil && q.Price > 0 && h.Quantity > 0 && Classify(h.AssetClass).Tradable() {
		return h.Quantity * q.Price
	}
	return h.StoredValue
}

func DisplayPrice(h models.Holding, q *models.Quote) float64 {
	if q != nil && q.Price > 0 && Classify(h.AssetClass).Tradable() {
		return q.Price
	}
	return h.StoredPrice
}

func quoteFor(quotes map[string]models.Quote, symbol string) *models.Quote {
	if quotes == nil {
		return nil
	}
	q, ok := quotes[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil
	}
	return &q
}

// sanitize clamps NaN, infinities and negatives to zero so one bad record
// cannot poison a total.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

type valued struct {
	holding models.Holding
	class   models.AssetClass
	value   float64
}

func valuate(holdings []models.Holding, quotes map[string]models.Quote) []valued {
	res := make([]valued, 0, len(holdings))
	for _, h := range holdings {
		res = append(res, valued{
			holding: h,
			class:   Classify(h.AssetClass),
			value:   sanitize(ValueOf(h, quoteFor(quotes, h.Symbol))),
		})
	}
	return res
}

// totalOf sums the valued holdings. A sum that overflows to infinity is
// reported as 0, so callers fall into their empty-portfolio branch.
func totalOf(values []valued) float64 {
	return sanitize(lo.SumBy(values, func(v valued) float64 { return v.value }))
}

// TotalValue is the sum of all holding values after quote resolution.
func TotalValue(holdings []models.Holding, quotes map[string]models.Quote) float64 {
	return totalOf(valuate(holdings, quotes))
}

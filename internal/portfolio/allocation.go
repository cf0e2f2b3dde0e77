package portfolio

import (
	"math"
	"sort"

	"folio/internal/models"

	"github.com/samber/lo"
)

const NoAssetsName = "No assets"

// Aggregate groups holdings by asset class and returns whole-number
// percentages of the portfolio total, largest first. The percentages always
// sum to 100; the rounding remainder goes to the largest entry.
func Aggregate(holdings []models.Holding, quotes map[string]models.Quote) []models.AllocationEntry {
	values := valuate(holdings, quotes)
	total := totalOf(values)
	if total == 0 {
		return []models.AllocationEntry{{Name: NoAssetsName, Class: models.Other, Percent: 100, RawValue: 0}}
	}

	byClass := lo.GroupBy(values, func(v valued) models.AssetClass { return v.class })
	entries := []models.AllocationEntry{}
	for _, c := range models.AssetClasses {
		sum := lo.SumBy(byClass[c], func(v valued) float64 { return v.value })
		if sum <= 0 {
			continue
		}
		entries = append(entries, models.AllocationEntry{
			Name:     c.DisplayName(),
			Class:    c,
			Percent:  roundHalfUp(sum / total * 100),
			RawValue: sum,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].RawValue > entries[j].RawValue })

	drift := 100 - lo.SumBy(entries, func(e models.AllocationEntry) int { return e.Percent })
	entries[0].Percent += drift
	return entries
}

// WithModelTargets copies entries and sets the target percent of the stock,
// bond and cash entries from the model.
func WithModelTargets(entries []models.AllocationEntry, model models.Model) []models.AllocationEntry {
	return lo.Map(entries, func(e models.AllocationEntry, _ int) models.AllocationEntry {
		switch {
		case e.Name == NoAssetsName:
		case e.Class == models.Stock:
			e.TargetPercent = model.Stocks
		case e.Class == models.Bond:
			e.TargetPercent = model.Bonds
		case e.Class == models.Cash:
			e.TargetPercent = model.Cash
		}
		return e
	})
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

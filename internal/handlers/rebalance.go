package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"folio/internal/models"
	"folio/internal/portfolio"

	"github.com/gin-gonic/gin"
)

// loadValuation fetches the portfolio's holdings and live quotes for its
// tradable symbols. It writes the error response itself and returns false
// on failure.
func (h *Handler) loadValuation(c *gin.Context, id int64) ([]models.Holding, map[string]models.Quote, bool) {
	ctx := c.Request.Context()
	if _, err := h.store.GetPortfolio(ctx, id); err != nil {
		h.fail(c, "portfolio", err)
		return nil, nil, false
	}
	assets, err := h.store.GetAssets(ctx, id)
	if err != nil {
		h.fail(c, "get assets", err)
		return nil, nil, false
	}
	holdings := make([]models.Holding, 0, len(assets))
	symbols := []string{}
	for _, a := range assets {
		holding := a.Holding()
		holdings = append(holdings, holding)
		if portfolio.Classify(holding.AssetClass).Tradable() {
			symbols = append(symbols, holding.Symbol)
		}
	}
	return holdings, h.quotes.QuoteMap(ctx, symbols), true
}

// fallbackSymbols lists the symbols whose quotes did not come live from the
// provider, so clients can flag approximate valuations.
func fallbackSymbols(quotes map[string]models.Quote) []string {
	res := []string{}
	for sym, q := range quotes {
		if q.IsFallback() {
			res = append(res, sym)
		}
	}
	sort.Strings(res)
	return res
}

func (h *Handler) GetAllocation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	holdings, quotes, ok := h.loadValuation(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"allocation":       portfolio.Aggregate(holdings, quotes),
		"total_value":      money(portfolio.TotalValue(holdings, quotes)),
		"day_change":       portfolio.DayChange(holdings, quotes),
		"fallback_symbols": fallbackSymbols(quotes),
	})
}

type recommendationView struct {
	Symbol            string        `json:"symbol"`
	Action            models.Action `json:"action"`
	Amount            string        `json:"amount"`
	CurrentValue      string        `json:"current_value"`
	TargetValue       string        `json:"target_value"`
	Difference        string        `json:"difference"`
	CurrentPercentage float64       `json:"current_percentage"`
	TargetPercentage  float64       `json:"target_percentage"`
}

func (h *Handler) RebalanceBySymbol(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	holdings, quotes, ok := h.loadValuation(c, id)
	if !ok {
		return
	}
	allocs, err := h.store.GetAllocations(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get allocations", err)
		return
	}
	if len(allocs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no target allocations set"})
		return
	}
	targets := make([]models.Target, 0, len(allocs))
	for _, a := range allocs {
		targets = append(targets, a.Target())
	}

	recs := portfolio.PlanBySymbol(holdings, targets, quotes)
	views := make([]recommendationView, 0, len(recs))
	for _, r := range recs {
		views = append(views, recommendationView{
			Symbol:            r.Target,
			Action:            r.Action,
			Amount:            money(r.Amount),
			CurrentValue:      money(r.CurrentValue),
			TargetValue:       money(r.TargetValue),
			Difference:        money(r.Difference),
			CurrentPercentage: r.CurrentPercent,
			TargetPercentage:  r.TargetPercent,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"recommendations":  views,
		"metrics":          portfolio.ComputeMetrics(holdings, quotes),
		"fallback_symbols": fallbackSymbols(quotes),
	})
}

type actionView struct {
	Action models.Action `json:"action"`
	Asset  string        `json:"asset"`
	Amount string        `json:"amount"`
}

func (h *Handler) RebalanceByModel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	model, found := models.LookupModel(c.Param("model"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown model"})
		return
	}
	decompose, _ := strconv.ParseBool(c.Query("decompose_sells"))

	holdings, quotes, ok := h.loadValuation(c, id)
	if !ok {
		return
	}
	current, stocks, total := portfolio.CurrentBuckets(holdings, quotes)
	actions := portfolio.PlanByModel(current, model, total, stocks, portfolio.PlanOptions{DecomposeSells: decompose})

	views := make([]actionView, 0, len(actions))
	for _, a := range actions {
		views = append(views, actionView{Action: a.Action, Asset: a.Target, Amount: money(a.Amount)})
	}
	c.JSON(http.StatusOK, gin.H{
		"model":       model,
		"total_value": money(total),
		"initial":     current,
		"rebalanced":  models.BucketAllocation{Stocks: model.Stocks, Bonds: model.Bonds, Cash: model.Cash},
		"allocation":  portfolio.WithModelTargets(portfolio.Aggregate(holdings, quotes), model),
		"actions":     views,
	})
}

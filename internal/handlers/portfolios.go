package handlers

import (
	"net/http"
	"strings"

	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/portfolio"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PortfolioRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) CreatePortfolio(c *gin.Context) {
	var req PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid post body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.store.CreatePortfolio(c.Request.Context(), req.UserID, req.Name, req.Description)
	if err != nil {
		h.fail(c, "create portfolio", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPortfolios(c *gin.Context) {
	rows, err := h.store.ListPortfolios(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, "list portfolios", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type assetView struct {
	database.Asset
	CurrentPrice float64       `json:"current_price"`
	CurrentValue float64       `json:"current_value"`
	Quote        *models.Quote `json:"quote,omitempty"`
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.store.GetPortfolio(ctx, id)
	if err != nil {
		h.fail(c, "portfolio", err)
		return
	}
	assets, err := h.store.GetAssets(ctx, id)
	if err != nil {
		h.fail(c, "get assets", err)
		return
	}
	allocs, err := h.store.GetAllocations(ctx, id)
	if err != nil {
		h.fail(c, "get allocations", err)
		return
	}

	symbols := []string{}
	for _, a := range assets {
		if portfolio.Classify(a.AssetType).Tradable() {
			symbols = append(symbols, a.Symbol)
		}
	}
	quotes := h.quotes.QuoteMap(ctx, symbols)

	views := make([]assetView, 0, len(assets))
	for _, a := range assets {
		v := assetView{Asset: a}
		holding := a.Holding()
		if q, ok := quotes[strings.ToUpper(strings.TrimSpace(a.Symbol))]; ok && portfolio.Classify(a.AssetType).Tradable() {
			v.Quote = &q
		}
		v.CurrentPrice = portfolio.DisplayPrice(holding, v.Quote)
		v.CurrentValue = portfolio.ValueOf(holding, v.Quote)
		views = append(views, v)
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": p, "assets": views, "allocations": allocs})
}

type PortfolioUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) UpdatePortfolio(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req PortfolioUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid put body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == nil && req.Description == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name or description is required"})
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
		return
	}
	p, err := h.store.UpdatePortfolio(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		h.fail(c, "portfolio", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePortfolio(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeletePortfolio(c.Request.Context(), id); err != nil {
		h.fail(c, "portfolio", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type AssetRequest struct {
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name"`
	AssetType string           `json:"asset_type"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
	Value     *decimal.Decimal `json:"value"`
}

func (r AssetRequest) validate() string {
	for name, d := range map[string]*decimal.Decimal{"quantity": r.Quantity, "price": r.Price, "value": r.Value} {
		if d != nil && d.IsNegative() {
			return name + " must not be negative"
		}
	}
	return ""
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func (h *Handler) CreateAsset(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid post body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	a, err := h.store.CreateAsset(c.Request.Context(), id, database.NewAsset{
		Symbol:    strings.TrimSpace(req.Symbol),
		Name:      req.Name,
		AssetType: req.AssetType,
		Quantity:  orZero(req.Quantity),
		Price:     orZero(req.Price),
		Value:     req.Value,
	})
	if err != nil {
		h.fail(c, "portfolio", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAsset(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid put body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	u := database.AssetUpdate{Quantity: req.Quantity, Price: req.Price, Value: req.Value}
	if req.Symbol != "" {
		u.Symbol = &req.Symbol
	}
	if req.Name != "" {
		u.Name = &req.Name
	}
	if req.AssetType != "" {
		u.AssetType = &req.AssetType
	}
	a, err := h.store.UpdateAsset(c.Request.Context(), id, u)
	if err != nil {
		h.fail(c, "asset", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAsset(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteAsset(c.Request.Context(), id); err != nil {
		h.fail(c, "asset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type AllocationRequest struct {
	Symbol           string           `json:"symbol" binding:"required"`
	TargetPercentage *decimal.Decimal `json:"target_percentage"`
	AssetType        string           `json:"asset_type"`
}

func (h *Handler) UpsertAllocation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetPercentage == nil {
		h.log.Warnf("invalid post body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and target_percentage are required"})
		return
	}
	pct := *req.TargetPercentage
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_percentage must be between 0 and 100"})
		return
	}
	a, created, err := h.store.UpsertTarget(c.Request.Context(), id, strings.TrimSpace(req.Symbol), pct, req.AssetType)
	if err != nil {
		h.fail(c, "portfolio", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, a)
}

func (h *Handler) DeleteAllocation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteTarget(c.Request.Context(), id); err != nil {
		h.fail(c, "allocation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"folio/internal/database"
	"folio/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Store interface {
	CreatePortfolio(ctx context.Context, userID, name, description string) (database.Portfolio, error)
	GetPortfolio(ctx context.Context, id int64) (database.Portfolio, error)
	ListPortfolios(ctx context.Context, userID string) ([]database.Portfolio, error)
	UpdatePortfolio(ctx context.Context, id int64, name, description *string) (database.Portfolio, error)
	DeletePortfolio(ctx context.Context, id int64) error
	GetAssets(ctx context.Context, portfolioID int64) ([]database.Asset, error)
	CreateAsset(ctx context.Context, portfolioID int64, in database.NewAsset) (database.Asset, error)
	UpdateAsset(ctx context.Context, id int64, u database.AssetUpdate) (database.Asset, error)
	DeleteAsset(ctx context.Context, id int64) error
	GetAllocations(ctx context.Context, portfolioID int64) ([]database.Allocation, error)
	UpsertTarget(ctx context.Context, portfolioID int64, symbol string, pct decimal.Decimal, assetType string) (database.Allocation, bool, error)
	DeleteTarget(ctx context.Context, id int64) error
}

type Quotes interface {
	GetQuotes(ctx context.Context, symbols []string) []models.Quote
	QuoteMap(ctx context.Context, symbols []string) map[string]models.Quote
}

type Handler struct {
	store  Store
	quotes Quotes
	log    *logrus.Logger
}

func NewHandler(s Store, q Quotes, log *logrus.Logger) *Handler {
	return &Handler{store: s, quotes: q, log: log}
}

func (h *Handler) Register(rg gin.IRouter) {
	rg.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	rg.GET("/models", h.GetModels)
	rg.GET("/quotes", h.GetQuotes)

	rg.POST("/portfolios", h.CreatePortfolio)
	rg.GET("/users/:userId/portfolios", h.ListPortfolios)
	rg.GET("/portfolios/:id", h.GetPortfolio)
	rg.PUT("/portfolios/:id", h.UpdatePortfolio)
	rg.DELETE("/portfolios/:id", h.DeletePortfolio)

	rg.POST("/portfolios/:id/assets", h.CreateAsset)
	rg.PUT("/assets/:id", h.UpdateAsset)
	rg.DELETE("/assets/:id", h.DeleteAsset)

	rg.POST("/portfolios/:id/allocations", h.UpsertAllocation)
	rg.DELETE("/allocations/:id", h.DeleteAllocation)

	rg.GET("/portfolios/:id/allocation", h.GetAllocation)
	rg.GET("/portfolios/:id/rebalance", h.RebalanceBySymbol)
	rg.GET("/portfolios/:id/rebalance/:model", h.RebalanceByModel)
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// fail maps store errors onto responses. Not found is a 404, anything else
// is logged and reported as a 500.
func (h *Handler) fail(c *gin.Context, what string, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	h.log.Errorf("%s failed: %v", what, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func (h *Handler) GetModels(c *gin.Context) {
	c.JSON(http.StatusOK, models.Models)
}

func (h *Handler) GetQuotes(c *gin.Context) {
	symbols := []string{}
	for _, s := range strings.Split(c.Query("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols is required"})
		return
	}
	c.JSON(http.StatusOK, h.quotes.GetQuotes(c.Request.Context(), symbols))
}

package main

import (
	"context"
	"fmt"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/portfolio"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type seedAsset struct {
	symbol, name, assetType string
	quantity, price         string
	// value is used for classes held as a dollar amount
	value string
}

var demoAssets = []seedAsset{
	{symbol: "AAPL", name: "Apple Inc.", assetType: "stock", quantity: "50", price: "190.25"},
	{symbol: "MSFT", name: "Microsoft Corp.", assetType: "stock", quantity: "20", price: "410.10"},
	{symbol: "VTI", name: "Vanguard Total Stock Market ETF", assetType: "etf", quantity: "15", price: "255.80"},
	{symbol: "BND", name: "Vanguard Total Bond Market ETF", assetType: "bond", quantity: "80", price: "72.40"},
	{symbol: "BTC-USD", name: "Bitcoin", assetType: "crypto", quantity: "0.05", price: "61000"},
	{symbol: "USD", name: "Cash reserve", assetType: "cash", value: "5000"},
}

var demoTargets = []struct{ symbol, pct, assetType string }{
	{"AAPL", "30", "stock"},
	{"MSFT", "20", "stock"},
	{"BND", "30", "bond"},
	{"USD", "20", "cash"},
}

func main() {
	logger := logrus.New()
	cfg := config.Load(logger)
	if cfg.PostgresURL == "" {
		logger.Fatal("POSTGRES_URL is required")
	}

	db, err := sqlx.Connect("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	r := database.New(db, logger)
	userID := "demo-user"

	if err := r.EnsureUserExists(ctx, userID, "Demo user"); err != nil {
		logger.Fatalf("could not create user: %v", err)
	}
	p, err := r.CreatePortfolio(ctx, userID, "Demo portfolio", "Seeded sample holdings")
	if err != nil {
		logger.Fatalf("could not create portfolio: %v", err)
	}
	fmt.Printf("Seeding portfolio %d for %s...\n", p.ID, userID)

	for _, a := range demoAssets {
		in := database.NewAsset{Symbol: a.symbol, Name: a.name, AssetType: a.assetType, Quantity: decimal.NewFromInt(1)}
		if a.value != "" {
			v := decimal.RequireFromString(a.value)
			in.Value = &v
		} else {
			in.Quantity = decimal.RequireFromString(a.quantity)
			in.Price = decimal.RequireFromString(a.price)
		}
		if _, err := r.CreateAsset(ctx, p.ID, in); err != nil {
			fmt.Printf("Warning: could not insert asset %s: %v\n", a.symbol, err)
		}
	}

	for _, t := range demoTargets {
		if _, _, err := r.UpsertTarget(ctx, p.ID, t.symbol, decimal.RequireFromString(t.pct), t.assetType); err != nil {
			fmt.Printf("Warning: could not set target for %s: %v\n", t.symbol, err)
		}
	}

	// Summarize at stored prices; the server values tradables at live quotes.
	holdings, err := r.GetHoldings(ctx, p.ID)
	if err != nil {
		logger.Fatalf("could not read back holdings: %v", err)
	}
	targets, err := r.GetTargets(ctx, p.ID)
	if err != nil {
		logger.Fatalf("could not read back targets: %v", err)
	}
	for _, e := range portfolio.Aggregate(holdings, nil) {
		fmt.Printf("  %-12s %3d%%  %s\n", e.Name, e.Percent, decimal.NewFromFloat(e.RawValue).StringFixed(2))
	}
	for _, rec := range portfolio.PlanBySymbol(holdings, targets, nil) {
		fmt.Printf("  %-5s %-8s %s\n", rec.Action, rec.Target, decimal.NewFromFloat(rec.Amount).StringFixed(2))
	}

	fmt.Println("Successfully seeded demo portfolio!")
	fmt.Printf("Now open: http://localhost:%s/portfolios/%d/allocation\n", cfg.Port, p.ID)
}

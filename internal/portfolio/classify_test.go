package portfolio

import (
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]models.AssetClass{
		"":                 models.Stock,
		"stock":            models.Stock,
		"STOCKS":           models.Stock,
		"  Stock ":         models.Stock,
		"bond":             models.Bond,
		"Bonds":            models.Bond,
		"crypto":           models.Crypto,
		"Cryptocurrency":   models.Crypto,
		"cryptocurrencies": models.Crypto,
		"ETF":              models.ETF,
		"etfs":             models.ETF,
		"cash":             models.Cash,
		"Currency":         models.Cash,
		"Real Estate":      models.RealEstate,
		"realestate":       models.RealEstate,
		"commodity":        models.Other,
		"real-estate":      models.Other,
	}
	for in, want := range cases {
		assert.Equal(t, want, Classify(in), "classify(%q)", in)
	}
}

func TestClassify_StockSynonymsAgree(t *testing.T) {
	assert.Equal(t, Classify("stock"), Classify("STOCKS"))
	assert.Equal(t, Classify(""), Classify("stock"))
}

func TestDisplayNames(t *testing.T) {
	names := []string{}
	for _, c := range models.AssetClasses {
		names = append(names, c.DisplayName())
	}
	assert.Equal(t, []string{"Stocks", "Bonds", "Crypto", "ETF", "Cash", "Real Estate", "Other"}, names)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"folio/internal/models"
)

var ErrNoQuoteData = errors.New("no quote data")

// YahooProvider reads quotes from the Yahoo Finance chart endpoint. No API
// key is required.
type YahooProvider struct {
	baseURL string
	client  *http.Client
}

func NewYahooProvider(baseURL string, timeout time.Duration) *YahooProvider {
	return &YahooProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta *struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

func (p *YahooProvider) Fetch(ctx context.Context, symbol string) (models.Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", p.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Quote{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return models.Quote{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Quote{}, fmt.Errorf("fetch %s: status %d", symbol, resp.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Quote{}, fmt.Errorf("decode %s: %w", symbol, err)
	}
	if len(body.Chart.Result) == 0 || body.Chart.Result[0].Meta == nil {
		return models.Quote{}, fmt.Errorf("%s: %w", symbol, ErrNoQuoteData)
	}
	meta := body.Chart.Result[0].Meta

	prevClose := meta.PreviousClose
	if prevClose == 0 {
		prevClose = meta.ChartPreviousClose
	}
	price := meta.RegularMarketPrice
	if price == 0 {
		price = prevClose
	}
	if price <= 0 {
		return models.Quote{}, fmt.Errorf("%s: %w", symbol, ErrNoQuoteData)
	}
	if prevClose == 0 {
		prevClose = price
	}
	change := price - prevClose
	changePct := 0.0
	if prevClose != 0 {
		changePct = change / prevClose * 100
	}

	return models.Quote{
		Symbol:        strings.ToUpper(symbol),
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		PreviousClose: prevClose,
		FetchedAt:     time.Now().UTC(),
		Source:        models.QuoteLive,
	}, nil
}

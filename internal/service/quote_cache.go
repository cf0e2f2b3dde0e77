package service

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"folio/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultQuoteTTL = 60 * time.Second

type QuoteProvider interface {
	Fetch(ctx context.Context, symbol string) (models.Quote, error)
}

// QuoteStore persists fetched quotes so a failed fetch can fall back to the
// last known price.
type QuoteStore interface {
	SaveQuote(ctx context.Context, q models.Quote) error
	LatestQuote(ctx context.Context, symbol string) (models.Quote, error)
	TradableSymbols(ctx context.Context) ([]string, error)
}

type cacheEntry struct {
	quote    models.Quote
	cachedAt time.Time
}

// QuoteCache is a time-bounded cache in front of a QuoteProvider. It never
// fails: when the provider does, the caller gets the last stored quote or a
// synthetic placeholder, tagged through Quote.Source.
type QuoteCache struct {
	provider    QuoteProvider
	store       QuoteStore
	log         *logrus.Logger
	ttl         time.Duration
	staleMaxAge time.Duration
	concurrency int
	now         func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry

	rndMu sync.Mutex
	rnd   *rand.Rand
}

type Option func(*QuoteCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *QuoteCache) { c.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(c *QuoteCache) { c.now = now }
}

func WithStore(s QuoteStore, maxAge time.Duration) Option {
	return func(c *QuoteCache) {
		c.store = s
		c.staleMaxAge = maxAge
	}
}

func WithRand(r *rand.Rand) Option {
	return func(c *QuoteCache) { c.rnd = r }
}

func WithConcurrency(n int) Option {
	return func(c *QuoteCache) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func NewQuoteCache(p QuoteProvider, log *logrus.Logger, opts ...Option) *QuoteCache {
	c := &QuoteCache{
		provider:    p,
		log:         log,
		ttl:         DefaultQuoteTTL,
		concurrency: 8,
		now:         time.Now,
		entries:     make(map[string]cacheEntry),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (c *QuoteCache) cached(key string) (models.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.cachedAt) >= c.ttl {
		return models.Quote{}, false
	}
	return e.quote, true
}

// GetQuote returns the quote for symbol, fetching it only when the cached
// entry is missing or older than the TTL. Two concurrent misses for the same
// symbol may both fetch.
func (c *QuoteCache) GetQuote(ctx context.Context, symbol string) models.Quote {
	key := normalize(symbol)
	if q, ok := c.cached(key); ok {
		return q
	}
	return c.fetch(ctx, key)
}

func (c *QuoteCache) fetch(ctx context.Context, key string) models.Quote {
	q, err := c.provider.Fetch(ctx, key)
	if err != nil {
		c.log.Warnf("quote fetch for %s failed: %v", key, err)
		return c.fallback(ctx, key)
	}
	q.Symbol = key
	q.Source = models.QuoteLive
	if q.FetchedAt.IsZero() {
		q.FetchedAt = c.now().UTC()
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{quote: q, cachedAt: c.now()}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveQuote(ctx, q); err != nil {
			c.log.Warnf("save quote %s: %v", key, err)
		}
	}
	return q
}

// fallback is not cached so the next request retries the provider.
func (c *QuoteCache) fallback(ctx context.Context, key string) models.Quote {
	if c.store != nil {
		q, err := c.store.LatestQuote(ctx, key)
		if err == nil && q.Price > 0 && c.now().Sub(q.FetchedAt) < c.staleMaxAge {
			q.Symbol = key
			q.Source = models.QuoteStale
			return q
		}
	}
	return c.synthetic(key)
}

func (c *QuoteCache) synthetic(key string) models.Quote {
	c.rndMu.Lock()
	price := 100 + (c.rnd.Float64()-0.5)*20
	change := (c.rnd.Float64() - 0.5) * 5
	c.rndMu.Unlock()

	return models.Quote{
		Symbol:        key,
		Price:         price,
		Change:        change,
		ChangePercent: change / price * 100,
		PreviousClose: price - change,
		FetchedAt:     c.now().UTC(),
		Source:        models.QuoteSynthetic,
	}
}

// GetQuotes fetches all symbols concurrently and returns the quotes in the
// same order. It only returns once every symbol is resolved.
func (c *QuoteCache) GetQuotes(ctx context.Context, symbols []string) []models.Quote {
	res := make([]models.Quote, len(symbols))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, s := range symbols {
		i, s := i, s
		g.Go(func() error {
			res[i] = c.GetQuote(ctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return res
}

// QuoteMap resolves symbols into a map keyed by upper-cased symbol, the
// shape the allocation engine looks quotes up in.
func (c *QuoteCache) QuoteMap(ctx context.Context, symbols []string) map[string]models.Quote {
	uniq := []string{}
	seen := map[string]bool{}
	for _, s := range symbols {
		k := normalize(s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		uniq = append(uniq, k)
	}
	res := make(map[string]models.Quote, len(uniq))
	for i, q := range c.GetQuotes(ctx, uniq) {
		res[uniq[i]] = q
	}
	return res
}

// Refresh fetches symbols from the provider regardless of cache age.
func (c *QuoteCache) Refresh(ctx context.Context, symbols []string) {
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for _, s := range symbols {
		key := normalize(s)
		g.Go(func() error {
			c.fetch(ctx, key)
			return nil
		})
	}
	_ = g.Wait()
}

// Start refreshes every tradable symbol in the store on each interval
// until ctx is cancelled.
func (c *QuoteCache) Start(ctx context.Context, interval time.Duration) {
	if c.store == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.log.Info("quote refresher stopping")
				return
			case <-ticker.C:
				symbols, err := c.store.TradableSymbols(ctx)
				if err != nil {
					c.log.Warnf("failed to fetch symbols: %v", err)
					continue
				}
				c.Refresh(ctx, symbols)
				c.log.Debugf("refreshed %d quotes", len(symbols))
			}
		}
	}()
}

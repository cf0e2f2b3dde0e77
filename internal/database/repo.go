package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"folio/internal/models"
	"folio/internal/portfolio"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("not found")

type Repo struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func New(db *sqlx.DB, log *logrus.Logger) *Repo {
	return &Repo{db: db, log: log}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		// foreign key violation: the parent portfolio does not exist
		return ErrNotFound
	}
	return err
}

// EnsureUserExists creates the user if missing. A non-empty name replaces
// the stored one.
func (r *Repo) EnsureUserExists(ctx context.Context, userID, name string) error {
	return ensureUser(ctx, r.db, userID, name)
}

func ensureUser(ctx context.Context, ex sqlx.ExecerContext, userID, name string) error {
	_, err := ex.ExecContext(ctx, `INSERT INTO users (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name WHERE EXCLUDED.name <> ''`, userID, name)
	return err
}

const portfolioSelect = `SELECT p.id, p.user_id, p.name, p.description, p.created_at, p.updated_at,
	COALESCE((SELECT SUM(a.value) FROM assets a WHERE a.portfolio_id = p.id), 0) AS total_value
	FROM portfolios p`

func (r *Repo) CreatePortfolio(ctx context.Context, userID, name, description string) (Portfolio, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Portfolio{}, err
	}
	defer tx.Rollback()

	if err := ensureUser(ctx, tx, userID, ""); err != nil {
		return Portfolio{}, err
	}
	var p Portfolio
	q := `INSERT INTO portfolios (user_id, name, description) VALUES ($1, $2, $3) RETURNING id, user_id, name, description, created_at, updated_at`
	if err := tx.QueryRowxContext(ctx, q, userID, name, description).StructScan(&p); err != nil {
		return Portfolio{}, err
	}
	p.TotalValue = decimal.Zero
	return p, tx.Commit()
}

func (r *Repo) GetPortfolio(ctx context.Context, id int64) (Portfolio, error) {
	var p Portfolio
	if err := r.db.GetContext(ctx, &p, portfolioSelect+` WHERE p.id = $1`, id); err != nil {
		return Portfolio{}, notFound(err)
	}
	return p, nil
}

func (r *Repo) ListPortfolios(ctx context.Context, userID string) ([]Portfolio, error) {
	rows, err := r.db.QueryxContext(ctx, portfolioSelect+` WHERE p.user_id = $1 ORDER BY p.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Portfolio{}
	for rows.Next() {
		var p Portfolio
		if err := rows.StructScan(&p); err != nil {
			r.log.Warnf("scan portfolio failed: %v", err)
			continue
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// UpdatePortfolio applies the non-nil, non-empty name and any non-nil
// description.
func (r *Repo) UpdatePortfolio(ctx context.Context, id int64, name, description *string) (Portfolio, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Portfolio{}, err
	}
	defer tx.Rollback()

	var cur struct {
		Name        string `db:"name"`
		Description string `db:"description"`
	}
	if err := tx.GetContext(ctx, &cur, `SELECT name, description FROM portfolios WHERE id = $1 FOR UPDATE`, id); err != nil {
		return Portfolio{}, notFound(err)
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		cur.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		cur.Description = *description
	}
	if _, err := tx.ExecContext(ctx, `UPDATE portfolios SET name = $1, description = $2, updated_at = now() WHERE id = $3`, cur.Name, cur.Description, id); err != nil {
		return Portfolio{}, err
	}

	var p Portfolio
	if err := tx.GetContext(ctx, &p, portfolioSelect+` WHERE p.id = $1`, id); err != nil {
		return Portfolio{}, err
	}
	return p, tx.Commit()
}

func (r *Repo) DeletePortfolio(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const assetColumns = `id, portfolio_id, symbol, name, asset_type, quantity, price, value, created_at, updated_at`

func (r *Repo) GetAssets(ctx context.Context, portfolioID int64) ([]Asset, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE portfolio_id = $1 ORDER BY id ASC`, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Asset{}
	for rows.Next() {
		var a Asset
		if err := rows.StructScan(&a); err != nil {
			r.log.Warnf("scan asset failed: %v", err)
			continue
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// GetHoldings returns the portfolio's assets as engine holdings, in
// insertion order.
func (r *Repo) GetHoldings(ctx context.Context, portfolioID int64) ([]models.Holding, error) {
	assets, err := r.GetAssets(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	res := make([]models.Holding, 0, len(assets))
	for _, a := range assets {
		res = append(res, a.Holding())
	}
	return res, nil
}

func (r *Repo) CreateAsset(ctx context.Context, portfolioID int64, in NewAsset) (Asset, error) {
	value := in.Quantity.Mul(in.Price)
	if in.Value != nil {
		value = *in.Value
	}
	assetType := in.AssetType
	if strings.TrimSpace(assetType) == "" {
		assetType = "stock"
	}
	name := in.Name
	if name == "" {
		name = in.Symbol
	}

	var a Asset
	q := `INSERT INTO assets (portfolio_id, symbol, name, asset_type, quantity, price, value)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric) RETURNING ` + assetColumns
	err := r.db.QueryRowxContext(ctx, q, portfolioID, in.Symbol, name, assetType,
		in.Quantity.String(), in.Price.String(), value.StringFixed(4)).StructScan(&a)
	if err != nil {
		return Asset{}, notFound(err)
	}
	return a, nil
}

// UpdateAsset recomputes value from quantity and price when either changes
// and no explicit value is given.
func (r *Repo) UpdateAsset(ctx context.Context, id int64, u AssetUpdate) (Asset, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Asset{}, err
	}
	defer tx.Rollback()

	var a Asset
	if err := tx.QueryRowxContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1 FOR UPDATE`, id).StructScan(&a); err != nil {
		return Asset{}, notFound(err)
	}

	if u.Symbol != nil && *u.Symbol != "" {
		a.Symbol = *u.Symbol
	}
	if u.Name != nil && *u.Name != "" {
		a.Name = *u.Name
	}
	if u.AssetType != nil && *u.AssetType != "" {
		a.AssetType = *u.AssetType
	}
	if u.Quantity != nil {
		a.Quantity = *u.Quantity
	}
	if u.Price != nil {
		a.Price = *u.Price
	}
	switch {
	case u.Value != nil:
		a.Value = *u.Value
	case u.Quantity != nil || u.Price != nil:
		a.Value = a.Quantity.Mul(a.Price)
	}

	q := `UPDATE assets SET symbol = $1, name = $2, asset_type = $3, quantity = $4::numeric, price = $5::numeric,
		value = $6::numeric, updated_at = now() WHERE id = $7 RETURNING ` + assetColumns
	if err := tx.QueryRowxContext(ctx, q, a.Symbol, a.Name, a.AssetType, a.Quantity.String(), a.Price.String(), a.Value.StringFixed(4), id).StructScan(&a); err != nil {
		return Asset{}, err
	}
	return a, tx.Commit()
}

func (r *Repo) DeleteAsset(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

const allocationColumns = `id, portfolio_id, symbol, target_percentage, asset_type, created_at, updated_at`

func (r *Repo) GetAllocations(ctx context.Context, portfolioID int64) ([]Allocation, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT `+allocationColumns+` FROM asset_allocations WHERE portfolio_id = $1 ORDER BY id ASC`, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Allocation{}
	for rows.Next() {
		var a Allocation
		if err := rows.StructScan(&a); err != nil {
			r.log.Warnf("scan allocation failed: %v", err)
			continue
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *Repo) GetTargets(ctx context.Context, portfolioID int64) ([]models.Target, error) {
	allocs, err := r.GetAllocations(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	res := make([]models.Target, 0, len(allocs))
	for _, a := range allocs {
		res = append(res, a.Target())
	}
	return res, nil
}

// UpsertTarget sets the target weight of a symbol. The bool reports whether
// a new row was created.
func (r *Repo) UpsertTarget(ctx context.Context, portfolioID int64, symbol string, pct decimal.Decimal, assetType string) (Allocation, bool, error) {
	if strings.TrimSpace(assetType) == "" {
		assetType = "stock"
	}
	var row struct {
		Allocation
		Inserted bool `db:"inserted"`
	}
	q := `INSERT INTO asset_allocations (portfolio_id, symbol, target_percentage, asset_type)
		VALUES ($1, $2, $3::numeric, $4)
		ON CONFLICT (portfolio_id, symbol) DO UPDATE
		SET target_percentage = EXCLUDED.target_percentage, asset_type = EXCLUDED.asset_type, updated_at = now()
		RETURNING ` + allocationColumns + `, (xmax = 0) AS inserted`
	if err := r.db.QueryRowxContext(ctx, q, portfolioID, symbol, pct.String(), assetType).StructScan(&row); err != nil {
		return Allocation{}, false, notFound(err)
	}
	return row.Allocation, row.Inserted, nil
}

func (r *Repo) DeleteTarget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM asset_allocations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *Repo) SaveQuote(ctx context.Context, q models.Quote) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO quote_history (symbol, price, previous_close, change_percent, fetched_at) VALUES ($1, $2::numeric, $3::numeric, $4::numeric, $5)`,
		q.Symbol,
		decimal.NewFromFloat(q.Price).StringFixed(8),
		decimal.NewFromFloat(q.PreviousClose).StringFixed(8),
		decimal.NewFromFloat(q.ChangePercent).StringFixed(6),
		q.FetchedAt)
	return err
}

func (r *Repo) LatestQuote(ctx context.Context, symbol string) (models.Quote, error) {
	var row quoteRow
	err := r.db.GetContext(ctx, &row, `SELECT symbol, price, previous_close, change_percent, fetched_at FROM quote_history WHERE symbol = $1 ORDER BY fetched_at DESC LIMIT 1`, symbol)
	if err != nil {
		return models.Quote{}, notFound(err)
	}
	price := row.Price.InexactFloat64()
	prev := row.PreviousClose.InexactFloat64()
	return models.Quote{
		Symbol:        row.Symbol,
		Price:         price,
		Change:        price - prev,
		ChangePercent: row.ChangePercent.InexactFloat64(),
		PreviousClose: prev,
		FetchedAt:     row.FetchedAt,
		Source:        models.QuoteStale,
	}, nil
}

// TradableSymbols lists the distinct symbols of all tradable assets across
// portfolios, upper-cased.
func (r *Repo) TradableSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT DISTINCT upper(symbol), asset_type FROM assets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seen := map[string]bool{}
	res := []string{}
	for rows.Next() {
		var sym, assetType string
		if err := rows.Scan(&sym, &assetType); err != nil {
			r.log.Warnf("scan symbol failed: %v", err)
			continue
		}
		if seen[sym] || !portfolio.Classify(assetType).Tradable() {
			continue
		}
		seen[sym] = true
		res = append(res, sym)
	}
	return res, rows.Err()
}

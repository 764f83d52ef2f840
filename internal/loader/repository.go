package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finlens/backend/internal/contracts"
	"github.com/finlens/backend/internal/derive"
)

// Repository implements contracts.SnapshotSource over Postgres. One row
// per entity/period in analytics.snapshots; nullable numeric columns map
// onto undefined metrics.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository over an existing pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const snapshotColumns = `
	entity_id, company_name, year, season, currency, unit,
	cash_and_equivalents, accounts_receivable, inventory,
	current_assets, current_liabilities, total_assets, total_liabilities,
	equity, short_term_debt, long_term_debt, retained_earnings,
	net_revenue, gross_profit, operating_income, net_income, eps,
	operating_cash_flow, investing_cash_flow, financing_cash_flow`

// Load retrieves one entity/period row; nil when absent.
func (r *Repository) Load(ctx context.Context, entityID string, period contracts.Period) (*contracts.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM analytics.snapshots
		WHERE entity_id = $1 AND year = $2 AND season = $3
	`

	s, err := scanSnapshot(r.pool.QueryRow(ctx, query, entityID, period.Year, period.Season))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s/%s: %w", entityID, period, err)
	}
	return s, nil
}

// LoadSeries retrieves all rows for an entity, period ascending.
func (r *Repository) LoadSeries(ctx context.Context, entityID string) ([]*contracts.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM analytics.snapshots
		WHERE entity_id = $1
		ORDER BY year, season
	`

	rows, err := r.pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("load series %s: %w", entityID, err)
	}
	defer rows.Close()

	var snapshots []*contracts.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("load series %s: %w", entityID, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// ListEntities returns distinct entity ids.
func (r *Repository) ListEntities(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT entity_id FROM analytics.snapshots ORDER BY entity_id`)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var entities []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		entities = append(entities, id)
	}
	return entities, rows.Err()
}

// ListPeriods returns the available periods for an entity, ascending.
func (r *Repository) ListPeriods(ctx context.Context, entityID string) ([]contracts.Period, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT year, season FROM analytics.snapshots WHERE entity_id = $1 ORDER BY year, season`,
		entityID)
	if err != nil {
		return nil, fmt.Errorf("list periods %s: %w", entityID, err)
	}
	defer rows.Close()

	var periods []contracts.Period
	for rows.Next() {
		var p contracts.Period
		if err := rows.Scan(&p.Year, &p.Season); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// Save upserts one snapshot row. Undefined metrics are stored as NULL,
// never coerced to zero.
func (r *Repository) Save(ctx context.Context, s *contracts.Snapshot) error {
	query := `
		INSERT INTO analytics.snapshots (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6,
		        $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (entity_id, year, season) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			currency = EXCLUDED.currency,
			unit = EXCLUDED.unit,
			cash_and_equivalents = EXCLUDED.cash_and_equivalents,
			accounts_receivable = EXCLUDED.accounts_receivable,
			inventory = EXCLUDED.inventory,
			current_assets = EXCLUDED.current_assets,
			current_liabilities = EXCLUDED.current_liabilities,
			total_assets = EXCLUDED.total_assets,
			total_liabilities = EXCLUDED.total_liabilities,
			equity = EXCLUDED.equity,
			short_term_debt = EXCLUDED.short_term_debt,
			long_term_debt = EXCLUDED.long_term_debt,
			retained_earnings = EXCLUDED.retained_earnings,
			net_revenue = EXCLUDED.net_revenue,
			gross_profit = EXCLUDED.gross_profit,
			operating_income = EXCLUDED.operating_income,
			net_income = EXCLUDED.net_income,
			eps = EXCLUDED.eps,
			operating_cash_flow = EXCLUDED.operating_cash_flow,
			investing_cash_flow = EXCLUDED.investing_cash_flow,
			financing_cash_flow = EXCLUDED.financing_cash_flow
	`

	raw := s.Raw
	_, err := r.pool.Exec(ctx, query,
		s.EntityID, s.CompanyName, s.Period.Year, s.Period.Season, s.Currency, s.Unit,
		nullable(raw.CashAndEquivalents), nullable(raw.AccountsReceivable), nullable(raw.Inventory),
		nullable(raw.CurrentAssets), nullable(raw.CurrentLiabilities),
		nullable(raw.TotalAssets), nullable(raw.TotalLiabilities),
		nullable(raw.Equity), nullable(raw.ShortTermDebt), nullable(raw.LongTermDebt),
		nullable(raw.RetainedEarnings),
		nullable(raw.NetRevenue), nullable(raw.GrossProfit), nullable(raw.OperatingIncome),
		nullable(raw.NetIncome), nullable(raw.EPS),
		nullable(raw.OperatingCashFlow), nullable(raw.InvestingCashFlow), nullable(raw.FinancingCashFlow),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s/%s: %w", s.EntityID, s.Period, err)
	}
	return nil
}

// scanSnapshot maps one row onto a snapshot, deriving the sub-record.
func scanSnapshot(row pgx.Row) (*contracts.Snapshot, error) {
	var s contracts.Snapshot
	cols := []*contracts.Metric{
		&s.Raw.CashAndEquivalents, &s.Raw.AccountsReceivable, &s.Raw.Inventory,
		&s.Raw.CurrentAssets, &s.Raw.CurrentLiabilities,
		&s.Raw.TotalAssets, &s.Raw.TotalLiabilities,
		&s.Raw.Equity, &s.Raw.ShortTermDebt, &s.Raw.LongTermDebt,
		&s.Raw.RetainedEarnings,
		&s.Raw.NetRevenue, &s.Raw.GrossProfit, &s.Raw.OperatingIncome,
		&s.Raw.NetIncome, &s.Raw.EPS,
		&s.Raw.OperatingCashFlow, &s.Raw.InvestingCashFlow, &s.Raw.FinancingCashFlow,
	}

	values := make([]*float64, len(cols))
	dest := []interface{}{
		&s.EntityID, &s.CompanyName, &s.Period.Year, &s.Period.Season, &s.Currency, &s.Unit,
	}
	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	for i, v := range values {
		if v != nil {
			*cols[i] = contracts.Num(*v)
		}
	}
	return derive.Enrich(&s), nil
}

// nullable maps an undefined metric to SQL NULL.
func nullable(m contracts.Metric) interface{} {
	if !m.Valid {
		return nil
	}
	return m.Float64
}

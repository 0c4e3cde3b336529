package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/asset-cli/internal/db"
	"github.com/sells-group/asset-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`

	// ConnectAttempts bounds the startup ping retries; default 5.
	ConnectAttempts int `yaml:"connect_attempts" mapstructure:"connect_attempts"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	var policy retryPolicy
	if poolCfg != nil {
		policy.Attempts = poolCfg.ConnectAttempts
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := withRetry(ctx, policy, "ping", pool.Ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS operators (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	compliance_flags JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assets (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	operator_id  TEXT REFERENCES operators(id),
	commodity    TEXT NOT NULL DEFAULT 'oil',
	decline_rate DOUBLE PRECISION,
	spud_date    DATE,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS production (
	asset_id        TEXT NOT NULL REFERENCES assets(id),
	month           DATE NOT NULL,
	oil_volume_bbl  DOUBLE PRECISION,
	gas_volume_mcf  DOUBLE PRECISION,
	ore_volume_tons DOUBLE PRECISION,
	water_cut_pct   DOUBLE PRECISION,
	downtime_days   DOUBLE PRECISION,
	PRIMARY KEY (asset_id, month)
);

CREATE TABLE IF NOT EXISTS financial_estimates (
	id                       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	asset_id                 TEXT NOT NULL UNIQUE REFERENCES assets(id),
	monthly_revenue          DOUBLE PRECISION NOT NULL,
	annual_revenue           DOUBLE PRECISION NOT NULL,
	price_used               DOUBLE PRECISION NOT NULL,
	commodity                TEXT NOT NULL,
	estimated_operating_cost DOUBLE PRECISION NOT NULL,
	estimated_net_cash_flow  DOUBLE PRECISION NOT NULL,
	breakeven_price          DOUBLE PRECISION,
	price_sensitivity        DOUBLE PRECISION,
	as_of_date               TIMESTAMPTZ NOT NULL,
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_assets_operator_id ON assets(operator_id);
CREATE INDEX IF NOT EXISTS idx_production_asset_month ON production(asset_id, month DESC);
`

// Ping verifies the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertOperator(ctx context.Context, op model.Operator) error {
	flags, err := marshalFlags(op.ComplianceFlags)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal flags for operator %s", op.ID)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO operators (id, name, compliance_flags, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			compliance_flags = EXCLUDED.compliance_flags,
			updated_at = now()`,
		op.ID, op.Name, flags,
	)
	return eris.Wrapf(err, "postgres: upsert operator %s", op.ID)
}

func (s *PostgresStore) UpsertAsset(ctx context.Context, a model.Asset) error {
	var operatorID *string
	if a.OperatorID != "" {
		operatorID = &a.OperatorID
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO assets (id, name, operator_id, commodity, decline_rate, spud_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			operator_id = EXCLUDED.operator_id,
			commodity = EXCLUDED.commodity,
			decline_rate = EXCLUDED.decline_rate,
			spud_date = EXCLUDED.spud_date,
			updated_at = now()`,
		a.ID, a.Name, operatorID, string(model.NormalizeCommodity(a.Profile.Commodity)),
		a.Profile.DeclineRate, a.Profile.SpudDate,
	)
	return eris.Wrapf(err, "postgres: upsert asset %s", a.ID)
}

func (s *PostgresStore) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	var (
		a         model.Asset
		decline   *float64
		spud      *time.Time
		flagsJSON []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT a.id, a.name, COALESCE(a.operator_id, ''), COALESCE(o.name, ''),
		       a.commodity, a.decline_rate, a.spud_date,
		       COALESCE(o.compliance_flags, '[]'::jsonb)
		FROM assets a
		LEFT JOIN operators o ON o.id = a.operator_id
		WHERE a.id = $1`,
		id,
	).Scan(&a.ID, &a.Name, &a.OperatorID, &a.OperatorName, &a.Profile.Commodity, &decline, &spud, &flagsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: get asset %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get asset %s", id)
	}

	a.Profile.DeclineRate = decline
	a.Profile.SpudDate = spud
	if a.Profile.ComplianceFlags, err = unmarshalFlags(flagsJSON); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal flags for asset %s", id)
	}
	return &a, nil
}

func (s *PostgresStore) ListAssetIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM assets ORDER BY id LIMIT $1`, listLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assets")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan asset id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "postgres: list assets iterate")
}

var productionColumns = []string{
	"asset_id", "month", "oil_volume_bbl", "gas_volume_mcf",
	"ore_volume_tons", "water_cut_pct", "downtime_days",
}

func (s *PostgresStore) UpsertProduction(ctx context.Context, assetID string, samples []model.ProductionSample) (int64, error) {
	rows := make([][]any, 0, len(samples))
	for _, p := range samples {
		rows = append(rows, []any{
			assetID, model.MonthStart(p.Month), p.OilVolumeBbl, p.GasVolumeMcf,
			p.OreVolumeTons, p.WaterCutPct, p.DowntimeDays,
		})
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "production",
		Columns:      productionColumns,
		ConflictKeys: []string{"asset_id", "month"},
	}, rows)
	return n, eris.Wrapf(err, "postgres: upsert production for %s", assetID)
}

func (s *PostgresStore) ListProduction(ctx context.Context, assetID string, limit int) ([]model.ProductionSample, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT month, oil_volume_bbl, gas_volume_mcf, ore_volume_tons, water_cut_pct, downtime_days
		FROM production
		WHERE asset_id = $1
		ORDER BY month DESC
		LIMIT $2`,
		assetID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list production for %s", assetID)
	}
	defer rows.Close()

	var samples []model.ProductionSample
	for rows.Next() {
		var p model.ProductionSample
		if err := rows.Scan(&p.Month, &p.OilVolumeBbl, &p.GasVolumeMcf, &p.OreVolumeTons, &p.WaterCutPct, &p.DowntimeDays); err != nil {
			return nil, eris.Wrap(err, "postgres: scan production")
		}
		p.Month = p.Month.UTC()
		samples = append(samples, p)
	}
	return samples, eris.Wrap(rows.Err(), "postgres: list production iterate")
}

func (s *PostgresStore) GetEstimate(ctx context.Context, assetID string) (*model.FinancialEstimate, error) {
	var e model.FinancialEstimate
	var commodity string
	err := s.pool.QueryRow(ctx, `
		SELECT monthly_revenue, annual_revenue, price_used, commodity,
		       estimated_operating_cost, estimated_net_cash_flow,
		       breakeven_price, price_sensitivity, as_of_date
		FROM financial_estimates
		WHERE asset_id = $1`,
		assetID,
	).Scan(&e.MonthlyRevenue, &e.AnnualRevenue, &e.PriceUsed, &commodity,
		&e.EstimatedOperatingCost, &e.EstimatedNetCashFlow,
		&e.BreakevenPrice, &e.PriceSensitivity, &e.AsOfDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get estimate for %s", assetID)
	}
	e.Commodity = model.Commodity(commodity)
	e.AsOfDate = e.AsOfDate.UTC()
	return &e, nil
}

func (s *PostgresStore) SaveEstimate(ctx context.Context, assetID string, e model.FinancialEstimate) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO financial_estimates
			(id, asset_id, monthly_revenue, annual_revenue, price_used, commodity,
			 estimated_operating_cost, estimated_net_cash_flow,
			 breakeven_price, price_sensitivity, as_of_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (asset_id) DO UPDATE SET
			monthly_revenue = EXCLUDED.monthly_revenue,
			annual_revenue = EXCLUDED.annual_revenue,
			price_used = EXCLUDED.price_used,
			commodity = EXCLUDED.commodity,
			estimated_operating_cost = EXCLUDED.estimated_operating_cost,
			estimated_net_cash_flow = EXCLUDED.estimated_net_cash_flow,
			breakeven_price = EXCLUDED.breakeven_price,
			price_sensitivity = EXCLUDED.price_sensitivity,
			as_of_date = EXCLUDED.as_of_date`,
		uuid.New().String(), assetID, e.MonthlyRevenue, e.AnnualRevenue, e.PriceUsed, string(e.Commodity),
		e.EstimatedOperatingCost, e.EstimatedNetCashFlow,
		e.BreakevenPrice, e.PriceSensitivity, e.AsOfDate.UTC(),
	)
	return eris.Wrapf(err, "postgres: save estimate for %s", assetID)
}

func marshalFlags(flags []string) ([]byte, error) {
	if flags == nil {
		flags = []string{}
	}
	return json.Marshal(flags)
}

func unmarshalFlags(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var flags []string
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, err
	}
	if len(flags) == 0 {
		return nil, nil
	}
	return flags, nil
}

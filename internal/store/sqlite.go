package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/asset-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS operators (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	compliance_flags TEXT NOT NULL DEFAULT '[]',
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assets (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	operator_id  TEXT REFERENCES operators(id),
	commodity    TEXT NOT NULL DEFAULT 'oil',
	decline_rate REAL,
	spud_date    TEXT,
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS production (
	asset_id        TEXT NOT NULL REFERENCES assets(id),
	month           TEXT NOT NULL,
	oil_volume_bbl  REAL,
	gas_volume_mcf  REAL,
	ore_volume_tons REAL,
	water_cut_pct   REAL,
	downtime_days   REAL,
	PRIMARY KEY (asset_id, month)
);

CREATE TABLE IF NOT EXISTS financial_estimates (
	id                       TEXT PRIMARY KEY,
	asset_id                 TEXT NOT NULL UNIQUE REFERENCES assets(id),
	monthly_revenue          REAL NOT NULL,
	annual_revenue           REAL NOT NULL,
	price_used               REAL NOT NULL,
	commodity                TEXT NOT NULL,
	estimated_operating_cost REAL NOT NULL,
	estimated_net_cash_flow  REAL NOT NULL,
	breakeven_price          REAL,
	price_sensitivity        REAL,
	as_of_date               TEXT NOT NULL,
	created_at               DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_assets_operator_id ON assets(operator_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertOperator(ctx context.Context, op model.Operator) error {
	flags, err := marshalFlags(op.ComplianceFlags)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal flags for operator %s", op.ID)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO operators (id, name, compliance_flags, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			compliance_flags = excluded.compliance_flags,
			updated_at = datetime('now')`,
		op.ID, op.Name, string(flags),
	)
	return eris.Wrapf(err, "sqlite: upsert operator %s", op.ID)
}

func (s *SQLiteStore) UpsertAsset(ctx context.Context, a model.Asset) error {
	var operatorID, spud sql.NullString
	if a.OperatorID != "" {
		operatorID = sql.NullString{String: a.OperatorID, Valid: true}
	}
	if a.Profile.SpudDate != nil {
		spud = sql.NullString{String: a.Profile.SpudDate.UTC().Format(monthLayout), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (id, name, operator_id, commodity, decline_rate, spud_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			operator_id = excluded.operator_id,
			commodity = excluded.commodity,
			decline_rate = excluded.decline_rate,
			spud_date = excluded.spud_date,
			updated_at = datetime('now')`,
		a.ID, a.Name, operatorID, string(model.NormalizeCommodity(a.Profile.Commodity)),
		nullFloat(a.Profile.DeclineRate), spud,
	)
	return eris.Wrapf(err, "sqlite: upsert asset %s", a.ID)
}

func (s *SQLiteStore) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	var (
		a         model.Asset
		decline   sql.NullFloat64
		spud      sql.NullString
		flagsJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.name, COALESCE(a.operator_id, ''), COALESCE(o.name, ''),
		       a.commodity, a.decline_rate, a.spud_date,
		       COALESCE(o.compliance_flags, '[]')
		FROM assets a
		LEFT JOIN operators o ON o.id = a.operator_id
		WHERE a.id = ?`,
		id,
	).Scan(&a.ID, &a.Name, &a.OperatorID, &a.OperatorName, &a.Profile.Commodity, &decline, &spud, &flagsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get asset %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get asset %s", id)
	}

	a.Profile.DeclineRate = floatPtr(decline)
	if spud.Valid {
		t, err := time.Parse(monthLayout, spud.String)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse spud date for asset %s", id)
		}
		a.Profile.SpudDate = &t
	}
	if a.Profile.ComplianceFlags, err = unmarshalFlags([]byte(flagsJSON)); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal flags for asset %s", id)
	}
	return &a, nil
}

func (s *SQLiteStore) ListAssetIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM assets ORDER BY id LIMIT ?`, listLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assets")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan asset id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: list assets iterate")
}

func (s *SQLiteStore) UpsertProduction(ctx context.Context, assetID string, samples []model.ProductionSample) (int64, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin production tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO production (asset_id, month, oil_volume_bbl, gas_volume_mcf, ore_volume_tons, water_cut_pct, downtime_days)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (asset_id, month) DO UPDATE SET
			oil_volume_bbl = excluded.oil_volume_bbl,
			gas_volume_mcf = excluded.gas_volume_mcf,
			ore_volume_tons = excluded.ore_volume_tons,
			water_cut_pct = excluded.water_cut_pct,
			downtime_days = excluded.downtime_days`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare production upsert")
	}
	defer stmt.Close()

	var n int64
	for _, p := range samples {
		res, err := stmt.ExecContext(ctx,
			assetID, model.MonthStart(p.Month).Format(monthLayout),
			nullFloat(p.OilVolumeBbl), nullFloat(p.GasVolumeMcf), nullFloat(p.OreVolumeTons),
			nullFloat(p.WaterCutPct), nullFloat(p.DowntimeDays),
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert production %s %s", assetID, p.Month.Format(monthLayout))
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		n += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit production tx")
	}
	return n, nil
}

func (s *SQLiteStore) ListProduction(ctx context.Context, assetID string, limit int) ([]model.ProductionSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT month, oil_volume_bbl, gas_volume_mcf, ore_volume_tons, water_cut_pct, downtime_days
		FROM production
		WHERE asset_id = ?
		ORDER BY month DESC
		LIMIT ?`,
		assetID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list production for %s", assetID)
	}
	defer rows.Close()

	var samples []model.ProductionSample
	for rows.Next() {
		var (
			month                       string
			oil, gas, ore, water, down sql.NullFloat64
		)
		if err := rows.Scan(&month, &oil, &gas, &ore, &water, &down); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan production")
		}
		t, err := time.Parse(monthLayout, month)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse month %q", month)
		}
		samples = append(samples, model.ProductionSample{
			Month:         t,
			OilVolumeBbl:  floatPtr(oil),
			GasVolumeMcf:  floatPtr(gas),
			OreVolumeTons: floatPtr(ore),
			WaterCutPct:   floatPtr(water),
			DowntimeDays:  floatPtr(down),
		})
	}
	return samples, eris.Wrap(rows.Err(), "sqlite: list production iterate")
}

func (s *SQLiteStore) GetEstimate(ctx context.Context, assetID string) (*model.FinancialEstimate, error) {
	var (
		e                      model.FinancialEstimate
		commodity, asOf        string
		breakeven, sensitivity sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT monthly_revenue, annual_revenue, price_used, commodity,
		       estimated_operating_cost, estimated_net_cash_flow,
		       breakeven_price, price_sensitivity, as_of_date
		FROM financial_estimates
		WHERE asset_id = ?`,
		assetID,
	).Scan(&e.MonthlyRevenue, &e.AnnualRevenue, &e.PriceUsed, &commodity,
		&e.EstimatedOperatingCost, &e.EstimatedNetCashFlow,
		&breakeven, &sensitivity, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get estimate for %s", assetID)
	}

	e.Commodity = model.Commodity(commodity)
	e.BreakevenPrice = floatPtr(breakeven)
	e.PriceSensitivity = floatPtr(sensitivity)
	if e.AsOfDate, err = time.Parse(time.RFC3339Nano, asOf); err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse as_of_date for %s", assetID)
	}
	return &e, nil
}

func (s *SQLiteStore) SaveEstimate(ctx context.Context, assetID string, e model.FinancialEstimate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO financial_estimates
			(id, asset_id, monthly_revenue, annual_revenue, price_used, commodity,
			 estimated_operating_cost, estimated_net_cash_flow,
			 breakeven_price, price_sensitivity, as_of_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (asset_id) DO UPDATE SET
			monthly_revenue = excluded.monthly_revenue,
			annual_revenue = excluded.annual_revenue,
			price_used = excluded.price_used,
			commodity = excluded.commodity,
			estimated_operating_cost = excluded.estimated_operating_cost,
			estimated_net_cash_flow = excluded.estimated_net_cash_flow,
			breakeven_price = excluded.breakeven_price,
			price_sensitivity = excluded.price_sensitivity,
			as_of_date = excluded.as_of_date`,
		uuid.New().String(), assetID, e.MonthlyRevenue, e.AnnualRevenue, e.PriceUsed, string(e.Commodity),
		e.EstimatedOperatingCost, e.EstimatedNetCashFlow,
		nullFloat(e.BreakevenPrice), nullFloat(e.PriceSensitivity), e.AsOfDate.UTC().Format(time.RFC3339Nano),
	)
	return eris.Wrapf(err, "sqlite: save estimate for %s", assetID)
}

// helpers

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

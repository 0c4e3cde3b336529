package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/asset-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

var assetColumns = []string{
	"id", "name", "operator_id", "operator_name",
	"commodity", "decline_rate", "spud_date", "compliance_flags",
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS operators`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAsset(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	spud := time.Date(2010, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT a\.id, a\.name,.*FROM assets a\s+LEFT JOIN operators o ON o\.id = a\.operator_id\s+WHERE a\.id = \$1`).
		WithArgs("well-1").
		WillReturnRows(pgxmock.NewRows(assetColumns).
			AddRow("well-1", "Permian 7H", "op-1", "Basin Energy", "oil",
				model.Float(0.25), &spud, []byte(`["late_filing","spill"]`)))

	a, err := s.GetAsset(context.Background(), "well-1")
	require.NoError(t, err)
	assert.Equal(t, "Permian 7H", a.Name)
	assert.Equal(t, "Basin Energy", a.OperatorName)
	assert.Equal(t, "oil", a.Profile.Commodity)
	require.NotNil(t, a.Profile.DeclineRate)
	assert.InDelta(t, 0.25, *a.Profile.DeclineRate, 1e-9)
	require.NotNil(t, a.Profile.SpudDate)
	assert.True(t, spud.Equal(*a.Profile.SpudDate))
	assert.Equal(t, []string{"late_filing", "spill"}, a.Profile.ComplianceFlags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAsset_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM assets a`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAsset(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "get asset missing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAsset_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM assets a`).
		WithArgs("well-1").
		WillReturnError(errors.New("connection reset"))

	_, err := s.GetAsset(context.Background(), "well-1")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertOperator(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO operators .* ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("op-1", "Basin Energy", []byte(`["spill"]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertOperator(context.Background(), model.Operator{
		ID: "op-1", Name: "Basin Energy", ComplianceFlags: []string{"spill"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertAsset_NormalizesCommodity(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO assets`).
		WithArgs("mine-1", "Iron Ridge", pgxmock.AnyArg(), "mining", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertAsset(context.Background(), model.Asset{
		ID: "mine-1", Name: "Iron Ridge", Profile: model.AssetProfile{Commodity: "  Mining "},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAssetIDs(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id FROM assets ORDER BY id LIMIT \$1`).
		WithArgs(defaultListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	ids, err := s.ListAssetIDs(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProduction(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	var none *float64
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM production\s+WHERE asset_id = \$1\s+ORDER BY month DESC\s+LIMIT \$2`).
		WithArgs("well-1", 24).
		WillReturnRows(pgxmock.NewRows([]string{
			"month", "oil_volume_bbl", "gas_volume_mcf", "ore_volume_tons", "water_cut_pct", "downtime_days",
		}).
			AddRow(feb, model.Float(1200), none, none, model.Float(35), none).
			AddRow(jan, model.Float(1300), none, none, model.Float(30), model.Float(2)))

	samples, err := s.ListProduction(context.Background(), "well-1", 24)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.True(t, feb.Equal(samples[0].Month))
	require.NotNil(t, samples[0].OilVolumeBbl)
	assert.InDelta(t, 1200, *samples[0].OilVolumeBbl, 1e-9)
	assert.Nil(t, samples[0].GasVolumeMcf)
	require.NotNil(t, samples[1].DowntimeDays)
	assert.InDelta(t, 2, *samples[1].DowntimeDays, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertProduction(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_stage_production"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_stage_production"}, productionColumns).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "production"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := s.UpsertProduction(context.Background(), "well-1", []model.ProductionSample{
		{Month: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), OilVolumeBbl: model.Float(1200)},
		{Month: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), OilVolumeBbl: model.Float(1300)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEstimate_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM financial_estimates\s+WHERE asset_id = \$1`).
		WithArgs("well-1").
		WillReturnError(pgx.ErrNoRows)

	est, err := s.GetEstimate(context.Background(), "well-1")
	require.NoError(t, err)
	assert.Nil(t, est)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetEstimate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM financial_estimates`).
		WithArgs("well-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"monthly_revenue", "annual_revenue", "price_used", "commodity",
			"estimated_operating_cost", "estimated_net_cash_flow",
			"breakeven_price", "price_sensitivity", "as_of_date",
		}).AddRow(75000.0, 900000.0, 75.0, "oil", 30000.0, 45000.0, model.Float(30), model.Float(1000), asOf))

	est, err := s.GetEstimate(context.Background(), "well-1")
	require.NoError(t, err)
	require.NotNil(t, est)
	assert.Equal(t, model.CommodityOil, est.Commodity)
	assert.InDelta(t, 900000, est.AnnualRevenue, 1e-9)
	require.NotNil(t, est.BreakevenPrice)
	assert.InDelta(t, 30, *est.BreakevenPrice, 1e-9)
	assert.True(t, asOf.Equal(est.AsOfDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveEstimate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO financial_estimates .* ON CONFLICT \(asset_id\) DO UPDATE`).
		WithArgs(pgxmock.AnyArg(), "well-1", 75000.0, 900000.0, 75.0, "oil",
			30000.0, 45000.0, pgxmock.AnyArg(), pgxmock.AnyArg(), asOf).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveEstimate(context.Background(), "well-1", model.FinancialEstimate{
		MonthlyRevenue:         75000,
		AnnualRevenue:          900000,
		PriceUsed:              75,
		Commodity:              model.CommodityOil,
		EstimatedOperatingCost: 30000,
		EstimatedNetCashFlow:   45000,
		BreakevenPrice:         model.Float(30),
		PriceSensitivity:       model.Float(1000),
		AsOfDate:               asOf,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveEstimate_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO financial_estimates`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	err := s.SaveEstimate(context.Background(), "well-1", model.FinancialEstimate{AsOfDate: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save estimate for well-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), configFor("mysql", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/asset-cli/internal/config"
	"github.com/sells-group/asset-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func configFor(driver, url string) config.StoreConfig {
	return config.StoreConfig{Driver: driver, DatabaseURL: url}
}

func seedAsset(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	spud := time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertOperator(ctx, model.Operator{
		ID: "op-1", Name: "Basin Energy", ComplianceFlags: []string{"spill", "late_filing"},
	}))
	require.NoError(t, s.UpsertAsset(ctx, model.Asset{
		ID:         "well-1",
		Name:       "Permian 7H",
		OperatorID: "op-1",
		Profile: model.AssetProfile{
			Commodity:   "Oil",
			DeclineRate: model.Float(0.18),
			SpudDate:    &spud,
		},
	}))
}

func TestOpen_SQLite(t *testing.T) {
	s, err := Open(context.Background(), configFor("sqlite", filepath.Join(t.TempDir(), "open.db")))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestSQLite_AssetRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	seedAsset(t, s)

	a, err := s.GetAsset(context.Background(), "well-1")
	require.NoError(t, err)
	assert.Equal(t, "Permian 7H", a.Name)
	assert.Equal(t, "op-1", a.OperatorID)
	assert.Equal(t, "Basin Energy", a.OperatorName)
	assert.Equal(t, "oil", a.Profile.Commodity)
	require.NotNil(t, a.Profile.DeclineRate)
	assert.InDelta(t, 0.18, *a.Profile.DeclineRate, 1e-9)
	require.NotNil(t, a.Profile.SpudDate)
	assert.Equal(t, "2012-05-01", a.Profile.SpudDate.Format(monthLayout))
	assert.Equal(t, []string{"spill", "late_filing"}, a.Profile.ComplianceFlags)
}

func TestSQLite_AssetWithoutOperator(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.UpsertAsset(context.Background(), model.Asset{ID: "mine-1", Name: "Iron Ridge"}))

	a, err := s.GetAsset(context.Background(), "mine-1")
	require.NoError(t, err)
	assert.Empty(t, a.OperatorID)
	assert.Nil(t, a.Profile.DeclineRate)
	assert.Nil(t, a.Profile.SpudDate)
	assert.Nil(t, a.Profile.ComplianceFlags)
	assert.Equal(t, "oil", a.Profile.Commodity)
}

func TestSQLite_GetAsset_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetAsset(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLite_UpsertAsset_Updates(t *testing.T) {
	s := newTestSQLiteStore(t)
	seedAsset(t, s)

	require.NoError(t, s.UpsertAsset(context.Background(), model.Asset{
		ID: "well-1", Name: "Permian 7H (recompleted)", OperatorID: "op-1",
		Profile: model.AssetProfile{Commodity: "gas"},
	}))

	a, err := s.GetAsset(context.Background(), "well-1")
	require.NoError(t, err)
	assert.Equal(t, "Permian 7H (recompleted)", a.Name)
	assert.Equal(t, "gas", a.Profile.Commodity)
	assert.Nil(t, a.Profile.DeclineRate)
}

func TestSQLite_ListAssetIDs(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.UpsertAsset(ctx, model.Asset{ID: id, Name: id}))
	}

	ids, err := s.ListAssetIDs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	ids, err = s.ListAssetIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestSQLite_ProductionMostRecentFirst(t *testing.T) {
	s := newTestSQLiteStore(t)
	seedAsset(t, s)
	ctx := context.Background()

	n, err := s.UpsertProduction(ctx, "well-1", []model.ProductionSample{
		{Month: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), OilVolumeBbl: model.Float(1300), WaterCutPct: model.Float(30)},
		{Month: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), OilVolumeBbl: model.Float(1100)},
		{Month: time.Date(2025, 2, 17, 0, 0, 0, 0, time.UTC), OilVolumeBbl: model.Float(1200)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	samples, err := s.ListProduction(ctx, "well-1", 0)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, "2025-03-01", samples[0].Month.Format(monthLayout))
	assert.Equal(t, "2025-02-01", samples[1].Month.Format(monthLayout))
	assert.Equal(t, "2025-01-01", samples[2].Month.Format(monthLayout))
	assert.Nil(t, samples[0].WaterCutPct)
	require.NotNil(t, samples[2].WaterCutPct)
	assert.InDelta(t, 30, *samples[2].WaterCutPct, 1e-9)

	limited, err := s.ListProduction(ctx, "well-1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.InDelta(t, 1100, *limited[0].OilVolumeBbl, 1e-9)
}

func TestSQLite_ProductionOneSamplePerMonth(t *testing.T) {
	s := newTestSQLiteStore(t)
	seedAsset(t, s)
	ctx := context.Background()

	_, err := s.UpsertProduction(ctx, "well-1", []model.ProductionSample{
		{Month: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), OilVolumeBbl: model.Float(1300)},
	})
	require.NoError(t, err)
	_, err = s.UpsertProduction(ctx, "well-1", []model.ProductionSample{
		{Month: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), OilVolumeBbl: model.Float(1250)},
	})
	require.NoError(t, err)

	samples, err := s.ListProduction(ctx, "well-1", 0)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.InDelta(t, 1250, *samples[0].OilVolumeBbl, 1e-9)
}

func TestSQLite_UpsertProduction_Empty(t *testing.T) {
	s := newTestSQLiteStore(t)
	n, err := s.UpsertProduction(context.Background(), "well-1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLite_EstimateRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	seedAsset(t, s)
	ctx := context.Background()

	est, err := s.GetEstimate(ctx, "well-1")
	require.NoError(t, err)
	assert.Nil(t, est)

	asOf := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	in := model.FinancialEstimate{
		MonthlyRevenue:         75000,
		AnnualRevenue:          900000,
		PriceUsed:              75,
		Commodity:              model.CommodityOil,
		EstimatedOperatingCost: 30000,
		EstimatedNetCashFlow:   45000,
		BreakevenPrice:         model.Float(30),
		AsOfDate:               asOf,
	}
	require.NoError(t, s.SaveEstimate(ctx, "well-1", in))

	got, err := s.GetEstimate(ctx, "well-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 900000, got.AnnualRevenue, 1e-9)
	assert.Equal(t, model.CommodityOil, got.Commodity)
	require.NotNil(t, got.BreakevenPrice)
	assert.InDelta(t, 30, *got.BreakevenPrice, 1e-9)
	assert.Nil(t, got.PriceSensitivity)
	assert.True(t, asOf.Equal(got.AsOfDate))

	// Saving again replaces the single stored estimate.
	in.MonthlyRevenue = 80000
	in.AnnualRevenue = 960000
	require.NoError(t, s.SaveEstimate(ctx, "well-1", in))
	got, err = s.GetEstimate(ctx, "well-1")
	require.NoError(t, err)
	assert.InDelta(t, 960000, got.AnnualRevenue, 1e-9)
}

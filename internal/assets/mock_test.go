package assets

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/asset-cli/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) UpsertOperator(ctx context.Context, op model.Operator) error {
	return m.Called(ctx, op).Error(0)
}

func (m *mockStore) UpsertAsset(ctx context.Context, a model.Asset) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockStore) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *mockStore) ListAssetIDs(ctx context.Context, limit int) ([]string, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockStore) UpsertProduction(ctx context.Context, assetID string, samples []model.ProductionSample) (int64, error) {
	args := m.Called(ctx, assetID, samples)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) ListProduction(ctx context.Context, assetID string, limit int) ([]model.ProductionSample, error) {
	args := m.Called(ctx, assetID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductionSample), args.Error(1)
}

func (m *mockStore) GetEstimate(ctx context.Context, assetID string) (*model.FinancialEstimate, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FinancialEstimate), args.Error(1)
}

func (m *mockStore) SaveEstimate(ctx context.Context, assetID string, est model.FinancialEstimate) error {
	return m.Called(ctx, assetID, est).Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

// Package store persists assets, their production history and stored
// financial estimates.
package store

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/asset-cli/internal/config"
	"github.com/sells-group/asset-cli/internal/model"
)

// ErrNotFound is returned when a requested asset does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence interface consumed by the asset service.
type Store interface {
	// Assets
	UpsertOperator(ctx context.Context, op model.Operator) error
	UpsertAsset(ctx context.Context, asset model.Asset) error
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	ListAssetIDs(ctx context.Context, limit int) ([]string, error)

	// Production, returned most-recent-first.
	UpsertProduction(ctx context.Context, assetID string, samples []model.ProductionSample) (int64, error)
	ListProduction(ctx context.Context, assetID string, limit int) ([]model.ProductionSample, error)

	// Estimates. GetEstimate returns nil, nil when none is stored.
	GetEstimate(ctx context.Context, assetID string) (*model.FinancialEstimate, error)
	SaveEstimate(ctx context.Context, assetID string, est model.FinancialEstimate) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			ConnectAttempts: cfg.ConnectAttempts,
		})
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

const monthLayout = "2006-01-02"

// defaultListLimit caps unbounded list queries.
const defaultListLimit = 1000

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/asset-cli/internal/assets"
	"github.com/sells-group/asset-cli/internal/config"
	"github.com/sells-group/asset-cli/internal/estimate"
	"github.com/sells-group/asset-cli/internal/scorer"
	"github.com/sells-group/asset-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "asset-cli",
	Short: "Financial and risk estimates for producing assets",
	Long:  "Estimates revenue, operating cost, cash flow and breakeven price from an asset's latest production month and scores its risk from decline, compliance, age and water cut.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// engine holds the estimation components built from config.
type engine struct {
	Revenue    *estimate.RevenueEstimator
	Scorer     *scorer.RiskScorer
	Aggregator *estimate.Aggregator
}

func newEngine(c *config.Config) (*engine, error) {
	if err := c.Validate("engine"); err != nil {
		return nil, err
	}
	if err := scorer.ValidateConfig(c.Risk); err != nil {
		return nil, err
	}

	rev := estimate.NewRevenueEstimator(c.Estimate.Prices)
	risk := scorer.NewRiskScorer(c.Risk)
	return &engine{
		Revenue:    rev,
		Scorer:     risk,
		Aggregator: estimate.NewAggregator(rev, risk, c.Estimate.OperatingCostRatio),
	}, nil
}

// openStore validates the store section and opens the configured backend.
func openStore(ctx context.Context, c *config.Config) (store.Store, error) {
	if err := c.Validate("store"); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, c.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// serviceEnv bundles the store-backed asset service with its engine.
type serviceEnv struct {
	Store   store.Store
	Engine  *engine
	Service *assets.Service
}

func (e *serviceEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

func initService(ctx context.Context, c *config.Config) (*serviceEnv, error) {
	eng, err := newEngine(c)
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}
	svc := assets.NewService(st, eng.Aggregator, assets.Options{
		HistoryMonths:   c.Estimate.HistoryMonths,
		PersistComputed: c.Estimate.PersistComputed,
	})
	return &serviceEnv{Store: st, Engine: eng, Service: svc}, nil
}

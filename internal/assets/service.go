// Package assets serves asset detail views with their financial estimate and
// risk score, and runs the same resolution over whole portfolios.
package assets

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/asset-cli/internal/estimate"
	"github.com/sells-group/asset-cli/internal/model"
	"github.com/sells-group/asset-cli/internal/store"
)

const defaultHistoryMonths = 24

// Options configures a Service.
type Options struct {
	HistoryMonths   int
	PersistComputed bool
	Now             func() time.Time
}

// Service loads assets from the store and attaches an estimate outcome.
type Service struct {
	store         store.Store
	agg           *estimate.Aggregator
	historyMonths int
	persist       bool
	now           func() time.Time
}

// NewService creates a Service.
func NewService(st store.Store, agg *estimate.Aggregator, opts Options) *Service {
	s := &Service{
		store:         st,
		agg:           agg,
		historyMonths: opts.HistoryMonths,
		persist:       opts.PersistComputed,
		now:           opts.Now,
	}
	if s.historyMonths <= 0 {
		s.historyMonths = defaultHistoryMonths
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Detail is the asset detail view.
type Detail struct {
	Asset      model.Asset              `json:"asset"`
	Production []model.ProductionSample `json:"production"`
	Outcome    estimate.Outcome         `json:"estimate"`
}

// Detail loads one asset with its production history and resolves its
// estimate. Only a failure to load the asset itself is returned as an error;
// production or estimate lookups that fail surface as a failed outcome, unless
// a stored estimate was found, which is served regardless.
func (s *Service) Detail(ctx context.Context, assetID string) (*Detail, error) {
	var (
		asset      *model.Asset
		history    []model.ProductionSample
		stored     *model.FinancialEstimate
		historyErr error
		storedErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asset, err = s.store.GetAsset(gctx, assetID)
		return err
	})
	g.Go(func() error {
		history, historyErr = s.store.ListProduction(gctx, assetID, s.historyMonths)
		return nil
	})
	g.Go(func() error {
		stored, storedErr = s.store.GetEstimate(gctx, assetID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrapf(err, "assets: load %s", assetID)
	}

	log := zap.L().With(zap.String("asset_id", assetID))
	asOf := s.now().UTC()

	var out estimate.Outcome
	switch {
	case stored != nil:
		if historyErr != nil {
			log.Warn("assets: production lookup failed, serving stored estimate", zap.Error(historyErr))
			history = nil
		}
		out = s.agg.Resolve(asset.Profile, history, stored, asOf, estimate.Options{})
	case historyErr != nil:
		log.Warn("assets: production lookup failed", zap.Error(historyErr))
		out = failedOutcome("production lookup failed: " + historyErr.Error())
	case storedErr != nil:
		log.Warn("assets: stored estimate lookup failed", zap.Error(storedErr))
		out = failedOutcome("stored estimate lookup failed: " + storedErr.Error())
	default:
		out = s.agg.Resolve(asset.Profile, history, stored, asOf, estimate.Options{})
	}

	if out.Status == estimate.StatusComputed && s.persist {
		if err := s.store.SaveEstimate(ctx, assetID, *out.Estimate); err != nil {
			log.Warn("assets: persist computed estimate failed", zap.Error(err))
		}
	}

	fields := []zap.Field{zap.String("status", string(out.Status))}
	if out.Risk != nil {
		fields = append(fields, zap.Int("score", out.Risk.TotalScore))
	}
	log.Debug("assets: resolved estimate", fields...)

	if history == nil {
		history = []model.ProductionSample{}
	}
	return &Detail{Asset: *asset, Production: history, Outcome: out}, nil
}

func failedOutcome(reason string) estimate.Outcome {
	return estimate.Outcome{Status: estimate.StatusFailed, Reason: reason}
}

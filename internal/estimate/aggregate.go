package estimate

import (
	"math"
	"time"

	"github.com/sells-group/asset-cli/internal/model"
	"github.com/sells-group/asset-cli/internal/scorer"
)

// DefaultOperatingCostRatio is the share of revenue assumed as lifting cost
// when no ratio is configured.
const DefaultOperatingCostRatio = 0.40

// Options tunes a single CalculateAll call.
type Options struct {
	PriceOverride *float64
}

// Assessment is the combined output of one aggregation: the financial
// estimate and, independently, the risk score.
type Assessment struct {
	Estimate model.FinancialEstimate `json:"financial_estimate"`
	Risk     model.RiskScoreResult   `json:"risk_score"`
}

// Aggregator composes the revenue estimator and risk scorer into the
// per-asset fallback estimate. It is stateless and safe for concurrent use.
type Aggregator struct {
	revenue *RevenueEstimator
	risk    *scorer.RiskScorer
	opRatio float64
}

// NewAggregator creates an Aggregator. opRatio is the operating-cost share of
// revenue; values outside [0, 1] fall back to DefaultOperatingCostRatio.
func NewAggregator(revenue *RevenueEstimator, risk *scorer.RiskScorer, opRatio float64) *Aggregator {
	if opRatio < 0 || opRatio > 1 || math.IsNaN(opRatio) {
		opRatio = DefaultOperatingCostRatio
	}
	return &Aggregator{revenue: revenue, risk: risk, opRatio: opRatio}
}

// OperatingCostRatio returns the configured cost share.
func (a *Aggregator) OperatingCostRatio() float64 {
	return a.opRatio
}

// CalculateAll derives the financial estimate and risk score for one asset.
// history must be most-recent-first and non-empty; only history[0] is read.
// asOf stamps the estimate and is the reference time for asset age.
func (a *Aggregator) CalculateAll(asset model.AssetProfile, history []model.ProductionSample, asOf time.Time, opts Options) (*Assessment, error) {
	if len(history) == 0 {
		return nil, newError(KindEmptyHistory, "production history is empty")
	}
	latest := history[0]
	if err := checkFinite(asset, latest, opts); err != nil {
		return nil, err
	}

	commodity := a.revenue.Resolve(asset.Commodity)
	var volume float64
	if v := latest.Volume(commodity); v != nil {
		volume = *v
	}

	rev := a.revenue.Estimate(volume, string(commodity), opts.PriceOverride)
	opCost := rev.MonthlyRevenue * a.opRatio

	est := model.FinancialEstimate{
		MonthlyRevenue:         rev.MonthlyRevenue,
		AnnualRevenue:          rev.AnnualRevenue,
		PriceUsed:              rev.PriceUsed,
		Commodity:              rev.Commodity,
		EstimatedOperatingCost: opCost,
		EstimatedNetCashFlow:   rev.MonthlyRevenue - opCost,
		AsOfDate:               asOf.UTC(),
	}

	// Holding the operating cost fixed in dollars, net cash flow is linear in
	// price with slope = volume.
	if volume != 0 {
		breakeven := opCost / volume
		sensitivity := volume
		est.BreakevenPrice = &breakeven
		est.PriceSensitivity = &sensitivity
	}
	if err := checkResult(est); err != nil {
		return nil, err
	}

	return &Assessment{
		Estimate: est,
		Risk:     a.risk.Score(scorer.InputFor(asset, &latest), asOf),
	}, nil
}

func checkFinite(asset model.AssetProfile, s model.ProductionSample, opts Options) error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"oil_volume_bbl", s.OilVolumeBbl},
		{"gas_volume_mcf", s.GasVolumeMcf},
		{"ore_volume_tons", s.OreVolumeTons},
		{"water_cut_pct", s.WaterCutPct},
		{"downtime_days", s.DowntimeDays},
		{"decline_rate", asset.DeclineRate},
		{"price_override", opts.PriceOverride},
	}
	for _, f := range fields {
		if f.v != nil && (math.IsNaN(*f.v) || math.IsInf(*f.v, 0)) {
			return newError(KindInvalidInput, "%s is not a finite number", f.name)
		}
	}
	return nil
}

// checkResult rejects estimates whose arithmetic overflowed.
func checkResult(e model.FinancialEstimate) error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"monthly_revenue", &e.MonthlyRevenue},
		{"annual_revenue", &e.AnnualRevenue},
		{"estimated_operating_cost", &e.EstimatedOperatingCost},
		{"estimated_net_cash_flow", &e.EstimatedNetCashFlow},
		{"breakeven_price", e.BreakevenPrice},
	}
	for _, f := range fields {
		if f.v != nil && (math.IsNaN(*f.v) || math.IsInf(*f.v, 0)) {
			return newError(KindInvalidInput, "%s overflowed", f.name)
		}
	}
	return nil
}

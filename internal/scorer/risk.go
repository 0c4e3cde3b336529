package scorer

import (
	"math"
	"time"

	"github.com/sells-group/asset-cli/internal/config"
	"github.com/sells-group/asset-cli/internal/model"
)

// julianYear is the length of a Julian year, used for asset age so that
// leap years do not shift the score.
const julianYear = 365.25 * 24 * time.Hour

// RiskInput carries the risk drivers for one asset. Nil fields are unknown
// and contribute nothing.
type RiskInput struct {
	DeclineRate     *float64
	ComplianceFlags []string
	SpudDate        *time.Time
	WaterCutPct     *float64
}

// InputFor builds a RiskInput from an asset profile and its latest sample.
// A nil sample leaves water cut unknown.
func InputFor(asset model.AssetProfile, latest *model.ProductionSample) RiskInput {
	in := RiskInput{
		DeclineRate:     asset.DeclineRate,
		ComplianceFlags: asset.ComplianceFlags,
		SpudDate:        asset.SpudDate,
	}
	if latest != nil {
		in.WaterCutPct = latest.WaterCutPct
	}
	return in
}

// RiskScorer combines four independently capped sub-scores into a 0-100
// score. It holds no mutable state and is safe for concurrent use.
type RiskScorer struct {
	cfg config.RiskConfig
}

// NewRiskScorer creates a RiskScorer with the given config.
func NewRiskScorer(cfg config.RiskConfig) *RiskScorer {
	return &RiskScorer{cfg: cfg}
}

// Config returns the scorer's configuration.
func (s *RiskScorer) Config() config.RiskConfig {
	return s.cfg
}

// Score computes the risk score as of the given time. The total is the
// rounded sum of the unrounded sub-scores; factors are rounded only for the
// reported breakdown.
func (s *RiskScorer) Score(in RiskInput, asOf time.Time) model.RiskScoreResult {
	decline := scoreDecline(in.DeclineRate, s.cfg)
	compliance := scoreCompliance(len(in.ComplianceFlags), s.cfg)
	age := scoreAge(in.SpudDate, asOf, s.cfg)
	waterCut := scoreWaterCut(in.WaterCutPct, s.cfg)

	total := math.Round(decline + compliance + age + waterCut)
	total = clamp(total, 0, 100)

	return model.RiskScoreResult{
		TotalScore: int(total),
		Factors: model.RiskFactors{
			DeclineRate: int(math.Round(decline)),
			Compliance:  int(math.Round(compliance)),
			AssetAge:    int(math.Round(age)),
			WaterCut:    int(math.Round(waterCut)),
		},
	}
}

// scoreDecline returns 0..DeclineWeight, saturating at DeclineSaturation.
func scoreDecline(rate *float64, cfg config.RiskConfig) float64 {
	if rate == nil {
		return 0
	}
	return linear(*rate, cfg.DeclineSaturation, cfg.DeclineWeight)
}

// scoreCompliance returns 0..ComplianceWeight, saturating at ComplianceSaturation flags.
func scoreCompliance(flags int, cfg config.RiskConfig) float64 {
	if flags <= 0 {
		return 0
	}
	return linear(float64(flags), cfg.ComplianceSaturation, cfg.ComplianceWeight)
}

// scoreAge returns 0..AgeWeight from Julian years since spud. A spud date in
// the future counts as age zero.
func scoreAge(spud *time.Time, asOf time.Time, cfg config.RiskConfig) float64 {
	if spud == nil {
		return 0
	}
	years := float64(asOf.Sub(*spud)) / float64(julianYear)
	return linear(years, cfg.AgeSaturationYears, cfg.AgeWeight)
}

// scoreWaterCut returns 0..WaterCutWeight, saturating at WaterCutSaturation percent.
func scoreWaterCut(pct *float64, cfg config.RiskConfig) float64 {
	if pct == nil {
		return 0
	}
	return linear(*pct, cfg.WaterCutSaturation, cfg.WaterCutWeight)
}

// linear scales v/saturation onto [0, weight]. Non-finite or non-positive
// drivers and a non-positive saturation yield zero.
func linear(v, saturation, weight float64) float64 {
	if saturation <= 0 || math.IsNaN(v) || v <= 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return weight
	}
	return clamp((v/saturation)*weight, 0, weight)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

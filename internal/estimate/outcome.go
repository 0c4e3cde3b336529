package estimate

import (
	"time"

	"github.com/sells-group/asset-cli/internal/model"
	"github.com/sells-group/asset-cli/internal/scorer"
)

// Status describes how an asset's financial estimate was obtained, or why it
// is unavailable.
type Status string

const (
	StatusStored   Status = "stored"   // persisted estimate served as-is
	StatusComputed Status = "computed" // fallback computed on a cache miss
	StatusNoData   Status = "no_data"  // no production history to estimate from
	StatusFailed   Status = "failed"   // computation failed; see Reason
)

// Outcome carries either an estimate or a typed absence reason, so callers
// can tell "no data" from "failed" from a legitimately zero estimate.
type Outcome struct {
	Status   Status                   `json:"status"`
	Estimate *model.FinancialEstimate `json:"financial_estimate,omitempty"`
	Risk     *model.RiskScoreResult   `json:"risk_score,omitempty"`
	Kind     Kind                     `json:"failure_kind,omitempty"`
	Reason   string                   `json:"reason,omitempty"`
}

// Available reports whether the outcome carries an estimate.
func (o Outcome) Available() bool {
	return o.Estimate != nil
}

// Resolve builds the outcome for one asset. A stored estimate always wins and
// is never recomputed. Otherwise the aggregator runs only when history is
// non-empty. The risk score is computed independently of the estimate and is
// attached whenever it can be, including for stored estimates.
func (a *Aggregator) Resolve(asset model.AssetProfile, history []model.ProductionSample, stored *model.FinancialEstimate, asOf time.Time, opts Options) Outcome {
	if stored != nil {
		var latest *model.ProductionSample
		if len(history) > 0 {
			latest = &history[0]
		}
		risk := a.risk.Score(scorer.InputFor(asset, latest), asOf)
		return Outcome{Status: StatusStored, Estimate: stored, Risk: &risk}
	}

	if len(history) == 0 {
		risk := a.risk.Score(scorer.InputFor(asset, nil), asOf)
		return Outcome{
			Status: StatusNoData,
			Risk:   &risk,
			Reason: "no production history",
		}
	}

	res, err := a.CalculateAll(asset, history, asOf, opts)
	if err != nil {
		return Outcome{Status: StatusFailed, Kind: KindOf(err), Reason: err.Error()}
	}
	return Outcome{Status: StatusComputed, Estimate: &res.Estimate, Risk: &res.Risk}
}

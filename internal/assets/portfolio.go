package assets

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/asset-cli/internal/estimate"
)

const defaultPortfolioConcurrency = 8

// Item is the result for one asset in a portfolio run. Exactly one of Detail
// and Err is set.
type Item struct {
	AssetID string  `json:"asset_id"`
	Detail  *Detail `json:"detail,omitempty"`
	Err     string  `json:"error,omitempty"`
}

// EstimatePortfolio runs Detail for every id with at most concurrency calls
// in flight. Results keep the order of ids. Per-asset errors are recorded on
// the item and never abort the run.
func (s *Service) EstimatePortfolio(ctx context.Context, ids []string, concurrency int) []Item {
	if concurrency <= 0 {
		concurrency = defaultPortfolioConcurrency
	}
	items := make([]Item, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			items[i].AssetID = id
			if err := gctx.Err(); err != nil {
				items[i].Err = err.Error()
				return nil
			}
			d, err := s.Detail(gctx, id)
			if err != nil {
				zap.L().Warn("assets: portfolio item failed", zap.String("asset_id", id), zap.Error(err))
				items[i].Err = err.Error()
				return nil
			}
			items[i].Detail = d
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// Summary aggregates a portfolio run.
type Summary struct {
	Assets              int                     `json:"assets"`
	Errors              int                     `json:"errors"`
	ByStatus            map[estimate.Status]int `json:"by_status"`
	TotalMonthlyRevenue float64                 `json:"total_monthly_revenue"`
	TotalAnnualRevenue  float64                 `json:"total_annual_revenue"`
	TotalNetCashFlow    float64                 `json:"total_net_cash_flow"`
	RiskMean            float64                 `json:"risk_mean"`
	RiskStdDev          float64                 `json:"risk_stddev"`
	RiskMedian          float64                 `json:"risk_median"`
	RiskMax             int                     `json:"risk_max"`
}

// Summarize counts items by outcome status, totals revenue over the items
// that carry an estimate and describes the distribution of risk scores. The
// median is the empirical (lower) median; the standard deviation is the
// sample deviation and is zero with fewer than two scores.
func Summarize(items []Item) Summary {
	sum := Summary{Assets: len(items), ByStatus: make(map[estimate.Status]int)}

	var scores []float64
	for _, it := range items {
		if it.Detail == nil {
			sum.Errors++
			continue
		}
		out := it.Detail.Outcome
		sum.ByStatus[out.Status]++
		if out.Estimate != nil {
			sum.TotalMonthlyRevenue += out.Estimate.MonthlyRevenue
			sum.TotalAnnualRevenue += out.Estimate.AnnualRevenue
			sum.TotalNetCashFlow += out.Estimate.EstimatedNetCashFlow
		}
		if out.Risk != nil {
			scores = append(scores, float64(out.Risk.TotalScore))
			if out.Risk.TotalScore > sum.RiskMax {
				sum.RiskMax = out.Risk.TotalScore
			}
		}
	}

	if len(scores) == 0 {
		return sum
	}
	sort.Float64s(scores)
	sum.RiskMean = stat.Mean(scores, nil)
	sum.RiskMedian = stat.Quantile(0.5, stat.Empirical, scores, nil)
	if len(scores) > 1 {
		if sd := stat.StdDev(scores, nil); !math.IsNaN(sd) {
			sum.RiskStdDev = sd
		}
	}
	return sum
}

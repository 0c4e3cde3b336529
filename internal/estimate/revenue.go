// Package estimate derives revenue, cash-flow and breakeven estimates for
// producing assets from their latest production month.
package estimate

import (
	"maps"

	"github.com/sells-group/asset-cli/internal/model"
)

// PriceTable maps a commodity key to its benchmark price per unit.
type PriceTable map[string]float64

// DefaultPrices returns the default benchmark table. Downstream figures are
// only as fresh as this table: oil $75.00/bbl, gas $3.50/mcf, mining $50.00/ton.
func DefaultPrices() PriceTable {
	return PriceTable{
		string(model.CommodityOil):    75.0,
		string(model.CommodityGas):    3.50,
		string(model.CommodityMining): 50.0,
	}
}

// RevenueEstimator converts a monthly volume into a revenue projection using
// a benchmark price table. It is immutable and safe for concurrent use.
type RevenueEstimator struct {
	prices PriceTable
}

// NewRevenueEstimator creates an estimator over a copy of prices. A nil or
// empty table uses DefaultPrices; a table without an oil entry inherits the
// default oil benchmark so the fallback always resolves.
func NewRevenueEstimator(prices PriceTable) *RevenueEstimator {
	table := DefaultPrices()
	if len(prices) > 0 {
		table = PriceTable{string(model.CommodityOil): table[string(model.CommodityOil)]}
		for k, v := range prices {
			table[string(model.NormalizeCommodity(k))] = v
		}
	}
	return &RevenueEstimator{prices: table}
}

// Prices returns a copy of the benchmark table in use.
func (e *RevenueEstimator) Prices() PriceTable {
	return maps.Clone(e.prices)
}

// Resolve normalizes a raw commodity tag. Tags with a benchmark entry or in
// model.KnownCommodities are kept; anything else resolves to oil.
func (e *RevenueEstimator) Resolve(raw string) model.Commodity {
	c := model.NormalizeCommodity(raw)
	if _, ok := e.prices[string(c)]; ok || c.IsKnown() {
		return c
	}
	return model.CommodityOil
}

// BenchmarkPrice returns the benchmark price for a commodity, falling back
// to the oil benchmark when the commodity has no entry.
func (e *RevenueEstimator) BenchmarkPrice(c model.Commodity) float64 {
	if p, ok := e.prices[string(c)]; ok {
		return p
	}
	return e.prices[string(model.CommodityOil)]
}

// Estimate projects revenue for one month of production. The override, when
// non-nil, takes precedence over the benchmark for any commodity. Zero and
// negative volumes propagate unchanged.
func (e *RevenueEstimator) Estimate(monthlyProduction float64, commodity string, priceOverride *float64) model.RevenueEstimate {
	c := e.Resolve(commodity)

	price := e.BenchmarkPrice(c)
	source := model.PriceSourceBenchmark
	if priceOverride != nil {
		price = *priceOverride
		source = model.PriceSourceOverride
	}

	monthly := monthlyProduction * price
	return model.RevenueEstimate{
		MonthlyRevenue: monthly,
		AnnualRevenue:  monthly * 12,
		PriceUsed:      price,
		Commodity:      c,
		PriceSource:    source,
	}
}

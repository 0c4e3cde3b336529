package model

import "time"

// PriceSource records where a revenue price came from.
type PriceSource string

const (
	PriceSourceBenchmark PriceSource = "benchmark"
	PriceSourceOverride  PriceSource = "override"
)

// RevenueEstimate is the revenue projection for one monthly volume.
type RevenueEstimate struct {
	MonthlyRevenue float64     `json:"monthly_revenue"`
	AnnualRevenue  float64     `json:"annual_revenue"`
	PriceUsed      float64     `json:"price_used"`
	Commodity      Commodity   `json:"commodity"`
	PriceSource    PriceSource `json:"price_source"`
}

// FinancialEstimate is the per-asset financial estimate served as
// "financial_estimates".
type FinancialEstimate struct {
	MonthlyRevenue         float64   `json:"monthly_revenue"`
	AnnualRevenue          float64   `json:"annual_revenue"`
	PriceUsed              float64   `json:"price_used"`
	Commodity              Commodity `json:"commodity"`
	EstimatedOperatingCost float64   `json:"estimated_operating_cost"`
	EstimatedNetCashFlow   float64   `json:"estimated_net_cash_flow"`
	BreakevenPrice         *float64  `json:"breakeven_price,omitempty"`
	PriceSensitivity       *float64  `json:"price_sensitivity,omitempty"` // $ net cash flow per $1 of price
	AsOfDate               time.Time `json:"as_of_date"`
}

// RiskFactors is the rounded per-factor breakdown of a risk score.
type RiskFactors struct {
	DeclineRate int `json:"decline_rate"`
	Compliance  int `json:"compliance"`
	AssetAge    int `json:"asset_age"`
	WaterCut    int `json:"water_cut"`
}

// RiskScoreResult is a bounded 0-100 risk score with its breakdown.
type RiskScoreResult struct {
	TotalScore int         `json:"total_score"`
	Factors    RiskFactors `json:"factors"`
}

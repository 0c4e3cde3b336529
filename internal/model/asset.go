package model

import (
	"strings"
	"time"
)

// Commodity identifies what an asset produces.
type Commodity string

const (
	CommodityOil    Commodity = "oil"
	CommodityGas    Commodity = "gas"
	CommodityMining Commodity = "mining"
	CommodityEnergy Commodity = "energy"
)

// KnownCommodities lists the commodity tags the asset records carry.
var KnownCommodities = []Commodity{CommodityOil, CommodityGas, CommodityMining, CommodityEnergy}

// NormalizeCommodity lowercases and trims a raw commodity tag. An empty tag
// normalizes to oil.
func NormalizeCommodity(raw string) Commodity {
	c := Commodity(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" {
		return CommodityOil
	}
	return c
}

// IsKnown reports whether c is one of KnownCommodities.
func (c Commodity) IsKnown() bool {
	for _, k := range KnownCommodities {
		if c == k {
			return true
		}
	}
	return false
}

// Asset is a producing asset (well, mine) as stored.
type Asset struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	OperatorID   string       `json:"operator_id,omitempty" yaml:"operator_id"`
	OperatorName string       `json:"operator_name,omitempty" yaml:"-"`
	Profile      AssetProfile `json:"profile" yaml:"profile"`
}

// Operator runs one or more assets and carries the compliance flags
// attributed to it.
type Operator struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	ComplianceFlags []string `json:"compliance_flags,omitempty" yaml:"compliance_flags"`
}

// AssetProfile is the read-only projection of an asset used for revenue and
// risk estimation.
type AssetProfile struct {
	Commodity       string     `json:"commodity" yaml:"commodity"`
	DeclineRate     *float64   `json:"decline_rate,omitempty" yaml:"decline_rate"`         // fractional annual decline
	SpudDate        *time.Time `json:"spud_date,omitempty" yaml:"spud_date"`               // first production
	ComplianceFlags []string   `json:"compliance_flags,omitempty" yaml:"compliance_flags"` // operator violations
}

// ProductionSample is one month of production for one asset. Every volume
// field is optional; nil means the month was not reported for that field.
type ProductionSample struct {
	Month         time.Time `json:"month" yaml:"month"`
	OilVolumeBbl  *float64  `json:"oil_volume_bbl,omitempty" yaml:"oil_volume_bbl"`
	GasVolumeMcf  *float64  `json:"gas_volume_mcf,omitempty" yaml:"gas_volume_mcf"`
	OreVolumeTons *float64  `json:"ore_volume_tons,omitempty" yaml:"ore_volume_tons"`
	WaterCutPct   *float64  `json:"water_cut_pct,omitempty" yaml:"water_cut_pct"`
	DowntimeDays  *float64  `json:"downtime_days,omitempty" yaml:"downtime_days"`
}

// Volume returns the volume field matching the commodity. Oil, energy and
// unrecognized commodities read OilVolumeBbl.
func (s ProductionSample) Volume(c Commodity) *float64 {
	switch c {
	case CommodityGas:
		return s.GasVolumeMcf
	case CommodityMining:
		return s.OreVolumeTons
	default:
		return s.OilVolumeBbl
	}
}

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Package scorer implements the bounded, weighted asset risk score.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/asset-cli/internal/config"
)

// DefaultRiskConfig returns a config.RiskConfig with the standard caps and
// saturation points. Weights sum to 100.
func DefaultRiskConfig() config.RiskConfig {
	return config.RiskConfig{
		// Caps (sum = 100).
		DeclineWeight:    30,
		ComplianceWeight: 25,
		AgeWeight:        25,
		WaterCutWeight:   20,

		// Saturation points.
		DeclineSaturation:    0.50, // 50% annual decline
		ComplianceSaturation: 5,    // flags
		AgeSaturationYears:   20,
		WaterCutSaturation:   80, // percent
	}
}

// WeightSum returns the sum of all factor caps.
func WeightSum(c config.RiskConfig) float64 {
	return c.DeclineWeight + c.ComplianceWeight + c.AgeWeight + c.WaterCutWeight
}

// ValidateConfig checks that a RiskConfig is internally consistent.
func ValidateConfig(c config.RiskConfig) error {
	var errs []string

	factors := []struct {
		name       string
		weight     float64
		saturation float64
	}{
		{"decline", c.DeclineWeight, c.DeclineSaturation},
		{"compliance", c.ComplianceWeight, c.ComplianceSaturation},
		{"age", c.AgeWeight, c.AgeSaturationYears},
		{"water_cut", c.WaterCutWeight, c.WaterCutSaturation},
	}
	for _, f := range factors {
		if f.weight < 0 {
			errs = append(errs, fmt.Sprintf("%s_weight must be >= 0", f.name))
		}
		// A zero saturation point would divide by zero.
		if f.saturation <= 0 {
			errs = append(errs, fmt.Sprintf("%s saturation must be > 0", f.name))
		}
	}

	if sum := WeightSum(c); sum > 100 {
		errs = append(errs, fmt.Sprintf("weights must sum to <= 100, got %.1f", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

package estimate

import "math"

// DeclineExponent is the fixed Arps b-factor of the illustrative decline
// overlay. The overlay is not fitted to data.
const DeclineExponent = 0.5

// DeclineCurve projects monthly volumes from an initial rate qi using the
// hyperbolic form q(t) = qi / (1 + b*Di*t)^(1/b), where Di is the annual
// decline rate and t is in years. Element 0 is month zero (qi itself).
// Negative or non-finite decline rates are treated as zero (flat curve).
func DeclineCurve(qi, annualDecline float64, months int) []float64 {
	if months <= 0 {
		return nil
	}
	if annualDecline < 0 || math.IsNaN(annualDecline) || math.IsInf(annualDecline, 0) {
		annualDecline = 0
	}

	out := make([]float64, months)
	for m := range out {
		t := float64(m) / 12
		out[m] = qi / math.Pow(1+DeclineExponent*annualDecline*t, 1/DeclineExponent)
	}
	return out
}

// CumulativeVolume sums a projected curve.
func CumulativeVolume(curve []float64) float64 {
	var total float64
	for _, q := range curve {
		total += q
	}
	return total
}

package estimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclineCurve_Formula(t *testing.T) {
	curve := DeclineCurve(1000, 0.5, 25)
	require.Len(t, curve, 25)

	assert.Equal(t, 1000.0, curve[0])
	// t = 1 year: 1000 / (1 + 0.5*0.5*1)^2 = 640
	assert.InDelta(t, 640.0, curve[12], 1e-9)
	// t = 2 years: 1000 / (1 + 0.5)^2
	assert.InDelta(t, 1000/2.25, curve[24], 1e-9)
}

func TestDeclineCurve_Monotonic(t *testing.T) {
	curve := DeclineCurve(500, 0.3, 60)
	for i := 1; i < len(curve); i++ {
		assert.Less(t, curve[i], curve[i-1])
	}
}

func TestDeclineCurve_FlatForBadRates(t *testing.T) {
	for _, rate := range []float64{0, -0.2, math.NaN(), math.Inf(1)} {
		curve := DeclineCurve(100, rate, 6)
		for _, q := range curve {
			assert.Equal(t, 100.0, q)
		}
	}
}

func TestDeclineCurve_NoMonths(t *testing.T) {
	assert.Nil(t, DeclineCurve(100, 0.1, 0))
	assert.Nil(t, DeclineCurve(100, 0.1, -3))
}

func TestCumulativeVolume(t *testing.T) {
	assert.Equal(t, 300.0, CumulativeVolume(DeclineCurve(100, 0, 3)))
	assert.Equal(t, 0.0, CumulativeVolume(nil))
}

package riskmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	points := []Point{{2024, 65}, {2025, 75}, {2030, 130}, {2050, 250}}

	t.Run("should hit knots exactly", func(t *testing.T) {
		assert.InDelta(t, 75.0, Interpolate(points, 2025), 1e-9)
		assert.InDelta(t, 130.0, Interpolate(points, 2030), 1e-9)
	})

	t.Run("should interpolate between knots", func(t *testing.T) {
		// halfway between 2025 and 2030
		assert.InDelta(t, 102.5, Interpolate(points, 2027.5), 1e-9)
	})

	t.Run("should clamp outside the calibration range", func(t *testing.T) {
		assert.InDelta(t, 65.0, Interpolate(points, 2000), 1e-9)
		assert.InDelta(t, 250.0, Interpolate(points, 2100), 1e-9)
	})

	t.Run("should handle empty and single-point curves", func(t *testing.T) {
		assert.Equal(t, 0.0, Interpolate(nil, 2030))
		assert.Equal(t, 5.0, Interpolate([]Point{{1, 5}}, 99))
	})
}

func TestNPV(t *testing.T) {
	t.Run("should discount periods 1..N", func(t *testing.T) {
		// 100 / 1.1 + 100 / 1.21 = 90.909 + 82.645
		got := NPV([]float64{100, 100}, 0.10)
		assert.InDelta(t, 173.55, got, 0.01)
	})

	t.Run("should preserve sign of negative flows", func(t *testing.T) {
		assert.Less(t, NPV([]float64{-100, -100}, 0.08), 0.0)
	})

	t.Run("zero rate sums the flows", func(t *testing.T) {
		assert.InDelta(t, 300.0, NPV([]float64{100, 100, 100}, 0), 1e-9)
	})
}

func TestLogisticCurve(t *testing.T) {
	t.Run("should equal half the supremum at the midpoint", func(t *testing.T) {
		assert.InDelta(t, 0.25, LogisticCurve(2032, 0.5, 0.28, 2032), 1e-9)
	})

	t.Run("should approach the supremum late", func(t *testing.T) {
		got := LogisticCurve(2100, 0.5, 0.28, 2032)
		assert.InDelta(t, 0.5, got, 1e-6)
	})

	t.Run("should be monotone increasing", func(t *testing.T) {
		prev := -1.0
		for year := 2020; year <= 2060; year++ {
			v := LogisticCurve(float64(year), 0.5, 0.28, 2032)
			assert.Greater(t, v, prev)
			prev = v
		}
	})

	t.Run("should not overflow for extreme inputs", func(t *testing.T) {
		assert.False(t, math.IsNaN(LogisticCurve(1e6, 1, 10, 0)))
		assert.False(t, math.IsNaN(LogisticCurve(-1e6, 1, 10, 0)))
	})
}

func TestGumbelQuantile(t *testing.T) {
	t.Run("should compute the 100-year quantile", func(t *testing.T) {
		// mu - sigma*ln(-ln(0.99)) = 50 + 10*4.600
		got, err := GumbelQuantile(50, 10, 100)
		require.NoError(t, err)
		assert.InDelta(t, 96.0, got, 0.1)
	})

	t.Run("should grow with return period", func(t *testing.T) {
		q20, _ := GumbelQuantile(200, 50, 20)
		q100, _ := GumbelQuantile(200, 50, 100)
		assert.Greater(t, q100, q20)
	})

	t.Run("should reject invalid parameters", func(t *testing.T) {
		_, err := GumbelQuantile(50, 0, 100)
		assert.Error(t, err)
		_, err = GumbelQuantile(50, 10, 1)
		assert.Error(t, err)
	})
}

func TestFitGumbel(t *testing.T) {
	t.Run("should recover synthetic parameters within 10 percent", func(t *testing.T) {
		// Ideal quantiles of Gumbel(mu=50, beta=10) over 40 years.
		const mu, beta = 50.0, 10.0
		n := 40
		samples := make([]float64, n)
		for i := 0; i < n; i++ {
			u := (float64(i) + 0.5) / float64(n)
			samples[i] = mu - beta*math.Log(-math.Log(u))
		}

		location, scale, err := FitGumbel(samples)
		require.NoError(t, err)
		assert.InDelta(t, mu, location, mu*0.10)
		assert.InDelta(t, beta, scale, beta*0.10)
	})

	t.Run("should reject too few samples", func(t *testing.T) {
		_, _, err := FitGumbel([]float64{5})
		assert.Error(t, err)
	})
}

func TestExceedance(t *testing.T) {
	t.Run("annual exceedance is 1 - exp(-1/T)", func(t *testing.T) {
		assert.InDelta(t, 1-math.Exp(-0.01), AnnualExceedance(100), 1e-12)
	})

	t.Run("horizon exceedance compounds", func(t *testing.T) {
		got := ExceedanceWithin(100, 30)
		assert.InDelta(t, 1-math.Pow(0.99, 30), got, 1e-12)
	})

	t.Run("degenerate return periods saturate", func(t *testing.T) {
		assert.Equal(t, 1.0, AnnualExceedance(0))
		assert.Equal(t, 1.0, ExceedanceWithin(-5, 10))
	})
}

func TestAdjustedWACC(t *testing.T) {
	assert.InDelta(t, 0.085, AdjustedWACC(0.08, 0.005), 1e-12)
}

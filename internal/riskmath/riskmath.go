// Package riskmath holds the pure numerical primitives shared by the
// transition and physical risk engines.
//
// References: Brealey, Myers & Allen, "Principles of Corporate Finance";
// Coles (2001), "An Introduction to Statistical Modeling of Extreme Values";
// Bass (1969), Management Science.
package riskmath

import (
	"fmt"
	"math"
)

// Point is one knot of a piecewise-linear curve.
type Point struct {
	X float64
	Y float64
}

// Interpolate evaluates a piecewise-linear curve at x. Knots must be in
// ascending X order. Outside the calibration range the nearest endpoint is
// returned; there is no extrapolation.
func Interpolate(points []Point, x float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if x <= points[0].X {
		return points[0].Y
	}
	last := points[len(points)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 0; i < len(points)-1; i++ {
		p0, p1 := points[i], points[i+1]
		if x <= p1.X {
			if p1.X == p0.X {
				return p0.Y
			}
			return p0.Y + (p1.Y-p0.Y)*(x-p0.X)/(p1.X-p0.X)
		}
	}
	return last.Y
}

// NPV discounts a list of cash flows at periods 1..N back to present.
func NPV(cashFlows []float64, rate float64) float64 {
	total := 0.0
	for i, cf := range cashFlows {
		total += cf / math.Pow(1+rate, float64(i+1))
	}
	return total
}

// AdjustedWACC composes the scenario discount rate from a base WACC and a
// scenario credit spread.
func AdjustedWACC(base, creditSpread float64) float64 {
	return base + creditSpread
}

// LogisticCurve is the sigmoid L / (1 + exp(-k*(t-t0))) used for emission
// reduction trajectories.
func LogisticCurve(t, supremum, steepness, midpoint float64) float64 {
	exponent := -steepness * (t - midpoint)
	if exponent > 500 {
		exponent = 500
	} else if exponent < -500 {
		exponent = -500
	}
	return supremum / (1 + math.Exp(exponent))
}

// GumbelQuantile is the Gumbel Type I (maxima) quantile for a T-year
// return period: x_T = mu - sigma*ln(-ln(1 - 1/T)).
func GumbelQuantile(location, scale, returnPeriod float64) (float64, error) {
	if scale <= 0 {
		return 0, fmt.Errorf("gumbel scale must be positive, got %v", scale)
	}
	if returnPeriod <= 1 {
		return 0, fmt.Errorf("return period must be > 1, got %v", returnPeriod)
	}
	p := 1.0 - 1.0/returnPeriod
	return location - scale*math.Log(-math.Log(p)), nil
}

// FitGumbel estimates Gumbel Type I parameters from annual maxima by the
// method of moments:
//
//	sigma = std * sqrt(6) / pi
//	mu    = mean - 0.5772 * sigma
func FitGumbel(annualMaxima []float64) (location, scale float64, err error) {
	n := len(annualMaxima)
	if n < 2 {
		return 0, 0, fmt.Errorf("need at least 2 annual maxima, got %d", n)
	}
	mean := 0.0
	for _, v := range annualMaxima {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range annualMaxima {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(n)
	std := math.Sqrt(variance)
	if std == 0 {
		std = 1
	}

	scale = std * math.Sqrt(6) / math.Pi
	location = mean - 0.5772*scale
	return location, scale, nil
}

// AnnualExceedance is the probability of at least one exceedance of a
// T-year event in any single year: 1 - exp(-1/T).
func AnnualExceedance(returnPeriod float64) float64 {
	if returnPeriod <= 0 {
		return 1
	}
	return 1 - math.Exp(-1.0/returnPeriod)
}

// ExceedanceWithin is the probability of at least one exceedance within a
// horizon of n years: 1 - (1 - 1/T)^n.
func ExceedanceWithin(returnPeriod float64, horizon int) float64 {
	if returnPeriod <= 0 {
		return 1
	}
	return 1 - math.Pow(1-1.0/returnPeriod, float64(horizon))
}

// PoissonMean scales an annual event frequency by a climate multiplier.
func PoissonMean(baseFrequency, multiplier float64) float64 {
	if multiplier < 0 {
		multiplier = 0
	}
	return baseFrequency * multiplier
}

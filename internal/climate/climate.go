// Package climate maps policy scenarios onto physical climate outcomes:
// warming above the pre-industrial baseline, hazard intensification, and
// sea-level rise.
//
// References: IPCC AR6 WG1 Table SPM.1 (warming projections), Chapter 11
// (extremes), Chapter 9 (sea level); Fischer & Knutti (2015), Nature
// Climate Change.
package climate

import (
	"github.com/PLANiT-Institute/climate-risk/internal/config"
	"github.com/PLANiT-Institute/climate-risk/internal/riskmath"
)

// Warming at 2020 above 1850-1900, deg C. Source: IPCC AR6.
const baselineWarming = 1.1

// sspWarming holds global mean surface temperature change above
// pre-industrial by SSP pathway. Source: IPCC AR6 WG1 Table SPM.1.
var sspWarming = map[string][]riskmath.Point{
	"SSP1-1.9": {
		{X: 2020, Y: 1.1}, {X: 2025, Y: 1.2}, {X: 2030, Y: 1.4}, {X: 2035, Y: 1.5}, {X: 2040, Y: 1.5},
		{X: 2045, Y: 1.5}, {X: 2050, Y: 1.4}, {X: 2060, Y: 1.3}, {X: 2070, Y: 1.3}, {X: 2080, Y: 1.3}, {X: 2100, Y: 1.0},
	},
	"SSP1-2.6": {
		{X: 2020, Y: 1.1}, {X: 2025, Y: 1.2}, {X: 2030, Y: 1.4}, {X: 2035, Y: 1.6}, {X: 2040, Y: 1.7},
		{X: 2045, Y: 1.8}, {X: 2050, Y: 1.8}, {X: 2060, Y: 1.8}, {X: 2070, Y: 1.8}, {X: 2080, Y: 1.8}, {X: 2100, Y: 1.8},
	},
	"SSP2-4.5": {
		{X: 2020, Y: 1.1}, {X: 2025, Y: 1.3}, {X: 2030, Y: 1.5}, {X: 2035, Y: 1.7}, {X: 2040, Y: 1.9},
		{X: 2045, Y: 2.0}, {X: 2050, Y: 2.1}, {X: 2060, Y: 2.3}, {X: 2070, Y: 2.5}, {X: 2080, Y: 2.6}, {X: 2100, Y: 2.7},
	},
	"SSP3-7.0": {
		{X: 2020, Y: 1.1}, {X: 2025, Y: 1.3}, {X: 2030, Y: 1.5}, {X: 2035, Y: 1.8}, {X: 2040, Y: 2.1},
		{X: 2045, Y: 2.3}, {X: 2050, Y: 2.5}, {X: 2060, Y: 2.9}, {X: 2070, Y: 3.3}, {X: 2080, Y: 3.6}, {X: 2100, Y: 3.6},
	},
}

// intensification holds fractional hazard change per degree of warming
// above the 2020 baseline.
// Source: IPCC AR6 WG1 Ch.11 Table 11.1; Knutson et al. (2020) for wind.
var intensification = map[string]struct {
	Frequency float64
	Intensity float64
}{
	"flood":    {Frequency: 0.30, Intensity: 0.07}, // Clausius-Clapeyron
	"typhoon":  {Frequency: 0.05, Intensity: 0.05},
	"heatwave": {Frequency: 1.30, Intensity: 1.0},
	"drought":  {Frequency: 0.15, Intensity: 0.10},
}

// Cat45ShiftPerDegree is the increase in the Cat 4-5 share of landfalling
// typhoons per degree of warming. Source: IPCC AR6 WG1 Ch.11.
const Cat45ShiftPerDegree = 0.13

// Sea-level rise rates, mm/yr. Source: IPCC AR6 WG1 Ch.9.
const (
	slrBaseRatePerYear = 3.7 // observed 2006-2018
	slrRatePerDegree   = 3.0
)

// WarmingAt returns projected warming above pre-industrial for a scenario
// and year. Unknown scenarios default to the intermediate pathway.
func WarmingAt(scenarioID string, year int) float64 {
	pathway := "SSP2-4.5"
	if sc, ok := config.Scenarios[scenarioID]; ok {
		pathway = sc.WarmingPathway
	}
	return riskmath.Interpolate(sspWarming[pathway], float64(year))
}

// WarmingDelta is the incremental warming above the 2020 baseline that
// drives hazard intensification. Never negative.
func WarmingDelta(scenarioID string, year int) float64 {
	d := WarmingAt(scenarioID, year) - baselineWarming
	if d < 0 {
		return 0
	}
	return d
}

// FrequencyMultiplier scales hazard event frequency for a scenario year.
// Always >= 1.
func FrequencyMultiplier(hazard, scenarioID string, year int) float64 {
	params, ok := intensification[hazard]
	if !ok {
		return 1.0
	}
	return 1.0 + params.Frequency*WarmingDelta(scenarioID, year)
}

// IntensityMultiplier scales hazard severity for a scenario year.
// Always >= 1.
func IntensityMultiplier(hazard, scenarioID string, year int) float64 {
	params, ok := intensification[hazard]
	if !ok {
		return 1.0
	}
	return 1.0 + params.Intensity*WarmingDelta(scenarioID, year)
}

// AdjustReturnPeriod shortens a historical return period by a frequency
// multiplier: a 100-year event 1.5x more frequent recurs every ~67 years.
func AdjustReturnPeriod(base, freqMultiplier float64) float64 {
	if freqMultiplier <= 0 {
		return base
	}
	return base / freqMultiplier
}

// SeaLevelRiseMM is the cumulative rise from 2020 to the target year,
// integrating a warming-dependent annual rate.
func SeaLevelRiseMM(scenarioID string, year int) float64 {
	const baseYear = 2020
	if year <= baseYear {
		return 0
	}
	total := 0.0
	for y := baseYear + 1; y <= year; y++ {
		total += slrBaseRatePerYear + slrRatePerDegree*WarmingDelta(scenarioID, y)
	}
	return total
}

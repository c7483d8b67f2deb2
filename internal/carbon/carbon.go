// Package carbon produces scenario carbon-price paths and K-ETS free
// allocation fractions.
//
// References: NGFS Phase IV Scenarios (2023); 환경부 배출권거래제 제3차
// 기본계획 (2020) 및 제4차 할당계획 (2024).
package carbon

import (
	"fmt"

	"github.com/PLANiT-Institute/climate-risk/internal/config"
	"github.com/PLANiT-Institute/climate-risk/internal/riskmath"
)

// Regime selects the carbon pricing scheme an analysis runs under.
type Regime string

const (
	RegimeGlobal Regime = "global" // NGFS global benchmark, USD/tCO2e
	RegimeKETS   Regime = "kets"   // Korean allowance market, KRW/tCO2e
)

// ParseRegime validates a regime tag, defaulting empty to global.
func ParseRegime(tag string) (Regime, error) {
	switch tag {
	case "", string(RegimeGlobal):
		return RegimeGlobal, nil
	case string(RegimeKETS):
		return RegimeKETS, nil
	default:
		return "", fmt.Errorf("%w: %q", config.ErrInvalidRegime, tag)
	}
}

// PriceAt returns the carbon price for a scenario, regime, and year in
// USD/tCO2e. K-ETS prices are converted at a fixed KRW/USD rate. Years
// outside the calibration range clamp to the nearest endpoint.
func PriceAt(scenarioID string, regime Regime, year int) (float64, error) {
	if _, err := config.ScenarioByID(scenarioID); err != nil {
		return 0, err
	}
	switch regime {
	case RegimeGlobal:
		return interpPath(config.NGFSPricePaths[scenarioID], year), nil
	case RegimeKETS:
		return PriceKRW(scenarioID, year) * config.KETSKRWPerTonne, nil
	default:
		return 0, fmt.Errorf("%w: %q", config.ErrInvalidRegime, regime)
	}
}

// PriceKRW returns the K-ETS allowance price in KRW/tCO2e.
func PriceKRW(scenarioID string, year int) float64 {
	path, ok := config.KETSPricePaths[scenarioID]
	if !ok {
		path = config.KETSPricePaths["current_policies"]
	}
	return interpPath(path, year)
}

// BuildPath returns the full interpolated year-by-year price path.
func BuildPath(scenarioID string, regime Regime, yearStart, yearEnd int) ([]config.PricePoint, error) {
	if yearEnd < yearStart {
		return nil, fmt.Errorf("invalid year range %d..%d", yearStart, yearEnd)
	}
	path := make([]config.PricePoint, 0, yearEnd-yearStart+1)
	for y := yearStart; y <= yearEnd; y++ {
		p, err := PriceAt(scenarioID, regime, y)
		if err != nil {
			return nil, err
		}
		path = append(path, config.PricePoint{Year: y, Price: p})
	}
	return path, nil
}

// AllocationFraction returns the K-ETS free allocation fraction for a
// sector and year, in [0, 1]. The base fraction tightens annually and is
// clamped at zero; deficits never imply bankable credits.
func AllocationFraction(sectorTag string, year int) float64 {
	params, _ := config.SectorByTag(sectorTag)
	elapsed := year - config.BaseYear
	if elapsed < 0 {
		elapsed = 0
	}
	frac := params.KETSBaseAllocation - params.KETSTightening*float64(elapsed)
	if frac < 0 {
		return 0
	}
	return frac
}

func interpPath(path []config.PricePoint, year int) float64 {
	points := make([]riskmath.Point, len(path))
	for i, p := range path {
		points[i] = riskmath.Point{X: float64(p.Year), Y: p.Price}
	}
	price := riskmath.Interpolate(points, float64(year))
	if price < 0 {
		return 0
	}
	return price
}

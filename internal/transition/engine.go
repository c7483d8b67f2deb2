// Package transition computes the discounted cash-flow impact of climate
// policy on a facility portfolio: carbon cost, energy transition premium,
// demand erosion, transition investment, Scope 3 pass-through, and
// stranded-asset write-downs, discounted at a scenario-adjusted WACC.
//
// References: NGFS Technical Documentation (2023); Bass (1969) for the
// adoption curve; Carbon Tracker Initiative (2023) for stranding;
// Demailly & Quirion (2008) for pass-through; CDP (2023) for Scope 3.
package transition

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/PLANiT-Institute/climate-risk/internal/carbon"
	"github.com/PLANiT-Institute/climate-risk/internal/config"
	"github.com/PLANiT-Institute/climate-risk/internal/facility"
	"github.com/PLANiT-Institute/climate-risk/internal/riskmath"
	"github.com/PLANiT-Institute/climate-risk/pkg/decimal"
)

// PathwayPoint is one year of the emission reduction trajectory.
type PathwayPoint struct {
	Year            int     `json:"year"`
	Scope1Emissions float64 `json:"scope1_emissions"`
	Scope2Emissions float64 `json:"scope2_emissions"`
	TotalEmissions  float64 `json:"total_emissions"`
	ReductionFactor float64 `json:"reduction_factor"`
}

// AnnualImpact is the cost composition for one facility year. The K-ETS
// fields are present only under the kets regime.
type AnnualImpact struct {
	Year               int      `json:"year"`
	CarbonCost         float64  `json:"carbon_cost"`
	EnergyCostIncrease float64  `json:"energy_cost_increase"`
	RevenueImpact      float64  `json:"revenue_impact"`
	TransitionCapex    float64  `json:"transition_capex"`
	TransitionOpex     float64  `json:"transition_opex"`
	Scope3Impact       float64  `json:"scope3_impact"`
	StrandedWritedown  float64  `json:"stranded_asset_writedown"`
	DeltaEBITDA        float64  `json:"delta_ebitda"`
	TotalEmissions     float64  `json:"total_emissions"`
	KETSFreeAllocation *float64 `json:"kets_free_allocation,omitempty"`
	KETSExcess         *float64 `json:"kets_excess_emissions,omitempty"`
	KETSPriceKRW       *float64 `json:"kets_price_krw,omitempty"`
}

// FacilityResult is the full transition profile of one facility.
type FacilityResult struct {
	FacilityID      string         `json:"facility_id"`
	FacilityName    string         `json:"facility_name"`
	Sector          string         `json:"sector"`
	Scenario        string         `json:"scenario"`
	RiskLevel       string         `json:"risk_level"`
	EmissionPathway []PathwayPoint `json:"emission_pathway"`
	AnnualImpacts   []AnnualImpact `json:"annual_impacts"`
	DeltaNPV        float64        `json:"delta_npv"`
	NPVPctOfAssets  float64        `json:"npv_as_pct_of_assets"`
}

// Analysis is the portfolio-level result.
type Analysis struct {
	Scenario               string           `json:"scenario"`
	ScenarioName           string           `json:"scenario_name"`
	PricingRegime          string           `json:"pricing_regime"`
	Facilities             []FacilityResult `json:"facilities"`
	TotalNPV               float64          `json:"total_npv"`
	TotalBaselineEmissions float64          `json:"total_baseline_emissions"`
	AvgRiskLevel           string           `json:"avg_risk_level"`
	Warnings               []string         `json:"warnings,omitempty"`
}

// Risk level thresholds on |dNPV| as a fraction of asset value. Equality
// falls into the stricter bucket.
const (
	highRiskFraction   = 0.10
	mediumRiskFraction = 0.03
)

// Analyse runs the full transition analysis for one scenario over the
// given facilities. yearStart/yearEnd default to the 2025-2050 horizon
// when zero.
func Analyse(ctx context.Context, facilities []facility.Facility, scenarioID string, regime carbon.Regime, yearStart, yearEnd int) (*Analysis, error) {
	sc, err := config.ScenarioByID(scenarioID)
	if err != nil {
		return nil, err
	}
	if regime != carbon.RegimeGlobal && regime != carbon.RegimeKETS {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidRegime, regime)
	}
	if yearStart == 0 {
		yearStart = config.HorizonStart
	}
	if yearEnd == 0 {
		yearEnd = config.HorizonEnd
	}
	if yearEnd < yearStart {
		return nil, fmt.Errorf("invalid year range %d..%d", yearStart, yearEnd)
	}

	// Price lookups are shared across facilities within one analysis.
	pricePath, err := carbon.BuildPath(scenarioID, regime, yearStart, yearEnd)
	if err != nil {
		return nil, err
	}
	prices := make(map[int]float64, len(pricePath))
	for _, p := range pricePath {
		prices[p.Year] = p.Price
	}

	warnings, err := facility.ValidateAll(facilities)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Scenario:      scenarioID,
		ScenarioName:  sc.Name,
		PricingRegime: string(regime),
		Facilities:    make([]FacilityResult, 0, len(facilities)),
		Warnings:      warnings,
	}

	totalNPV := decimal.Zero
	for i := range facilities {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis cancelled: %w", err)
		}
		result := analyseFacility(&facilities[i], sc, regime, prices, yearStart, yearEnd)
		totalNPV = totalNPV.Add(decimal.NewMoney(result.DeltaNPV))
		analysis.TotalBaselineEmissions += facilities[i].EmissionsScope1 + facilities[i].EmissionsScope2
		analysis.Facilities = append(analysis.Facilities, result)
	}
	analysis.TotalNPV = totalNPV.Float64()
	analysis.AvgRiskLevel = dominantRiskLevel(analysis.Facilities)
	return analysis, nil
}

func analyseFacility(f *facility.Facility, sc config.Scenario, regime carbon.Regime, prices map[int]float64, yearStart, yearEnd int) FacilityResult {
	params, _ := f.SectorParams()
	wacc := riskmath.AdjustedWACC(config.DefaultWACC, sc.CreditSpread)
	baselineTotal := f.EmissionsScope1 + f.EmissionsScope2

	result := FacilityResult{
		FacilityID:   f.FacilityID,
		FacilityName: f.Name,
		Sector:       f.Sector,
		Scenario:     sc.ID,
	}

	npv := decimal.Zero
	for year := yearStart; year <= yearEnd; year++ {
		rf := reductionFactor(sc, year)
		scope1 := f.EmissionsScope1 * (1 - rf)
		scope2 := f.EmissionsScope2 * (1 - rf)
		total := scope1 + scope2

		result.EmissionPathway = append(result.EmissionPathway, PathwayPoint{
			Year:            year,
			Scope1Emissions: scope1,
			Scope2Emissions: scope2,
			TotalEmissions:  total,
			ReductionFactor: rf,
		})

		price := prices[year]
		impact := AnnualImpact{Year: year, TotalEmissions: total}

		if regime == carbon.RegimeKETS {
			alloc := carbon.AllocationFraction(f.Sector, year) * baselineTotal
			excess := math.Max(0, total-alloc)
			priceKRW := carbon.PriceKRW(sc.ID, year)
			impact.CarbonCost = excess * price
			impact.KETSFreeAllocation = &alloc
			impact.KETSExcess = &excess
			impact.KETSPriceKRW = &priceKRW
		} else {
			impact.CarbonCost = total * price
		}

		impact.EnergyCostIncrease = energyCostIncrease(params, f.AnnualRevenue, rf)
		impact.RevenueImpact = revenueImpact(params, sc.ID, f.AnnualRevenue, impact.CarbonCost)
		impact.TransitionCapex = f.AssetsValue * params.TransitionCapex * (1 + 10*rf)
		impact.TransitionOpex = f.AssetsValue * params.TransitionOpex * (1 + 10*rf)
		impact.Scope3Impact = f.EmissionsScope3 * price * params.Scope3Exposure

		// Forced write-downs hit the CAPEX column for sectors with a
		// stranding schedule.
		impact.StrandedWritedown = f.AssetsValue * params.StrandedRate
		impact.TransitionCapex += impact.StrandedWritedown

		impact.DeltaEBITDA = -(impact.CarbonCost + impact.EnergyCostIncrease +
			impact.RevenueImpact + impact.TransitionCapex + impact.TransitionOpex +
			impact.Scope3Impact)
		result.AnnualImpacts = append(result.AnnualImpacts, impact)

		discount := math.Pow(1+wacc, float64(year-yearStart+1))
		npv = npv.Add(decimal.NewMoney(impact.DeltaEBITDA).Div(discount))
	}

	result.DeltaNPV = npv.Float64()
	if f.AssetsValue > 0 {
		result.NPVPctOfAssets = result.DeltaNPV / f.AssetsValue * 100
	}
	result.RiskLevel = RiskLevel(result.DeltaNPV, f.AssetsValue)
	return result
}

// reductionFactor follows a logistic S-curve calibrated so the horizon-end
// value matches the scenario's reduction target.
func reductionFactor(sc config.Scenario, year int) float64 {
	if year <= config.BaseYear {
		return 0
	}
	return riskmath.LogisticCurve(float64(year), sc.ReductionTarget, sc.SCurveSteepness, sc.SCurveMidpoint)
}

// energyCostIncrease prices the clean-energy premium on the transitioned
// share of the energy bill; efficiency savings partially offset the uplift.
func energyCostIncrease(params config.SectorParams, revenue, rf float64) float64 {
	return params.EnergyCostShare * revenue * config.GreenEnergyPremium * rf * (1 - 0.5*rf)
}

// revenueImpact combines pass-through demand erosion, the residual cost
// burden, and structural demand loss for fossil-exposed sectors under
// ambitious scenarios. Capped at half of revenue as a solvency floor.
func revenueImpact(params config.SectorParams, scenarioID string, revenue, carbonCost float64) float64 {
	if revenue <= 0 {
		return 0
	}
	costRatio := carbonCost / revenue
	priceEffect := revenue * costRatio * params.CostPassthrough * params.DemandElasticity
	costBurden := carbonCost * (1 - params.CostPassthrough) * 0.1

	structural := 0.0
	if scenarioID == "net_zero_2050" || scenarioID == "below_2c" {
		structural = revenue * params.StructuralShift
	}
	return math.Min(priceEffect+costBurden+structural, revenue*0.5)
}

// RiskLevel buckets |dNPV| relative to asset value.
func RiskLevel(deltaNPV, assets float64) string {
	if assets <= 0 {
		return "Low"
	}
	fraction := math.Abs(deltaNPV) / assets
	switch {
	case fraction >= highRiskFraction:
		return "High"
	case fraction >= mediumRiskFraction:
		return "Medium"
	default:
		return "Low"
	}
}

func dominantRiskLevel(results []FacilityResult) string {
	counts := map[string]int{}
	for _, r := range results {
		counts[r.RiskLevel]++
	}
	if counts["High"] > counts["Medium"] && counts["High"] > counts["Low"] {
		return "High"
	}
	if counts["Medium"] >= counts["Low"] {
		return "Medium"
	}
	return "Low"
}

// Summary condenses an analysis into portfolio-level figures.
type Summary struct {
	Scenario               string             `json:"scenario"`
	ScenarioName           string             `json:"scenario_name"`
	TotalFacilities        int                `json:"total_facilities"`
	TotalBaselineEmissions float64            `json:"total_baseline_emissions"`
	TotalNPV               float64            `json:"total_npv"`
	HighRiskCount          int                `json:"high_risk_count"`
	MediumRiskCount        int                `json:"medium_risk_count"`
	LowRiskCount           int                `json:"low_risk_count"`
	TopRiskFacilities      []TopRiskFacility  `json:"top_risk_facilities"`
	CostBreakdown          map[string]float64 `json:"cost_breakdown"`
}

// TopRiskFacility is one entry of the worst-exposure ranking.
type TopRiskFacility struct {
	FacilityID string  `json:"facility_id"`
	Name       string  `json:"name"`
	Sector     string  `json:"sector"`
	DeltaNPV   float64 `json:"delta_npv"`
	RiskLevel  string  `json:"risk_level"`
}

// Summarise builds the portfolio summary from a completed analysis.
func Summarise(analysis *Analysis) *Summary {
	s := &Summary{
		Scenario:               analysis.Scenario,
		ScenarioName:           analysis.ScenarioName,
		TotalFacilities:        len(analysis.Facilities),
		TotalBaselineEmissions: analysis.TotalBaselineEmissions,
		TotalNPV:               analysis.TotalNPV,
		CostBreakdown:          map[string]float64{},
	}

	ranked := make([]FacilityResult, len(analysis.Facilities))
	copy(ranked, analysis.Facilities)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].DeltaNPV < ranked[j].DeltaNPV })

	for _, r := range analysis.Facilities {
		switch r.RiskLevel {
		case "High":
			s.HighRiskCount++
		case "Medium":
			s.MediumRiskCount++
		default:
			s.LowRiskCount++
		}
		if n := len(r.AnnualImpacts); n > 0 {
			last := r.AnnualImpacts[n-1]
			s.CostBreakdown["carbon_cost"] += last.CarbonCost
			s.CostBreakdown["energy_cost_increase"] += last.EnergyCostIncrease
			s.CostBreakdown["revenue_impact"] += last.RevenueImpact
			s.CostBreakdown["transition_opex"] += last.TransitionOpex
		}
	}
	for i, r := range ranked {
		if i >= 5 {
			break
		}
		s.TopRiskFacilities = append(s.TopRiskFacilities, TopRiskFacility{
			FacilityID: r.FacilityID, Name: r.FacilityName, Sector: r.Sector,
			DeltaNPV: r.DeltaNPV, RiskLevel: r.RiskLevel,
		})
	}
	return s
}

// Comparison places the four scenarios side by side.
type Comparison struct {
	Scenarios        []string                    `json:"scenarios"`
	NPVComparison    []NPVEntry                  `json:"npv_comparison"`
	EmissionPathways map[string][]PathwayTotal   `json:"emission_pathways"`
	RiskDistribution map[string]map[string]int   `json:"risk_distribution"`
	CostTrends       map[string][]CostTrendPoint `json:"cost_trends"`
}

type NPVEntry struct {
	Scenario     string  `json:"scenario"`
	ScenarioName string  `json:"scenario_name"`
	TotalNPV     float64 `json:"total_npv"`
	AvgRiskLevel string  `json:"avg_risk_level"`
}

type PathwayTotal struct {
	Year           int     `json:"year"`
	TotalEmissions float64 `json:"total_emissions"`
}

type CostTrendPoint struct {
	Year      int     `json:"year"`
	TotalCost float64 `json:"total_cost"`
}

// Compare runs the analysis for every scenario under one regime.
func Compare(ctx context.Context, facilities []facility.Facility, regime carbon.Regime) (*Comparison, error) {
	cmp := &Comparison{
		Scenarios:        config.ScenarioIDs(),
		EmissionPathways: map[string][]PathwayTotal{},
		RiskDistribution: map[string]map[string]int{},
		CostTrends:       map[string][]CostTrendPoint{},
	}

	for _, id := range cmp.Scenarios {
		analysis, err := Analyse(ctx, facilities, id, regime, 0, 0)
		if err != nil {
			return nil, err
		}
		cmp.NPVComparison = append(cmp.NPVComparison, NPVEntry{
			Scenario: id, ScenarioName: analysis.ScenarioName,
			TotalNPV: analysis.TotalNPV, AvgRiskLevel: analysis.AvgRiskLevel,
		})

		yearly := map[int]float64{}
		costs := map[int]float64{}
		dist := map[string]int{}
		for _, f := range analysis.Facilities {
			dist[f.RiskLevel]++
			for _, pt := range f.EmissionPathway {
				yearly[pt.Year] += pt.TotalEmissions
			}
			for _, ai := range f.AnnualImpacts {
				costs[ai.Year] += math.Abs(ai.DeltaEBITDA)
			}
		}
		cmp.RiskDistribution[id] = dist
		for _, y := range sortedYears(yearly) {
			cmp.EmissionPathways[id] = append(cmp.EmissionPathways[id], PathwayTotal{y, yearly[y]})
		}
		for _, y := range sortedYears(costs) {
			cmp.CostTrends[id] = append(cmp.CostTrends[id], CostTrendPoint{y, costs[y]})
		}
	}
	return cmp, nil
}

func sortedYears(m map[int]float64) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

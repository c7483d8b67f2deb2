package config

import (
	"errors"
	"fmt"
	"sort"
)

// Base year of the emission-reduction and allocation schedules, and the
// earliest physical assessment year; climate projections count from 2020.
const (
	BaseYear        = 2024
	DefaultWACC     = 0.08
	HorizonStart    = 2025
	HorizonEnd      = 2050
	KETSKRWPerTonne = 0.00075 // 1 KRW in USD (1 USD ~ 1,330 KRW)
)

var (
	ErrInvalidScenario  = errors.New("invalid scenario")
	ErrInvalidRegime    = errors.New("invalid pricing regime")
	ErrInvalidFramework = errors.New("invalid framework")
)

// PricePoint is one calibration knot of a carbon-price path.
type PricePoint struct {
	Year  int     `json:"year"`
	Price float64 `json:"price"`
}

// Scenario is one NGFS-style policy scenario.
// Source: NGFS Phase IV Scenarios (2023); carbon price ranges from the
// NGFS Scenario Explorer (IIASA).
type Scenario struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	WarmingPathway  string  `json:"warming_pathway"` // IPCC SSP identifier
	ReductionTarget float64 `json:"emissions_reduction_target"`
	CreditSpread    float64 `json:"credit_spread"` // added to base WACC
	SCurveSteepness float64 `json:"-"`
	SCurveMidpoint  float64 `json:"-"`
}

var Scenarios = map[string]Scenario{
	"net_zero_2050": {
		ID:              "net_zero_2050",
		Name:            "Net Zero 2050",
		Description:     "1.5°C 목표 달성을 위한 즉각적이고 원활한 전환",
		WarmingPathway:  "SSP1-1.9",
		ReductionTarget: 0.50,
		CreditSpread:    0.005, // +50bp, orderly transition
		SCurveSteepness: 0.28,
		SCurveMidpoint:  2032,
	},
	"below_2c": {
		ID:              "below_2c",
		Name:            "Below 2°C",
		Description:     "2°C 미만 목표를 위한 점진적 전환",
		WarmingPathway:  "SSP1-2.6",
		ReductionTarget: 0.40,
		CreditSpread:    0.0075,
		SCurveSteepness: 0.32,
		SCurveMidpoint:  2035,
	},
	"delayed_transition": {
		ID:              "delayed_transition",
		Name:            "Delayed Transition",
		Description:     "2030년까지 정책 지연 후 급격한 전환",
		WarmingPathway:  "SSP2-4.5",
		ReductionTarget: 0.30,
		CreditSpread:    0.015, // policy uncertainty premium
		SCurveSteepness: 0.42,
		SCurveMidpoint:  2038,
	},
	"current_policies": {
		ID:              "current_policies",
		Name:            "Current Policies",
		Description:     "현재 정책 유지, 제한적 추가 조치",
		WarmingPathway:  "SSP3-7.0",
		ReductionTarget: 0.15,
		CreditSpread:    0.020, // highest physical risk premium
		SCurveSteepness: 0.33,
		SCurveMidpoint:  2036,
	},
}

// ScenarioIDs returns the scenario identifiers in a stable order.
func ScenarioIDs() []string {
	ids := make([]string, 0, len(Scenarios))
	for id := range Scenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ScenarioByID resolves a scenario tag or fails with ErrInvalidScenario.
func ScenarioByID(id string) (Scenario, error) {
	sc, ok := Scenarios[id]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrInvalidScenario, id)
	}
	return sc, nil
}

// NGFSPricePaths holds the eight-knot global carbon price paths, USD/tCO2e.
// Source: NGFS Phase IV Scenarios (2023).
var NGFSPricePaths = map[string][]PricePoint{
	"net_zero_2050": {
		{2024, 65}, {2025, 75}, {2027, 100}, {2030, 130},
		{2035, 170}, {2040, 210}, {2045, 235}, {2050, 250},
	},
	"below_2c": {
		{2024, 50}, {2025, 60}, {2027, 78}, {2030, 100},
		{2035, 135}, {2040, 165}, {2045, 185}, {2050, 200},
	},
	"delayed_transition": {
		{2024, 40}, {2025, 50}, {2027, 60}, {2030, 90},
		{2035, 130}, {2040, 160}, {2045, 175}, {2050, 180},
	},
	"current_policies": {
		{2024, 20}, {2025, 25}, {2027, 30}, {2030, 40},
		{2035, 52}, {2040, 62}, {2045, 72}, {2050, 80},
	},
}

// KETSPricePaths holds the Korean allowance market paths, KRW/tCO2e.
// Source: KRX historical prices + Ministry of Environment 4th plan projections.
var KETSPricePaths = map[string][]PricePoint{
	"net_zero_2050": {
		{2024, 15000}, {2025, 22000}, {2027, 35000}, {2030, 55000},
		{2035, 80000}, {2040, 110000}, {2045, 130000}, {2050, 150000},
	},
	"below_2c": {
		{2024, 15000}, {2025, 20000}, {2027, 28000}, {2030, 42000},
		{2035, 60000}, {2040, 80000}, {2045, 95000}, {2050, 110000},
	},
	"delayed_transition": {
		{2024, 15000}, {2025, 18000}, {2027, 22000}, {2030, 35000},
		{2035, 55000}, {2040, 75000}, {2045, 85000}, {2050, 90000},
	},
	"current_policies": {
		{2024, 15000}, {2025, 16000}, {2027, 18000}, {2030, 22000},
		{2035, 28000}, {2040, 35000}, {2045, 40000}, {2050, 45000},
	},
}

// SectorParams carries the per-sector calibration used by both risk engines.
//
// Sources: IEA Energy Efficiency Indicators (2023) for energy cost shares;
// Demailly & Quirion (2008) and Reinaud (2008) for elasticities and
// pass-through; CDP Supply Chain Report (2023) for Scope 3 exposure;
// Carbon Tracker Initiative (2023) for stranding; 환경부 제4차 배출권
// 할당계획 (2024) for K-ETS allocation; ILO (2019) for outdoor exposure.
type SectorParams struct {
	Tag                string
	EnergyCostShare    float64 // fraction of revenue spent on energy
	DemandElasticity   float64
	CostPassthrough    float64
	Scope3Exposure     float64
	TransitionCapex    float64 // annual CAPEX rate on asset value
	TransitionOpex     float64
	StrandedRate       float64 // nonzero only for stranding-scheduled sectors
	LearningRate       float64 // annual clean-technology cost decline
	StructuralShift    float64 // annual demand loss under ambitious scenarios
	KETSBaseAllocation float64
	KETSTightening     float64 // allocation percentage points lost per year
	OutdoorExposure    float64
	WaterIntensity     float64
}

var Sectors = map[string]SectorParams{
	"steel": {
		Tag: "steel", EnergyCostShare: 0.25, DemandElasticity: 0.10,
		CostPassthrough: 0.40, Scope3Exposure: 0.08,
		TransitionCapex: 0.008, TransitionOpex: 0.003,
		LearningRate: 0.04, StructuralShift: 0.010,
		KETSBaseAllocation: 0.97, KETSTightening: 0.010,
		OutdoorExposure: 0.30, WaterIntensity: 0.15,
	},
	"petrochemical": {
		Tag: "petrochemical", EnergyCostShare: 0.20, DemandElasticity: 0.08,
		CostPassthrough: 0.45, Scope3Exposure: 0.15,
		TransitionCapex: 0.007, TransitionOpex: 0.003,
		LearningRate: 0.04, StructuralShift: 0.008,
		KETSBaseAllocation: 0.95, KETSTightening: 0.012,
		OutdoorExposure: 0.25, WaterIntensity: 0.12,
	},
	"cement": {
		Tag: "cement", EnergyCostShare: 0.30, DemandElasticity: 0.12,
		CostPassthrough: 0.60, Scope3Exposure: 0.06,
		TransitionCapex: 0.008, TransitionOpex: 0.003,
		LearningRate: 0.03, StructuralShift: 0.0,
		KETSBaseAllocation: 0.97, KETSTightening: 0.010,
		OutdoorExposure: 0.35, WaterIntensity: 0.05,
	},
	"utilities": {
		Tag: "utilities", EnergyCostShare: 0.40, DemandElasticity: 0.20,
		CostPassthrough: 0.80, Scope3Exposure: 0.05,
		TransitionCapex: 0.009, TransitionOpex: 0.004,
		StrandedRate: 0.010, // coal-heavy generation fleet
		LearningRate: 0.08, StructuralShift: 0.015,
		KETSBaseAllocation: 0.90, KETSTightening: 0.015,
		OutdoorExposure: 0.40, WaterIntensity: 0.20,
	},
	"oil_gas": {
		Tag: "oil_gas", EnergyCostShare: 0.15, DemandElasticity: 0.15,
		CostPassthrough: 0.50, Scope3Exposure: 0.25,
		TransitionCapex: 0.008, TransitionOpex: 0.003,
		StrandedRate: 0.008,
		LearningRate: 0.05, StructuralShift: 0.020,
		KETSBaseAllocation: 0.93, KETSTightening: 0.013,
		OutdoorExposure: 0.35, WaterIntensity: 0.10,
	},
	"shipping": {
		Tag: "shipping", EnergyCostShare: 0.35, DemandElasticity: 0.15,
		CostPassthrough: 0.35, Scope3Exposure: 0.10,
		TransitionCapex: 0.006, TransitionOpex: 0.002,
		LearningRate: 0.04, StructuralShift: 0.010,
		KETSBaseAllocation: 0.95, KETSTightening: 0.010,
		OutdoorExposure: 0.50, WaterIntensity: 0.03,
	},
	"automotive": {
		Tag: "automotive", EnergyCostShare: 0.08, DemandElasticity: 0.30,
		CostPassthrough: 0.30, Scope3Exposure: 0.20,
		TransitionCapex: 0.004, TransitionOpex: 0.002,
		LearningRate: 0.10, StructuralShift: 0.0,
		KETSBaseAllocation: 0.90, KETSTightening: 0.015,
		OutdoorExposure: 0.15, WaterIntensity: 0.06,
	},
	"electronics": {
		Tag: "electronics", EnergyCostShare: 0.10, DemandElasticity: 0.05,
		CostPassthrough: 0.25, Scope3Exposure: 0.08,
		TransitionCapex: 0.003, TransitionOpex: 0.001,
		LearningRate: 0.08, StructuralShift: 0.0,
		KETSBaseAllocation: 0.92, KETSTightening: 0.012,
		OutdoorExposure: 0.05, WaterIntensity: 0.18,
	},
	"real_estate": {
		Tag: "real_estate", EnergyCostShare: 0.12, DemandElasticity: 0.05,
		CostPassthrough: 0.70, Scope3Exposure: 0.04,
		TransitionCapex: 0.003, TransitionOpex: 0.001,
		LearningRate: 0.06, StructuralShift: 0.0,
		KETSBaseAllocation: 0.85, KETSTightening: 0.020,
		OutdoorExposure: 0.20, WaterIntensity: 0.03,
	},
	"financial": {
		Tag: "financial", EnergyCostShare: 0.03, DemandElasticity: 0.02,
		CostPassthrough: 0.60, Scope3Exposure: 0.03,
		TransitionCapex: 0.001, TransitionOpex: 0.0004,
		LearningRate: 0.05, StructuralShift: 0.0,
		KETSBaseAllocation: 0.80, KETSTightening: 0.020,
		OutdoorExposure: 0.02, WaterIntensity: 0.01,
	},
}

// DefaultSector is applied to unrecognised sector tags, which are accepted
// with a warning rather than rejected.
var DefaultSector = SectorParams{
	Tag: "default", EnergyCostShare: 0.10, DemandElasticity: 0.15,
	CostPassthrough: 0.50, Scope3Exposure: 0.05,
	TransitionCapex: 0.004, TransitionOpex: 0.0015,
	LearningRate: 0.04, StructuralShift: 0.0,
	KETSBaseAllocation: 0.85, KETSTightening: 0.015,
	OutdoorExposure: 0.15, WaterIntensity: 0.05,
}

// SectorTags returns the recognised sector tags, sorted.
func SectorTags() []string {
	tags := make([]string, 0, len(Sectors))
	for tag := range Sectors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SectorByTag resolves sector parameters; unknown tags fall back to
// DefaultSector with known=false so callers can emit a warning.
func SectorByTag(tag string) (params SectorParams, known bool) {
	if p, ok := Sectors[tag]; ok {
		return p, true
	}
	return DefaultSector, false
}

// GreenEnergyPremium is the relative cost premium of transitioned energy
// supply over the incumbent mix.
// Source: IEA WEO 2023 levelised cost spreads for firmed clean power.
const GreenEnergyPremium = 0.60

// RegulatoryDeadline is one upcoming disclosure or trading-scheme milestone.
type RegulatoryDeadline struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Source: 금융위원회 'ESG 공시 제도 도입 방안' (2023); ISSB IFRS S1/S2;
// 환경부 배출권거래제 제4차 기본계획 (2024); EU Regulation 2023/956.
var RegulatoryDeadlines = []RegulatoryDeadline{
	{"issb_effective", "ISSB (IFRS S1/S2) 발효", "2024-01-01",
		"글로벌 지속가능성 공시 기준 발효", "ISSB, IFRS S1 para. C1"},
	{"kssb_mandatory", "KSSB 의무 공시", "2025-01-01",
		"자산 2조원 이상 상장사 의무 공시", "금융위원회 (2023.02.16)"},
	{"kets_phase4", "K-ETS 4기", "2026-01-01",
		"배출권거래제 4기 시행 (강화된 할당)", "환경부 (2024)"},
	{"eu_cbam_full", "EU CBAM 본격 시행", "2026-01-01",
		"EU 탄소국경조정제도 본격 시행", "EU Regulation 2023/956"},
	{"kssb_full_scope", "KSSB 전면 적용", "2027-01-01",
		"전 상장사 의무 공시 확대", "금융위원회 (2023.02.16)"},
}

// DeadlinesByKeys filters the schedule preserving its order.
func DeadlinesByKeys(keys []string) []RegulatoryDeadline {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var out []RegulatoryDeadline
	for _, d := range RegulatoryDeadlines {
		if want[d.Key] {
			out = append(out, d)
		}
	}
	return out
}

// Package physical computes expected annual loss per facility across five
// hazards: flood, typhoon, heatwave, drought, and sea-level rise.
//
// References: Coles (2001) for extreme value statistics; IPCC AR6 WG1
// Ch.9/11; Kim & Lee (2019) for depth-damage; KMA NTC for typhoon
// climatology; Munich Re NatCatSERVICE for downtime.
package physical

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/PLANiT-Institute/climate-risk/internal/climate"
	"github.com/PLANiT-Institute/climate-risk/internal/config"
	"github.com/PLANiT-Institute/climate-risk/internal/facility"
	"github.com/PLANiT-Institute/climate-risk/internal/riskmath"
	"github.com/PLANiT-Institute/climate-risk/internal/weather"
	"github.com/PLANiT-Institute/climate-risk/pkg/decimal"
)

// HazardTypes is the canonical evaluation order; output is deterministic
// regardless of fan-out.
var HazardTypes = []string{"flood", "typhoon", "heatwave", "drought", "sea_level_rise"}

var hazardDescriptions = map[string]string{
	"flood":          "집중호우 및 하천 범람으로 인한 침수 위험",
	"typhoon":        "태풍 및 강풍에 의한 시설물 피해 위험",
	"heatwave":       "폭염에 의한 설비 효율 저하 및 근로자 안전 위험",
	"drought":        "가뭄으로 인한 용수 부족 및 생산 차질 위험",
	"sea_level_rise": "해수면 상승에 따른 연안 시설 침수 위험",
}

// Expected-annual-loss thresholds as a fraction of asset value. Equality
// falls into the stricter bucket.
const (
	highRiskFraction   = 0.01
	mediumRiskFraction = 0.001
)

// Hazard is one hazard assessment for one facility.
type Hazard struct {
	HazardType            string  `json:"hazard_type"`
	RiskLevel             string  `json:"risk_level"`
	Probability           float64 `json:"probability"` // annual exceedance
	PotentialLoss         float64 `json:"potential_loss"`
	Description           string  `json:"description"`
	ReturnPeriodYears     float64 `json:"return_period_years"`
	ClimateMultiplier     float64 `json:"climate_change_multiplier"`
	BusinessInterruption  float64 `json:"business_interruption_cost"`
}

// FacilityResult is the hazard profile of one facility.
type FacilityResult struct {
	FacilityID       string   `json:"facility_id"`
	FacilityName     string   `json:"facility_name"`
	Location         string   `json:"location"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	OverallRiskLevel string   `json:"overall_risk_level"`
	Hazards          []Hazard `json:"hazards"`
	TotalEAL         float64  `json:"total_expected_annual_loss"`
	DataSource       string   `json:"data_source"`
}

// Assessment is the portfolio-level physical risk result.
type Assessment struct {
	TotalFacilities int              `json:"total_facilities"`
	RiskSummary     map[string]int   `json:"overall_risk_summary"`
	Facilities      []FacilityResult `json:"facilities"`
	Scenario        string           `json:"scenario"`
	AssessmentYear  int              `json:"assessment_year"`
	Warming         float64          `json:"warming_above_preindustrial"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// Options configures an assessment run.
type Options struct {
	UseLiveWeather bool
	Weather        *weather.Client // required when UseLiveWeather
}

// Assess evaluates every hazard for every facility. Facilities fan out
// concurrently; results collect in input order.
func Assess(ctx context.Context, facilities []facility.Facility, scenarioID string, year int, opts Options) (*Assessment, error) {
	if _, err := config.ScenarioByID(scenarioID); err != nil {
		return nil, err
	}
	if year < config.BaseYear || year > 2100 {
		return nil, fmt.Errorf("assessment year %d out of range [%d, 2100]", year, config.BaseYear)
	}
	if _, err := facility.ValidateAll(facilities); err != nil {
		return nil, err
	}

	assessment := &Assessment{
		TotalFacilities: len(facilities),
		RiskSummary:     map[string]int{"High": 0, "Medium": 0, "Low": 0},
		Facilities:      make([]FacilityResult, len(facilities)),
		Scenario:        scenarioID,
		AssessmentYear:  year,
		Warming:         climate.WarmingAt(scenarioID, year),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range facilities {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("assessment cancelled: %w", err)
			}
			assessment.Facilities[i] = assessFacility(gctx, &facilities[i], scenarioID, year, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, fr := range assessment.Facilities {
		assessment.RiskSummary[fr.OverallRiskLevel]++
		if opts.UseLiveWeather && fr.DataSource == weather.SourceDefault {
			assessment.Warnings = append(assessment.Warnings, fmt.Sprintf(
				"weather archive unavailable for (%.2f, %.2f): %s assessed from regional defaults",
				fr.Latitude, fr.Longitude, fr.FacilityID))
		}
	}
	return assessment, nil
}

func assessFacility(ctx context.Context, f *facility.Facility, scenarioID string, year int, opts Options) FacilityResult {
	stats := weather.Defaults(f.Latitude, f.Longitude)
	if opts.UseLiveWeather && opts.Weather != nil {
		stats = opts.Weather.FetchStats(ctx, f.Latitude, f.Longitude)
	}
	region := config.RegionAt(f.Latitude, f.Longitude)

	hazards := []Hazard{
		floodRisk(f, stats, scenarioID, year),
		typhoonRisk(f, region, scenarioID, year),
		heatwaveRisk(f, stats, scenarioID, year),
		droughtRisk(f, stats, scenarioID, year),
		seaLevelRisk(f, scenarioID, year),
	}

	total := decimal.Zero
	overall := "Low"
	for _, h := range hazards {
		total = total.Add(decimal.NewMoney(h.PotentialLoss))
		overall = stricterLevel(overall, h.RiskLevel)
	}

	return FacilityResult{
		FacilityID:       f.FacilityID,
		FacilityName:     f.Name,
		Location:         f.Location,
		Latitude:         f.Latitude,
		Longitude:        f.Longitude,
		OverallRiskLevel: overall,
		Hazards:          hazards,
		TotalEAL:         total.Float64(),
		DataSource:       stats.Source,
	}
}

// floodRisk integrates asset damage plus downtime over discrete return
// periods using the Gumbel rainfall model and the industrial depth-damage
// curve.
func floodRisk(f *facility.Facility, stats weather.Stats, scenarioID string, year int) Hazard {
	freqMult := climate.FrequencyMultiplier("flood", scenarioID, year)
	intensityMult := climate.IntensityMultiplier("flood", scenarioID, year)

	eal := decimal.Zero
	biTotal := decimal.Zero
	periods := config.FloodReturnPeriods
	for i, period := range periods {
		next := period * 3
		if i+1 < len(periods) {
			next = periods[i+1]
		}
		adjusted := climate.AdjustReturnPeriod(period, freqMult)
		rainfall, err := riskmath.GumbelQuantile(stats.GumbelLocation, stats.GumbelScale, adjusted)
		if err != nil {
			continue
		}
		rainfall *= intensityMult

		// mm of rain to cm of standing water on impervious ground.
		depthCM := rainfall * config.RunoffCoefficient * 0.1
		damage := math.Min(config.DepthDamageCeiling, math.Max(0, depthDamage(depthCM)))

		bi := f.AnnualRevenue / 365 * floodDowntime(depthCM)
		band := 1/period - 1/next
		eal = eal.Add(decimal.NewMoney((f.AssetsValue*damage + bi) * band))
		biTotal = biTotal.Add(decimal.NewMoney(bi * band))
	}

	loss := eal.Float64()
	returnPeriod := climate.AdjustReturnPeriod(periods[2], freqMult)
	return Hazard{
		HazardType:           "flood",
		RiskLevel:            riskLevel(loss, f.AssetsValue),
		Probability:          riskmath.AnnualExceedance(climate.AdjustReturnPeriod(periods[0], freqMult)),
		PotentialLoss:        loss,
		Description:          hazardDescriptions["flood"],
		ReturnPeriodYears:    returnPeriod,
		ClimateMultiplier:    freqMult * intensityMult,
		BusinessInterruption: biTotal.Float64(),
	}
}

// typhoonRisk models annual strike count as Poisson with a regional rate,
// shifts the landfall category mix toward Cat 4-5 with warming, and prices
// wind damage plus conditional downtime.
func typhoonRisk(f *facility.Facility, region config.RegionParams, scenarioID string, year int) Hazard {
	delta := climate.WarmingDelta(scenarioID, year)
	freqMult := climate.FrequencyMultiplier("typhoon", scenarioID, year)
	lambda := riskmath.PoissonMean(region.TyphoonFrequency, freqMult)

	cats := config.TyphoonCategories
	probs := make([]float64, len(cats))
	var lowTotal, highTotal float64
	for i, cat := range cats {
		probs[i] = cat.Probability
		if i < 2 {
			lowTotal += cat.Probability
		} else {
			highTotal += cat.Probability
		}
	}
	shift := math.Min(climate.Cat45ShiftPerDegree*delta*highTotal, lowTotal*0.3)
	probs[0] -= shift * 0.6
	probs[1] -= shift * 0.4
	probs[3] += shift * 0.6
	probs[4] += shift * 0.4

	meanDamage := 0.0
	for i, cat := range cats {
		meanDamage += probs[i] * cat.DamageRate
	}

	directLoss := lambda * meanDamage * f.AssetsValue
	biLoss := lambda * config.TyphoonBusinessInterruption * f.AnnualRevenue
	loss := directLoss + biLoss

	returnPeriod := 999.0
	if lambda > 0 {
		returnPeriod = 1 / lambda
	}
	return Hazard{
		HazardType:           "typhoon",
		RiskLevel:            riskLevel(loss, f.AssetsValue),
		Probability:          math.Min(1, lambda),
		PotentialLoss:        loss,
		Description:          hazardDescriptions["typhoon"],
		ReturnPeriodYears:    returnPeriod,
		ClimateMultiplier:    freqMult,
		BusinessInterruption: biLoss,
	}
}

// heatwaveRisk prices chronic productivity loss from days above 33 deg C,
// weighted by the sector's outdoor work share.
func heatwaveRisk(f *facility.Facility, stats weather.Stats, scenarioID string, year int) Hazard {
	params, _ := f.SectorParams()
	delta := climate.WarmingDelta(scenarioID, year)
	days := stats.HeatwaveDays + config.HeatwaveDaysPerDegree*delta

	loss := days * params.OutdoorExposure * f.AnnualRevenue * config.HeatwaveLossPerDay

	multiplier := 1.0
	if stats.HeatwaveDays > 0 {
		multiplier = days / stats.HeatwaveDays
	}
	return Hazard{
		HazardType:           "heatwave",
		RiskLevel:            riskLevel(loss, f.AssetsValue),
		Probability:          math.Min(1, days/365),
		PotentialLoss:        loss,
		Description:          hazardDescriptions["heatwave"],
		ReturnPeriodYears:    1, // chronic, annual
		ClimateMultiplier:    multiplier,
		BusinessInterruption: loss,
	}
}

// droughtRisk prices water-stress curtailment for water-intensive sectors.
func droughtRisk(f *facility.Facility, stats weather.Stats, scenarioID string, year int) Hazard {
	params, _ := f.SectorParams()
	freqMult := climate.FrequencyMultiplier("drought", scenarioID, year)
	stressDays := stats.DroughtDays * freqMult

	multiplier := params.WaterIntensity * stressDays / 365
	loss := f.AssetsValue * config.DroughtLossRate * multiplier

	returnPeriod := 999.0
	if stressDays > 0 {
		returnPeriod = 365 / stressDays
	}
	return Hazard{
		HazardType:           "drought",
		RiskLevel:            riskLevel(loss, f.AssetsValue),
		Probability:          math.Min(1, stressDays/365),
		PotentialLoss:        loss,
		Description:          hazardDescriptions["drought"],
		ReturnPeriodYears:    returnPeriod,
		ClimateMultiplier:    freqMult,
		BusinessInterruption: 0,
	}
}

// seaLevelRisk applies only to coastal facilities; chronic loss is the
// inundation damage fraction annualised over a ~30 year asset life.
func seaLevelRisk(f *facility.Facility, scenarioID string, year int) Hazard {
	slrMM := climate.SeaLevelRiseMM(scenarioID, year)
	hazard := Hazard{
		HazardType:        "sea_level_rise",
		RiskLevel:         "Low",
		Probability:       math.Min(1, slrMM/10000),
		Description:       hazardDescriptions["sea_level_rise"],
		ReturnPeriodYears: 999,
		ClimateMultiplier: 1,
	}
	if !f.IsCoastal() {
		return hazard
	}

	slrCM := slrMM / 10
	// Slow onset allows partial adaptation; cap the chronic fraction.
	damage := math.Min(0.5, depthDamage(slrCM)*0.3)
	loss := f.AssetsValue * damage / 30

	hazard.RiskLevel = riskLevel(loss, f.AssetsValue)
	hazard.Probability = math.Min(1, slrCM/100)
	hazard.PotentialLoss = loss
	hazard.ReturnPeriodYears = 1
	// Ratio to the rise the observed 3.7 mm/yr rate alone would give since 2020.
	if years := float64(year - 2020); years > 0 {
		hazard.ClimateMultiplier = slrMM / (3.7 * years)
	}
	return hazard
}

func depthDamage(depthCM float64) float64 {
	curve := config.DepthDamageCurve
	points := make([]riskmath.Point, len(curve))
	for i, p := range curve {
		points[i] = riskmath.Point{X: p.DepthCM, Y: p.Damage}
	}
	return riskmath.Interpolate(points, depthCM)
}

func floodDowntime(depthCM float64) float64 {
	for _, band := range config.FloodDowntimeDays {
		if depthCM < band.MaxDepthCM {
			return band.Days
		}
	}
	return config.FloodDowntimeDays[len(config.FloodDowntimeDays)-1].Days
}

func riskLevel(loss, assets float64) string {
	if assets <= 0 {
		return "Low"
	}
	fraction := loss / assets
	switch {
	case fraction >= highRiskFraction:
		return "High"
	case fraction >= mediumRiskFraction:
		return "Medium"
	default:
		return "Low"
	}
}

var levelRank = map[string]int{"Low": 0, "Medium": 1, "High": 2}

func stricterLevel(a, b string) string {
	if levelRank[b] > levelRank[a] {
		return b
	}
	return a
}

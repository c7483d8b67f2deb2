package config

// Regional hazard calibration for the Korean peninsula, clustered into six
// KMA climate districts.

// RegionParams holds the per-district hazard baselines.
//
// Sources: KMA 30-year statistical analysis 1991-2020 (Gumbel fits);
// KMA National Typhoon Center 1951-2023 (strike frequency); KMA Climate
// Change Scenario Report 2020 (heatwave days); K-water National Water
// Resources Plan 2021-2030 (drought stress days).
type RegionParams struct {
	Name                string
	GumbelLocation      float64 // annual-max daily precipitation, mm
	GumbelScale         float64
	TyphoonFrequency    float64 // direct strikes per year
	HeatwaveDays        float64 // annual days above 33°C, 1991-2020 average
	DroughtDays         float64 // annual industrial water stress days
	Coastal             bool
}

var Regions = map[string]RegionParams{
	"coastal_south":  {"coastal_south", 220, 55, 1.40, 12, 15, true},
	"coastal_east":   {"coastal_east", 200, 50, 0.90, 10, 20, true},
	"coastal_west":   {"coastal_west", 180, 48, 0.70, 14, 18, true},
	"inland_central": {"inland_central", 160, 42, 0.25, 16, 22, false},
	"inland_south":   {"inland_south", 175, 45, 0.45, 18, 25, false},
	"mountain":       {"mountain", 150, 38, 0.15, 6, 12, false},
}

// RegionAt classifies coordinates into one of the six districts.
// Source: KMA climate district boundaries, approximated by lat/lon bands.
func RegionAt(lat, lon float64) RegionParams {
	switch {
	case lat < 35.2 && lon > 128.5:
		return Regions["coastal_east"]
	case lat < 35.2:
		return Regions["coastal_south"]
	case lon >= 129.0:
		return Regions["coastal_east"]
	case lon < 126.7:
		return Regions["coastal_west"]
	case lat > 36.5 && lon > 128.0:
		return Regions["mountain"]
	case lat < 36.5 && lon > 127.5:
		return Regions["inland_south"]
	default:
		return Regions["inland_central"]
	}
}

// DepthDamagePoint maps inundation depth (cm) to a damage fraction of
// asset value for industrial structures.
// Source: USACE depth-damage functions adapted per Kim & Lee (2019),
// J. Korea Water Resources Association 52(S-1). Damage is capped at 0.60.
type DepthDamagePoint struct {
	DepthCM float64
	Damage  float64
}

var DepthDamageCurve = []DepthDamagePoint{
	{0, 0.00}, {10, 0.03}, {30, 0.08}, {50, 0.15},
	{100, 0.30}, {150, 0.45}, {200, 0.58}, {300, 0.60},
}

const DepthDamageCeiling = 0.60

// RunoffCoefficient converts rainfall to standing water on heavily
// impervious industrial surfaces.
// Source: MOLIT 하수도시설기준 (2019), Table 3.2.
const RunoffCoefficient = 0.80

// FloodReturnPeriods are the knots of the discrete EAL integration.
var FloodReturnPeriods = []float64{5, 10, 20, 50, 100, 200, 500}

// TyphoonCategory carries the landfall probability, damage ratio, and
// downtime for one Saffir-Simpson band.
// Sources: KMA NTC landfall statistics (distribution); HAZUS-MH wind
// damage functions scaled to Korean industrial construction (damage);
// Munich Re NatCatSERVICE (downtime).
type TyphoonCategory struct {
	Name        string
	Probability float64
	DamageRate  float64
	DowntimeDay float64
}

var TyphoonCategories = []TyphoonCategory{
	{"category_1", 0.45, 0.006, 3},
	{"category_2", 0.30, 0.015, 7},
	{"category_3", 0.18, 0.040, 15},
	{"category_4", 0.06, 0.100, 30},
	{"category_5", 0.01, 0.220, 60},
}

// TyphoonBusinessInterruption is the revenue share lost per direct strike.
const TyphoonBusinessInterruption = 0.03

// Flood downtime by inundation depth band, days.
// Source: Munich Re NatCatSERVICE 2023, Table A3.
var FloodDowntimeDays = []struct {
	MaxDepthCM float64
	Days       float64
}{
	{30, 5}, {100, 15}, {200, 45}, {1 << 20, 90},
}

// Heatwave and drought scaling.
const (
	HeatwaveDaysPerDegree = 4.0 // Source: IPCC AR6 WG1 Ch.11; Kim et al. (2020)
	HeatwaveLossPerDay    = 0.004
	DroughtLossRate       = 0.016
)

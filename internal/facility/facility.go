// Package facility defines the validated facility record and the built-in
// portfolio loaded at startup.
package facility

import (
	"fmt"

	"github.com/PLANiT-Institute/climate-risk/internal/config"
)

// Facility is one industrial site with its emissions and financial state.
// All monetary values are USD; emissions are tCO2e/yr.
type Facility struct {
	FacilityID string  `json:"facility_id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Company    string  `json:"company"`
	Sector     string  `json:"sector" binding:"required"`
	Location   string  `json:"location"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`

	EmissionsScope1 float64 `json:"current_emissions_scope1"`
	EmissionsScope2 float64 `json:"current_emissions_scope2"`
	EmissionsScope3 float64 `json:"current_emissions_scope3"`

	AnnualRevenue float64 `json:"annual_revenue"`
	EBITDA        float64 `json:"ebitda"` // may be negative
	AssetsValue   float64 `json:"assets_value"`

	// Coastal overrides the latitude/longitude district heuristic for
	// sea-level-rise exposure when set.
	Coastal *bool `json:"coastal,omitempty"`
}

// Validate checks the closed-record invariants. An unknown sector is not an
// error; callers detect it via SectorWarnings.
func (f *Facility) Validate() error {
	if f.FacilityID == "" {
		return fmt.Errorf("facility_id is required")
	}
	if f.Name == "" {
		return fmt.Errorf("facility %s: name is required", f.FacilityID)
	}
	if f.Latitude < -90 || f.Latitude > 90 {
		return fmt.Errorf("facility %s: latitude %v out of range [-90, 90]", f.FacilityID, f.Latitude)
	}
	if f.Longitude < -180 || f.Longitude > 180 {
		return fmt.Errorf("facility %s: longitude %v out of range [-180, 180]", f.FacilityID, f.Longitude)
	}
	if f.EmissionsScope1 < 0 || f.EmissionsScope2 < 0 || f.EmissionsScope3 < 0 {
		return fmt.Errorf("facility %s: emissions must be non-negative", f.FacilityID)
	}
	if f.AnnualRevenue < 0 || f.AssetsValue < 0 {
		return fmt.Errorf("facility %s: revenue and asset value must be non-negative", f.FacilityID)
	}
	return nil
}

// SectorParams resolves the facility's sector calibration, falling back to
// defaults for unrecognised tags.
func (f *Facility) SectorParams() (config.SectorParams, bool) {
	return config.SectorByTag(f.Sector)
}

// IsCoastal reports sea-level-rise exposure: the explicit flag when set,
// otherwise the climate-district heuristic.
func (f *Facility) IsCoastal() bool {
	if f.Coastal != nil {
		return *f.Coastal
	}
	return config.RegionAt(f.Latitude, f.Longitude).Coastal
}

// ValidateAll validates a batch, rejecting duplicates, and returns one
// warning per unrecognised sector tag.
func ValidateAll(facilities []Facility) (warnings []string, err error) {
	seen := make(map[string]bool, len(facilities))
	warned := make(map[string]bool)
	for i := range facilities {
		f := &facilities[i]
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if seen[f.FacilityID] {
			return nil, fmt.Errorf("duplicate facility_id %q", f.FacilityID)
		}
		seen[f.FacilityID] = true
		if _, known := f.SectorParams(); !known && !warned[f.Sector] {
			warned[f.Sector] = true
			warnings = append(warnings, fmt.Sprintf(
				"unknown sector %q: analysed with default sector parameters", f.Sector))
		}
	}
	return warnings, nil
}

// FilterBySector returns the facilities matching a sector tag, or all when
// the tag is empty.
func FilterBySector(facilities []Facility, sector string) []Facility {
	if sector == "" {
		return facilities
	}
	var out []Facility
	for _, f := range facilities {
		if f.Sector == sector {
			out = append(out, f)
		}
	}
	return out
}

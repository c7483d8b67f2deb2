package facility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Facility {
	return Facility{
		FacilityID: "TST-001", Name: "테스트공장", Company: "T Corp", Sector: "steel",
		Latitude: 36.0, Longitude: 129.0,
		EmissionsScope1: 1000, EmissionsScope2: 500, EmissionsScope3: 200,
		AnnualRevenue: 1e9, EBITDA: 1e8, AssetsValue: 2e9,
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts a well-formed record", func(t *testing.T) {
		f := valid()
		assert.NoError(t, f.Validate())
	})

	t.Run("rejects out-of-range coordinates", func(t *testing.T) {
		f := valid()
		f.Latitude = 91
		assert.Error(t, f.Validate())

		f = valid()
		f.Longitude = -181
		assert.Error(t, f.Validate())
	})

	t.Run("rejects negative emissions and financials", func(t *testing.T) {
		f := valid()
		f.EmissionsScope1 = -1
		assert.Error(t, f.Validate())

		f = valid()
		f.AssetsValue = -5
		assert.Error(t, f.Validate())
	})

	t.Run("negative EBITDA is allowed", func(t *testing.T) {
		f := valid()
		f.EBITDA = -1e8
		assert.NoError(t, f.Validate())
	})
}

func TestValidateAll(t *testing.T) {
	t.Run("warns on unknown sector but does not fail", func(t *testing.T) {
		f := valid()
		f.Sector = "vertical_farming"
		warnings, err := ValidateAll([]Facility{f})
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "vertical_farming")
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := ValidateAll([]Facility{valid(), valid()})
		assert.Error(t, err)
	})

	t.Run("deduplicates warnings per sector tag", func(t *testing.T) {
		a, b := valid(), valid()
		a.Sector, b.Sector = "space_mining", "space_mining"
		b.FacilityID = "TST-002"
		warnings, err := ValidateAll([]Facility{a, b})
		require.NoError(t, err)
		assert.Len(t, warnings, 1)
	})
}

func TestSectorParams(t *testing.T) {
	t.Run("known sectors resolve their own parameters", func(t *testing.T) {
		f := valid()
		params, known := f.SectorParams()
		assert.True(t, known)
		assert.Equal(t, "steel", params.Tag)
	})

	t.Run("unknown sectors fall back to defaults", func(t *testing.T) {
		f := valid()
		f.Sector = "whatever"
		params, known := f.SectorParams()
		assert.False(t, known)
		assert.Equal(t, "default", params.Tag)
	})
}

func TestIsCoastal(t *testing.T) {
	t.Run("explicit flag wins over the heuristic", func(t *testing.T) {
		f := valid() // (36.0, 129.0) classifies coastal_east
		inland := false
		f.Coastal = &inland
		assert.False(t, f.IsCoastal())
	})

	t.Run("heuristic classifies east coast as coastal", func(t *testing.T) {
		f := valid()
		assert.True(t, f.IsCoastal())
	})

	t.Run("heuristic classifies central inland as not coastal", func(t *testing.T) {
		f := valid()
		f.Latitude, f.Longitude = 37.2, 127.07
		assert.False(t, f.IsCoastal())
	})
}

func TestSeed(t *testing.T) {
	seed := Seed()

	t.Run("carries the seventeen built-in facilities", func(t *testing.T) {
		assert.Len(t, seed, 17)
	})

	t.Run("every seed record validates with no warnings", func(t *testing.T) {
		warnings, err := ValidateAll(seed)
		require.NoError(t, err)
		assert.Empty(t, warnings)
	})

	t.Run("returns a fresh copy each call", func(t *testing.T) {
		a, b := Seed(), Seed()
		a[0].Name = "mutated"
		assert.NotEqual(t, a[0].Name, b[0].Name)
	})
}

func TestFilterBySector(t *testing.T) {
	seed := Seed()

	t.Run("empty tag returns everything", func(t *testing.T) {
		assert.Len(t, FilterBySector(seed, ""), len(seed))
	})

	t.Run("filters to the requested sector", func(t *testing.T) {
		steel := FilterBySector(seed, "steel")
		require.Len(t, steel, 2)
		for _, f := range steel {
			assert.Equal(t, "steel", f.Sector)
		}
	})
}

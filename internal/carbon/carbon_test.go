package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PLANiT-Institute/climate-risk/internal/config"
)

func TestPriceAt(t *testing.T) {
	t.Run("prices are non-negative for every scenario and year", func(t *testing.T) {
		for _, id := range config.ScenarioIDs() {
			for year := 2024; year <= 2050; year++ {
				p, err := PriceAt(id, RegimeGlobal, year)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, p, 0.0, "%s year %d", id, year)
			}
		}
	})

	t.Run("ambitious scenario paths are monotone non-decreasing", func(t *testing.T) {
		for _, id := range []string{"net_zero_2050", "below_2c"} {
			prev := -1.0
			for year := 2024; year <= 2050; year++ {
				p, err := PriceAt(id, RegimeGlobal, year)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, p, prev, "%s year %d", id, year)
				prev = p
			}
		}
	})

	t.Run("should match calibration knots", func(t *testing.T) {
		p, err := PriceAt("net_zero_2050", RegimeGlobal, 2030)
		require.NoError(t, err)
		assert.InDelta(t, 130.0, p, 1e-9)
	})

	t.Run("should clamp outside the calibration range", func(t *testing.T) {
		early, err := PriceAt("net_zero_2050", RegimeGlobal, 2000)
		require.NoError(t, err)
		assert.InDelta(t, 65.0, early, 1e-9)

		late, err := PriceAt("net_zero_2050", RegimeGlobal, 2095)
		require.NoError(t, err)
		assert.InDelta(t, 250.0, late, 1e-9)
	})

	t.Run("kets prices convert from KRW", func(t *testing.T) {
		p, err := PriceAt("net_zero_2050", RegimeKETS, 2030)
		require.NoError(t, err)
		assert.InDelta(t, 55000*config.KETSKRWPerTonne, p, 1e-9)
	})

	t.Run("unknown scenario fails", func(t *testing.T) {
		_, err := PriceAt("net_zero_2060", RegimeGlobal, 2030)
		assert.ErrorIs(t, err, config.ErrInvalidScenario)
	})
}

func TestParseRegime(t *testing.T) {
	t.Run("defaults empty to global", func(t *testing.T) {
		r, err := ParseRegime("")
		require.NoError(t, err)
		assert.Equal(t, RegimeGlobal, r)
	})

	t.Run("rejects unknown tags", func(t *testing.T) {
		_, err := ParseRegime("eu_ets")
		assert.ErrorIs(t, err, config.ErrInvalidRegime)
	})
}

func TestBuildPath(t *testing.T) {
	t.Run("covers every year of the range", func(t *testing.T) {
		path, err := BuildPath("below_2c", RegimeGlobal, 2025, 2050)
		require.NoError(t, err)
		require.Len(t, path, 26)
		assert.Equal(t, 2025, path[0].Year)
		assert.Equal(t, 2050, path[25].Year)
	})

	t.Run("rejects inverted ranges", func(t *testing.T) {
		_, err := BuildPath("below_2c", RegimeGlobal, 2050, 2025)
		assert.Error(t, err)
	})
}

func TestAllocationFraction(t *testing.T) {
	t.Run("stays in the unit interval and never increases", func(t *testing.T) {
		for _, sector := range config.SectorTags() {
			prev := 1.0
			for year := 2024; year <= 2120; year++ {
				frac := AllocationFraction(sector, year)
				assert.GreaterOrEqual(t, frac, 0.0, "%s year %d", sector, year)
				assert.LessOrEqual(t, frac, 1.0, "%s year %d", sector, year)
				assert.LessOrEqual(t, frac, prev, "%s year %d", sector, year)
				prev = frac
			}
		}
	})

	t.Run("matches the tightening schedule", func(t *testing.T) {
		// steel: 0.97 base, 1.0pp per year
		assert.InDelta(t, 0.97, AllocationFraction("steel", 2024), 1e-9)
		assert.InDelta(t, 0.91, AllocationFraction("steel", 2030), 1e-9)
	})

	t.Run("clamps at zero instead of going negative", func(t *testing.T) {
		assert.Equal(t, 0.0, AllocationFraction("financial", 2100))
	})

	t.Run("unknown sectors use defaults", func(t *testing.T) {
		assert.InDelta(t, config.DefaultSector.KETSBaseAllocation, AllocationFraction("mystery", 2024), 1e-9)
	})
}

package climate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarmingAt(t *testing.T) {
	t.Run("matches the projection knots", func(t *testing.T) {
		assert.InDelta(t, 1.5, WarmingAt("net_zero_2050", 2035), 1e-9)
		assert.InDelta(t, 2.5, WarmingAt("current_policies", 2050), 1e-9)
	})

	t.Run("high-emission pathway warms faster", func(t *testing.T) {
		assert.Greater(t, WarmingAt("current_policies", 2050), WarmingAt("net_zero_2050", 2050))
	})

	t.Run("unknown scenarios use the intermediate pathway", func(t *testing.T) {
		assert.InDelta(t, WarmingAt("delayed_transition", 2040), WarmingAt("nonsense", 2040), 1e-9)
	})
}

func TestWarmingDelta(t *testing.T) {
	t.Run("is never negative", func(t *testing.T) {
		for year := 2020; year <= 2100; year += 5 {
			assert.GreaterOrEqual(t, WarmingDelta("net_zero_2050", year), 0.0)
		}
	})

	t.Run("is zero at the 2020 baseline", func(t *testing.T) {
		assert.InDelta(t, 0.0, WarmingDelta("current_policies", 2020), 1e-9)
	})
}

func TestMultipliers(t *testing.T) {
	t.Run("are at least one for every hazard", func(t *testing.T) {
		for _, hazard := range []string{"flood", "typhoon", "heatwave", "drought"} {
			assert.GreaterOrEqual(t, FrequencyMultiplier(hazard, "current_policies", 2050), 1.0, hazard)
			assert.GreaterOrEqual(t, IntensityMultiplier(hazard, "current_policies", 2050), 1.0, hazard)
		}
	})

	t.Run("unknown hazards are neutral", func(t *testing.T) {
		assert.Equal(t, 1.0, FrequencyMultiplier("asteroid", "current_policies", 2050))
	})

	t.Run("flood frequency follows the intensification table", func(t *testing.T) {
		// 2050 current_policies: delta = 2.5 - 1.1 = 1.4 -> 1 + 0.30*1.4
		assert.InDelta(t, 1.42, FrequencyMultiplier("flood", "current_policies", 2050), 1e-9)
	})
}

func TestAdjustReturnPeriod(t *testing.T) {
	assert.InDelta(t, 66.67, AdjustReturnPeriod(100, 1.5), 0.01)
	assert.Equal(t, 100.0, AdjustReturnPeriod(100, 0))
}

func TestSeaLevelRise(t *testing.T) {
	t.Run("is zero at or before the base year", func(t *testing.T) {
		assert.Equal(t, 0.0, SeaLevelRiseMM("current_policies", 2020))
	})

	t.Run("accumulates monotonically", func(t *testing.T) {
		prev := 0.0
		for year := 2021; year <= 2060; year++ {
			slr := SeaLevelRiseMM("current_policies", year)
			assert.Greater(t, slr, prev)
			prev = slr
		}
	})

	t.Run("warmer scenario rises further", func(t *testing.T) {
		assert.Greater(t,
			SeaLevelRiseMM("current_policies", 2050),
			SeaLevelRiseMM("net_zero_2050", 2050))
	})
}

package esg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PLANiT-Institute/climate-risk/internal/config"
	"github.com/PLANiT-Institute/climate-risk/internal/facility"
)

// portfolio returns n facilities with full Scope 1/2 reporting and the
// given Scope 3 coverage.
func portfolio(n int, scope3 float64) []facility.Facility {
	sectors := []string{"steel", "utilities", "electronics", "cement", "oil_gas", "automotive"}
	out := make([]facility.Facility, n)
	for i := range out {
		out[i] = facility.Facility{
			FacilityID: "P-" + string(rune('A'+i)), Name: "사업장", Company: "P Corp",
			Sector: sectors[i%len(sectors)], Latitude: 36, Longitude: 127,
			EmissionsScope1: 1_000_000, EmissionsScope2: 500_000, EmissionsScope3: scope3,
			AnnualRevenue: 2e9, EBITDA: 3e8, AssetsValue: 4e9,
		}
	}
	return out
}

func TestFrameworkWeights(t *testing.T) {
	t.Run("category weights sum to one", func(t *testing.T) {
		for id, fw := range Frameworks {
			sum := 0.0
			for _, cat := range fw.Categories {
				sum += cat.Weight
			}
			assert.InDelta(t, 1.0, sum, 1e-9, id)
		}
	})
}

func TestAssess(t *testing.T) {
	t.Run("rejects unknown frameworks", func(t *testing.T) {
		_, err := Assess(portfolio(6, 0), "sasb")
		assert.ErrorIs(t, err, config.ErrInvalidFramework)
	})

	t.Run("scope 1 and 2 only portfolio scores in the readiness band", func(t *testing.T) {
		assessment, err := Assess(portfolio(6, 0), "tcfd")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, assessment.OverallScore, 70.0)
		assert.LessOrEqual(t, assessment.OverallScore, 90.0)
	})

	t.Run("missing scope 3 surfaces as the top gap", func(t *testing.T) {
		assessment, err := Assess(portfolio(6, 0), "tcfd")
		require.NoError(t, err)
		require.NotEmpty(t, assessment.GapAnalysis)

		top := assessment.GapAnalysis[0]
		assert.Equal(t, "지표 및 목표", top.Category)
		assert.Contains(t, []string{"medium", "high"}, top.Effort)
		require.NotEmpty(t, top.RecommendedActions)
		assert.True(t, strings.Contains(top.RecommendedActions[0], "Scope 3"))
	})

	t.Run("full scope 3 coverage raises the metrics score", func(t *testing.T) {
		without, err := Assess(portfolio(6, 0), "tcfd")
		require.NoError(t, err)
		with, err := Assess(portfolio(6, 800_000), "tcfd")
		require.NoError(t, err)
		assert.Greater(t, with.OverallScore, without.OverallScore)
	})

	t.Run("gap priorities are sorted descending", func(t *testing.T) {
		assessment, err := Assess(portfolio(2, 0), "kssb")
		require.NoError(t, err)
		for i := 1; i < len(assessment.GapAnalysis); i++ {
			assert.GreaterOrEqual(t,
				assessment.GapAnalysis[i-1].PriorityScore,
				assessment.GapAnalysis[i].PriorityScore)
		}
	})

	t.Run("checklist recommendations are collected", func(t *testing.T) {
		assessment, err := Assess(portfolio(6, 0), "issb")
		require.NoError(t, err)
		assert.NotEmpty(t, assessment.Checklist)
		assert.NotEmpty(t, assessment.Recommendations)
	})

	t.Run("deadlines match the framework", func(t *testing.T) {
		kssb, err := Assess(portfolio(6, 0), "kssb")
		require.NoError(t, err)
		require.Len(t, kssb.Deadlines, 3)
		assert.Equal(t, "kssb_mandatory", kssb.Deadlines[0].Key)
	})
}

func TestComplianceLevel(t *testing.T) {
	assert.Equal(t, "선도", ComplianceLevel(90))
	assert.Equal(t, "우수", ComplianceLevel(80))
	assert.Equal(t, "양호", ComplianceLevel(65))
	assert.Equal(t, "보통", ComplianceLevel(50))
	assert.Equal(t, "미흡", ComplianceLevel(49.9))
}

func TestMaturityLevel(t *testing.T) {
	assert.Equal(t, 5, MaturityLevel(86).Level)
	assert.Equal(t, 4, MaturityLevel(71).Level)
	assert.Equal(t, 3, MaturityLevel(51).Level)
	assert.Equal(t, 2, MaturityLevel(31).Level)
	assert.Equal(t, 1, MaturityLevel(30).Level)
}

func TestDisclosure(t *testing.T) {
	now := time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC)

	t.Run("aggregates portfolio emissions", func(t *testing.T) {
		data, err := Disclosure(portfolio(4, 250_000), "tcfd", "P Corp", -1.2e10, now)
		require.NoError(t, err)
		emissions := data.Metrics["emissions"]
		assert.InDelta(t, 4_000_000.0, emissions["scope1_tco2e"], 1e-6)
		assert.InDelta(t, 2_000_000.0, emissions["scope2_tco2e"], 1e-6)
		assert.InDelta(t, 1_000_000.0, emissions["scope3_tco2e"], 1e-6)
		assert.Equal(t, "2026-08-05", data.AssessmentDate)
	})

	t.Run("narrative carries the NPV headline", func(t *testing.T) {
		data, err := Disclosure(portfolio(4, 0), "kssb", "P Corp", -1.2e10, now)
		require.NoError(t, err)
		assert.Contains(t, data.Narrative["strategy"], "12.0십억")
	})

	t.Run("rejects unknown frameworks", func(t *testing.T) {
		_, err := Disclosure(portfolio(1, 0), "gri", "P Corp", 0, now)
		assert.ErrorIs(t, err, config.ErrInvalidFramework)
	})
}

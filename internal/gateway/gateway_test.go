package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PLANiT-Institute/climate-risk/internal/session"
)

func newTestGateway() *Gateway {
	gin.SetMode(gin.TestMode)
	sessions := session.NewStore(session.Config{})
	return NewGateway(Config{RateLimitMax: 10000}, sessions, nil, nil)
}

func do(t *testing.T, g *Gateway, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func sampleFacility() map[string]interface{} {
	return map[string]interface{}{
		"facility_id": "EXT-001", "name": "외부사업장", "company": "Partner Co",
		"sector": "steel", "location": "경북", "latitude": 36.0, "longitude": 129.3,
		"current_emissions_scope1": 5_000_000.0, "current_emissions_scope2": 1_000_000.0,
		"annual_revenue": 1e10, "ebitda": 1.5e9, "assets_value": 1.2e10,
	}
}

func TestHealth(t *testing.T) {
	g := newTestGateway()
	rec := do(t, g, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestScenarioEndpoints(t *testing.T) {
	g := newTestGateway()

	t.Run("lists the four scenarios", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/scenarios", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		scenarios := decode(t, rec)["scenarios"].([]interface{})
		assert.Len(t, scenarios, 4)
	})

	t.Run("returns scenario detail with its price path", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/scenarios/net_zero_2050", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Net Zero 2050", body["name"])
		assert.Len(t, body["carbon_price_path"].([]interface{}), 8)
	})

	t.Run("unknown scenario is a 404 with the error envelope", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/scenarios/net_zero_2060", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decode(t, rec)["detail"], "net_zero_2060")
	})
}

func TestCompanyEndpoints(t *testing.T) {
	g := newTestGateway()

	t.Run("lists seed facilities", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/company/facilities", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 17, decode(t, rec)["count"])
	})

	t.Run("filters by sector", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/company/facilities?sector=steel", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 2, decode(t, rec)["count"])
	})

	t.Run("lists the ten sector tags", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/company/sectors", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["sectors"].([]interface{}), 10)
	})
}

func TestTransitionEndpoints(t *testing.T) {
	g := newTestGateway()

	t.Run("analysis defaults to net zero global", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/transition-risk/analysis", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "net_zero_2050", body["scenario"])
		assert.Equal(t, "global", body["pricing_regime"])
		assert.Len(t, body["facilities"].([]interface{}), 17)
	})

	t.Run("invalid regime is a 400", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/transition-risk/analysis?pricing_regime=eu_ets", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid scenario is a 400", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/transition-risk/analysis?scenario=bogus", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("summary aggregates the portfolio", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/transition-risk/summary?scenario=below_2c", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 17, decode(t, rec)["total_facilities"])
	})

	t.Run("comparison spans the four scenarios", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/transition-risk/comparison", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["scenarios"].([]interface{}), 4)
	})
}

func TestPhysicalEndpoints(t *testing.T) {
	g := newTestGateway()

	t.Run("assessment runs over the seed portfolio", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/physical-risk/assessment?scenario=below_2c&year=2040", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.EqualValues(t, 17, body["total_facilities"])
		assert.EqualValues(t, 2040, body["assessment_year"])
	})

	t.Run("year outside range is a 400", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/physical-risk/assessment?year=2024", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("simulate assesses posted facilities", func(t *testing.T) {
		rec := do(t, g, http.MethodPost, "/api/v1/physical-risk/simulate", map[string]interface{}{
			"scenario":   "below_2c",
			"year":       2040,
			"facilities": []interface{}{sampleFacility()},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, decode(t, rec)["total_facilities"])
	})

	t.Run("simulate without facilities is a 400", func(t *testing.T) {
		rec := do(t, g, http.MethodPost, "/api/v1/physical-risk/simulate", map[string]interface{}{
			"scenario": "below_2c",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestESGEndpoints(t *testing.T) {
	g := newTestGateway()

	t.Run("assessment defaults to tcfd", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/esg/assessment", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "tcfd", body["framework"])
		assert.Greater(t, body["overall_score"].(float64), 0.0)
	})

	t.Run("invalid framework is a 400", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/esg/assessment?framework=gri", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("frameworks are listed", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/esg/frameworks", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["frameworks"].([]interface{}), 3)
	})

	t.Run("disclosure data carries metrics and narrative", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/esg/disclosure-data?framework=kssb", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.NotEmpty(t, body["metrics"])
		assert.NotEmpty(t, body["narrative_sections"])
	})

	t.Run("disclosure report streams an xlsx workbook", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/esg/reports/disclosure?framework=kssb&scenario=below_2c&year=2035", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
		// xlsx is a zip container
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	})

	t.Run("disclosure report serves json on request", func(t *testing.T) {
		rec := do(t, g, http.MethodGet, "/api/v1/esg/reports/disclosure?format=json", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["sheets"].([]interface{}), 8)
	})
}

func TestPartnerSessions(t *testing.T) {
	g := newTestGateway()

	t.Run("full session lifecycle", func(t *testing.T) {
		rec := do(t, g, http.MethodPost, "/api/v1/partner/sessions", map[string]interface{}{
			"company_name": "Partner Co",
			"facilities":   []interface{}{sampleFacility()},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decode(t, rec)
		id := created["partner_id"].(string)
		assert.Len(t, id, 36)
		assert.EqualValues(t, 1, created["facility_count"])

		rec = do(t, g, http.MethodGet,
			fmt.Sprintf("/api/v1/partner/sessions/%s/transition-risk/analysis?scenario=net_zero_2050", id), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		facilities := decode(t, rec)["facilities"].([]interface{})
		require.Len(t, facilities, 1)
		first := facilities[0].(map[string]interface{})
		assert.Equal(t, "EXT-001", first["facility_id"])

		rec = do(t, g, http.MethodDelete, "/api/v1/partner/sessions/"+id, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = do(t, g, http.MethodGet, "/api/v1/partner/sessions/"+id, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown sector is accepted with a warning", func(t *testing.T) {
		f := sampleFacility()
		f["sector"] = "fusion_power"
		rec := do(t, g, http.MethodPost, "/api/v1/partner/sessions", map[string]interface{}{
			"company_name": "Odd Co",
			"facilities":   []interface{}{f},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		warnings := decode(t, rec)["sector_warnings"].([]interface{})
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "fusion_power")
	})

	t.Run("invalid coordinates are rejected", func(t *testing.T) {
		f := sampleFacility()
		f["latitude"] = 123.0
		rec := do(t, g, http.MethodPost, "/api/v1/partner/sessions", map[string]interface{}{
			"company_name": "Bad Co",
			"facilities":   []interface{}{f},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("session scoped physical assessment", func(t *testing.T) {
		rec := do(t, g, http.MethodPost, "/api/v1/partner/sessions", map[string]interface{}{
			"company_name": "Phys Co",
			"facilities":   []interface{}{sampleFacility()},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		id := decode(t, rec)["partner_id"].(string)

		rec = do(t, g, http.MethodGet,
			"/api/v1/partner/sessions/"+id+"/physical-risk/assessment?scenario=below_2c&year=2040", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, decode(t, rec)["total_facilities"])
	})

	t.Run("analysis on a missing session is a 404", func(t *testing.T) {
		rec := do(t, g, http.MethodGet,
			"/api/v1/partner/sessions/11111111-2222-3333-4444-555555555555/transition-risk/analysis", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

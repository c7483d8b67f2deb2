// Package gateway is the thin HTTP facade over the risk engines: routing,
// parameter validation, error mapping, and session scoping. All analytical
// work lives in the engine packages.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PLANiT-Institute/climate-risk/internal/carbon"
	"github.com/PLANiT-Institute/climate-risk/internal/config"
	"github.com/PLANiT-Institute/climate-risk/internal/esg"
	"github.com/PLANiT-Institute/climate-risk/internal/facility"
	"github.com/PLANiT-Institute/climate-risk/internal/physical"
	"github.com/PLANiT-Institute/climate-risk/internal/report"
	"github.com/PLANiT-Institute/climate-risk/internal/session"
	"github.com/PLANiT-Institute/climate-risk/internal/transition"
	"github.com/PLANiT-Institute/climate-risk/internal/weather"
	"github.com/PLANiT-Institute/climate-risk/pkg/messaging"
)

// Gateway is the API gateway
type Gateway struct {
	router      *gin.Engine
	sessions    *session.Store
	weather     *weather.Client
	msgClient   *messaging.Client
	seed        []facility.Facility
	rateLimiter *RateLimiter
	timeout     time.Duration
}

// RateLimiter implements per-client rate limiting
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

// Config holds gateway configuration
type Config struct {
	RequestTimeout  time.Duration
	RateLimitWindow time.Duration
	RateLimitMax    int
}

// NewGateway creates a new API gateway
func NewGateway(cfg Config, sessions *session.Store, weatherClient *weather.Client, msgClient *messaging.Client) *Gateway {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}

	g := &Gateway{
		router:    gin.Default(),
		sessions:  sessions,
		weather:   weatherClient,
		msgClient: msgClient,
		seed:      facility.Seed(),
		timeout:   cfg.RequestTimeout,
		rateLimiter: &RateLimiter{
			requests: make(map[string][]time.Time),
			limit:    cfg.RateLimitMax,
			window:   cfg.RateLimitWindow,
		},
	}

	g.setupRoutes()
	return g
}

func (g *Gateway) setupRoutes() {
	g.router.Use(g.rateLimitMiddleware())
	g.router.Use(g.tracingMiddleware())
	g.router.Use(g.timeoutMiddleware())

	// Health check
	g.router.GET("/health", g.healthCheck)

	// API v1
	v1 := g.router.Group("/api/v1")
	{
		v1.GET("/scenarios", g.listScenarios)
		v1.GET("/scenarios/:id", g.getScenario)

		v1.GET("/company/facilities", g.listFacilities)
		v1.GET("/company/sectors", g.listSectors)

		v1.GET("/transition-risk/analysis", g.transitionAnalysis(nil))
		v1.GET("/transition-risk/summary", g.transitionSummary(nil))
		v1.GET("/transition-risk/comparison", g.transitionComparison(nil))

		v1.GET("/physical-risk/assessment", g.physicalAssessment(nil))
		v1.POST("/physical-risk/simulate", g.physicalSimulate)

		v1.GET("/esg/assessment", g.esgAssessment(nil))
		v1.GET("/esg/disclosure-data", g.esgDisclosure(nil))
		v1.GET("/esg/frameworks", g.listFrameworks)
		v1.GET("/esg/reports/disclosure", g.disclosureReport(nil))

		// Partner sessions: caller-supplied facility sets, 2h sliding TTL.
		partner := v1.Group("/partner/sessions")
		{
			partner.POST("", g.createSession)
			partner.GET("/:id", g.getSession)
			partner.DELETE("/:id", g.deleteSession)
			partner.GET("/:id/facilities", g.sessionFacilities)

			partner.GET("/:id/transition-risk/analysis", g.transitionAnalysis(g.sessionScope))
			partner.GET("/:id/transition-risk/summary", g.transitionSummary(g.sessionScope))
			partner.GET("/:id/transition-risk/comparison", g.transitionComparison(g.sessionScope))
			partner.GET("/:id/physical-risk/assessment", g.physicalAssessment(g.sessionScope))
			partner.GET("/:id/esg/assessment", g.esgAssessment(g.sessionScope))
			partner.GET("/:id/esg/disclosure-data", g.esgDisclosure(g.sessionScope))
			partner.GET("/:id/esg/reports/disclosure", g.disclosureReport(g.sessionScope))
		}
	}
}

// Start starts the gateway
func (g *Gateway) Start(addr string) error {
	return g.router.Run(addr)
}

// Handler exposes the router for embedding in an http.Server.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Middleware

func (g *Gateway) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.rateLimiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (g *Gateway) tracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set("correlation_id", correlationID)
		c.Header("X-Correlation-ID", correlationID)
		c.Next()
	}
}

func (g *Gateway) timeoutMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), g.timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Allow checks if a request is allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	valid := make([]time.Time, 0)
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// Error mapping

var errInvalidParam = errors.New("invalid parameter")

func (g *Gateway) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidParam),
		errors.Is(err, config.ErrInvalidScenario),
		errors.Is(err, config.ErrInvalidRegime),
		errors.Is(err, config.ErrInvalidFramework):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": session.ErrSessionNotFound.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"detail": "request deadline exceeded"})
	case errors.Is(err, context.Canceled):
		c.JSON(499, gin.H{"detail": "request cancelled"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

// Parameter parsing

func (g *Gateway) scenarioParam(c *gin.Context) (string, error) {
	id := c.DefaultQuery("scenario", "net_zero_2050")
	if _, err := config.ScenarioByID(id); err != nil {
		return "", err
	}
	return id, nil
}

func (g *Gateway) regimeParam(c *gin.Context) (carbon.Regime, error) {
	return carbon.ParseRegime(c.DefaultQuery("pricing_regime", "global"))
}

func (g *Gateway) frameworkParam(c *gin.Context) (string, error) {
	id := c.DefaultQuery("framework", "tcfd")
	if _, err := esg.FrameworkByID(id); err != nil {
		return "", err
	}
	return id, nil
}

func (g *Gateway) yearParam(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("year", "2030")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2025 || year > 2100 {
		return 0, fmt.Errorf("%w: year %q must be in [2025, 2100]", errInvalidParam, raw)
	}
	return year, nil
}

// facilityScope resolves which facility set a handler runs over.
type facilityScope func(c *gin.Context) ([]facility.Facility, error)

func (g *Gateway) sessionScope(c *gin.Context) ([]facility.Facility, error) {
	return g.sessions.Facilities(c.Param("id"))
}

func (g *Gateway) scopedFacilities(c *gin.Context, scope facilityScope) ([]facility.Facility, error) {
	if scope == nil {
		return g.seed, nil
	}
	return scope(c)
}

// Handlers

func (g *Gateway) healthCheck(c *gin.Context) {
	status := gin.H{"status": "healthy", "active_sessions": g.sessions.Len()}
	if g.weather != nil {
		status["weather_breaker"] = g.weather.BreakerState().String()
	}
	if g.msgClient != nil {
		status["events_connected"] = g.msgClient.IsConnected()
		status["events_reconnects"] = g.msgClient.Reconnects()
	}
	c.JSON(http.StatusOK, status)
}

// scenarioView is the scenario detail payload.
type scenarioView struct {
	config.Scenario
	CarbonPricePath []config.PricePoint `json:"carbon_price_path"`
}

func (g *Gateway) listScenarios(c *gin.Context) {
	views := make([]scenarioView, 0, len(config.Scenarios))
	for _, id := range config.ScenarioIDs() {
		sc := config.Scenarios[id]
		views = append(views, scenarioView{Scenario: sc, CarbonPricePath: config.NGFSPricePaths[id]})
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": views})
}

func (g *Gateway) getScenario(c *gin.Context) {
	sc, err := config.ScenarioByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scenarioView{Scenario: sc, CarbonPricePath: config.NGFSPricePaths[sc.ID]})
}

func (g *Gateway) listFacilities(c *gin.Context) {
	filtered := facility.FilterBySector(g.seed, c.Query("sector"))
	c.JSON(http.StatusOK, gin.H{"facilities": filtered, "count": len(filtered)})
}

func (g *Gateway) listSectors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sectors": config.SectorTags()})
}

func (g *Gateway) transitionAnalysis(scope facilityScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		analysis, err := g.runTransition(c, scope)
		if err != nil {
			g.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, analysis)
	}
}

func (g *Gateway) runTransition(c *gin.Context, scope facilityScope) (*transition.Analysis, error) {
	scenarioID, err := g.scenarioParam(c)
	if err != nil {
		return nil, err
	}
	regime, err := g.regimeParam(c)
	if err != nil {
		return nil, err
	}
	facilities, err := g.scopedFacilities(c, scope)
	if err != nil {
		return nil, err
	}
	analysis, err := transition.Analyse(c.Request.Context(), facilities, scenarioID, regime, 0, 0)
	if err != nil {
		return nil, err
	}
	g.publishAnalysis(c, messaging.AnalysisEvent{
		Kind: "transition", Scenario: scenarioID, PricingRegime: string(regime),
		FacilityCount: len(analysis.Facilities), TotalNPV: analysis.TotalNPV,
	})
	return analysis, nil
}

func (g *Gateway) transitionSummary(scope facilityScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		analysis, err := g.runTransition(c, scope)
		if err != nil {
			g.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, transition.Summarise(analysis))
	}
}

func (g *Gateway) transitionComparison(scope facilityScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		regime, err := g.regimeParam(c)
		if err != nil {
			g.fail(c, err)
			return
		}
		facilities, err := g.scopedFacilities(c, scope)
		if err != nil {
			g.fail(c, err)
			return
		}
		cmp, err := transition.Compare(c.Request.Context(), facilities, regime)
		if err != nil {
			g.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, cmp)
	}
}

func (g *Gateway) physicalAssessment(scope facilityScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		facilities, err := g.scopedFacilities(c, scope)
		if err != nil {
			g.fail(c, err)
			return
		}
		assessment, err := g.runPhysical(c, facilities,
			c.DefaultQuery("use_api_data", "false") == "true")
		if err != nil {
			g.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, assessment)
	}
}

// simulateRequest is the ad-hoc assessment body.
type simulateRequest struct {
	Scenario   string              `json:"scenario"`
	Year       int                 `json:"year"`
	UseAPIData bool                `json:"use_api_data"`
	Facilities []facility.Facility `json:"facilities" binding:"required,min=1"`
}

func (g *Gateway) physicalSimulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body: " + err.Error()})
		return
	}
	scenarioID := req.Scenario
	if scenarioID == "" {
		scenarioID = "net_zero_2050"
	}
	year := req.Year
	if year == 0 {
		year = 2030
	}
	if _, err := config.ScenarioByID(scenarioID); err != nil {
		g.fail(c, err)
		return
	}
	assessment, err := physical.Assess(c.Request.Context(), req.Facilities, scenarioID, year, physical.Options{
		UseLiveWeather: req.UseAPIData,
		Weather:        g.weather,
	})
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (g *Gateway) runPhysical(c *gin.Context, facilities []facility.Facility, useLive bool) (*physical.Assessment, error) {
	scenarioID, err := g.scenarioParam(c)
	if err != nil {
		return nil, err
	}
	year, err := g.yearParam(c)
	if err != nil {
		return nil, err
	}
	assessment, err := physical.Assess(c.Request.Context(), facilities, scenarioID, year, physical.Options{
		UseLiveWeather: useLive,
		Weather:        g.weather,
	})
	if err != nil {
		return nil, err
	}
	totalEAL := 0.0
	for _, f := range assessment.Facilities {
		totalEAL += f.TotalEAL
	}
	g.publishAnalysis(c, messaging.AnalysisEvent{
		Kind: "physical", Scenario: scenarioID, Year: year,
		FacilityCount: len(assessment.Facilities), TotalEAL: totalEAL,
		HighRiskCount: assessment.RiskSummary["High"],
	})
	return assessment, nil
}

func (g *Gateway) esgAssessment(scope facilityScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		frameworkID, err := g.frameworkParam(c)
		if err != nil {
			g.fail(c, err)
			return
		}
		facilities, err := g.scopedFacilities(c, scope)
		if err != nil {
			g.fail(c, err)
			return
		}
		assessment, err := esg.Assess(facilities, frameworkID)
		if err != nil {
			g.fail(c, err)
			return
		}
		g.publishAnalysis(c, messaging.AnalysisEvent{
			Kind: "esg", Framework: frameworkID,
			FacilityCount: len(facilities), OverallScore: assessment.OverallScore,
			MaturityLevel: assessment.MaturityLevel.Level,
		})
		c.JSON(http.StatusOK, assessment)
	}
}

func (g *Gateway) esgDisclosure(scope facilityScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		frameworkID, err := g.frameworkParam(c)
		if err != nil {
			g.fail(c, err)
			return
		}
		facilities, err := g.scopedFacilities(c, scope)
		if err != nil {
			g.fail(c, err)
			return
		}
		company := "K-Holdings Group (Sample)"
		if scope != nil {
			if sess, err := g.sessions.Get(c.Param("id")); err == nil {
				company = sess.CompanyName
			}
		}
		analysis, err := transition.Analyse(c.Request.Context(), facilities, "net_zero_2050", carbon.RegimeGlobal, 0, 0)
		if err != nil {
			g.fail(c, err)
			return
		}
		data, err := esg.Disclosure(facilities, frameworkID, company, analysis.TotalNPV, time.Now())
		if err != nil {
			g.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

func (g *Gateway) listFrameworks(c *gin.Context) {
	type frameworkView struct {
		ID         string         `json:"id"`
		Name       string         `json:"name"`
		Categories []esg.Category `json:"categories"`
	}
	views := make([]frameworkView, 0, len(esg.Frameworks))
	for _, id := range esg.FrameworkIDs() {
		fw := esg.Frameworks[id]
		views = append(views, frameworkView{ID: fw.ID, Name: fw.Name, Categories: fw.Categories})
	}
	c.JSON(http.StatusOK, gin.H{"frameworks": views})
}

func (g *Gateway) disclosureReport(scope facilityScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		frameworkID, err := g.frameworkParam(c)
		if err != nil {
			g.fail(c, err)
			return
		}
		scenarioID, err := g.scenarioParam(c)
		if err != nil {
			g.fail(c, err)
			return
		}
		regime, err := g.regimeParam(c)
		if err != nil {
			g.fail(c, err)
			return
		}
		year, err := g.yearParam(c)
		if err != nil {
			g.fail(c, err)
			return
		}
		facilities, err := g.scopedFacilities(c, scope)
		if err != nil {
			g.fail(c, err)
			return
		}

		ctx := c.Request.Context()
		esgResult, err := esg.Assess(facilities, frameworkID)
		if err != nil {
			g.fail(c, err)
			return
		}
		analysis, err := transition.Analyse(ctx, facilities, scenarioID, regime, 0, 0)
		if err != nil {
			g.fail(c, err)
			return
		}
		assessment, err := physical.Assess(ctx, facilities, scenarioID, year, physical.Options{})
		if err != nil {
			g.fail(c, err)
			return
		}
		netZeroNPV := analysis.TotalNPV
		if scenarioID != "net_zero_2050" || regime != carbon.RegimeGlobal {
			netZero, err := transition.Analyse(ctx, facilities, "net_zero_2050", carbon.RegimeGlobal, 0, 0)
			if err != nil {
				g.fail(c, err)
				return
			}
			netZeroNPV = netZero.TotalNPV
		}
		disclosure, err := esg.Disclosure(facilities, frameworkID, "K-Holdings Group (Sample)", netZeroNPV, time.Now())
		if err != nil {
			g.fail(c, err)
			return
		}

		workbook := report.Build(report.Inputs{
			Facilities:    facilities,
			ESG:           esgResult,
			Disclosure:    disclosure,
			Transition:    analysis,
			Summary:       transition.Summarise(analysis),
			Physical:      assessment,
			Scenario:      scenarioID,
			PricingRegime: string(regime),
			Year:          year,
			GeneratedAt:   time.Now(),
		})

		if c.Query("format") == "json" {
			c.JSON(http.StatusOK, workbook)
			return
		}
		var buf bytes.Buffer
		if err := workbook.WriteXLSX(&buf); err != nil {
			g.fail(c, err)
			return
		}
		filename := fmt.Sprintf("disclosure_%s_%s_%d.xlsx", frameworkID, scenarioID, year)
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}

// Session handlers

// createSessionRequest is the partner onboarding body.
type createSessionRequest struct {
	CompanyName string              `json:"company_name" binding:"required"`
	Facilities  []facility.Facility `json:"facilities" binding:"required,min=1,max=200"`
}

func (g *Gateway) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body: " + err.Error()})
		return
	}
	sess, err := g.sessions.Create(c.Request.Context(), req.CompanyName, req.Facilities)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, g.sessionView(sess))
}

func (g *Gateway) getSession(c *gin.Context) {
	sess, err := g.sessions.Get(c.Param("id"))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g.sessionView(sess))
}

func (g *Gateway) deleteSession(c *gin.Context) {
	if err := g.sessions.Delete(c.Param("id")); err != nil {
		g.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *Gateway) sessionFacilities(c *gin.Context) {
	facilities, err := g.sessions.Facilities(c.Param("id"))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"facilities": facilities, "count": len(facilities)})
}

func (g *Gateway) sessionView(sess session.Session) gin.H {
	sectorSet := map[string]bool{}
	for _, f := range sess.Facilities {
		sectorSet[f.Sector] = true
	}
	sectors := make([]string, 0, len(sectorSet))
	for s := range sectorSet {
		sectors = append(sectors, s)
	}
	sort.Strings(sectors)

	return gin.H{
		"partner_id":         sess.ID,
		"company_name":       sess.CompanyName,
		"facility_count":     len(sess.Facilities),
		"sectors":            sectors,
		"sector_warnings":    sess.SectorWarnings,
		"expires_in_seconds": int(g.sessions.ExpiresIn(sess).Seconds()),
	}
}

func (g *Gateway) publishAnalysis(c *gin.Context, payload messaging.AnalysisEvent) {
	if g.msgClient == nil {
		return
	}
	event, err := messaging.NewEvent(messaging.EventTypeAnalysisCompleted, payload, messaging.EventMetadata{
		CorrelationID: c.GetString("correlation_id"),
		Source:        "gateway",
	})
	if err != nil {
		return
	}
	// Best effort; analysis results never depend on the bus.
	_ = g.msgClient.Publish(c.Request.Context(), event.Type, event)
}

// Package weather fetches ~30 years of daily weather for a coordinate from
// the Open-Meteo archive and derives the climate baselines the physical
// risk engine consumes. Results are cached per rounded coordinate for one
// hour; any failure falls back to the regional statistical defaults.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/PLANiT-Institute/climate-risk/internal/config"
	"github.com/PLANiT-Institute/climate-risk/internal/riskmath"
	"github.com/PLANiT-Institute/climate-risk/pkg/circuit"
)

const (
	// SourceLive marks statistics derived from the archive API.
	SourceLive = "open_meteo_api"
	// SourceDefault marks the hardcoded regional fallback.
	SourceDefault = "hardcoded_config"

	DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

	startDate         = "1994-01-01"
	endDate           = "2023-12-31"
	heatwaveThreshold = 33.0 // KMA heatwave definition, deg C
	minYears          = 5
	cacheTTL          = time.Hour
	fetchTimeout      = 10 * time.Second
)

// ErrUnavailable is returned internally when the archive cannot serve a
// coordinate; callers receive defaults instead of this error.
var ErrUnavailable = errors.New("weather archive unavailable")

// Stats are the derived climate baselines for one coordinate.
type Stats struct {
	GumbelLocation float64 `json:"gumbel_location"` // annual-max daily precip, mm
	GumbelScale    float64 `json:"gumbel_scale"`
	HeatwaveDays   float64 `json:"heatwave_days"` // annual days above 33 deg C
	DroughtDays    float64 `json:"drought_days"`  // mean longest dry spell
	Source         string  `json:"source"`
}

type cacheEntry struct {
	stats   Stats
	expires time.Time
}

// Client is the archive client. Concurrent fetches for the same rounded
// coordinate collapse to a single outstanding HTTP request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *circuit.Breaker
	redis      *redis.Client // optional second cache tier

	cache   map[string]cacheEntry
	cacheMu sync.RWMutex
	group   singleflight.Group
	now     func() time.Time
}

// Config holds client configuration.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Redis      *redis.Client
	Now        func() time.Time
}

// NewClient creates a weather client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: fetchTimeout}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    cfg.BaseURL,
		redis:      cfg.Redis,
		now:        cfg.Now,
		cache:      make(map[string]cacheEntry),
		breaker: circuit.NewBreaker(circuit.Config{
			Name:        "weather",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
			HalfOpenMax: 2,
		}),
	}
}

// FetchStats returns the climate baselines for a coordinate. On any
// failure path — timeout, cancellation, open breaker, malformed payload —
// the regional defaults are returned with Source set accordingly; the
// error is never surfaced past this package.
func (c *Client) FetchStats(ctx context.Context, lat, lon float64) Stats {
	key := cacheKey(lat, lon)

	c.cacheMu.RLock()
	entry, ok := c.cache[key]
	c.cacheMu.RUnlock()
	if ok && c.now().Before(entry.expires) {
		return entry.stats
	}

	if c.redis != nil {
		if stats, ok := c.redisGet(ctx, key); ok {
			c.cacheSet(key, stats)
			return stats
		}
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		var stats Stats
		breakerErr := c.breaker.Execute(ctx, func() error {
			fetched, err := c.fetch(ctx, lat, lon)
			if err != nil {
				return err
			}
			stats = fetched
			return nil
		})
		if breakerErr != nil {
			return Stats{}, breakerErr
		}
		c.cacheSet(key, stats)
		c.redisSet(ctx, key, stats)
		return stats, nil
	})
	if err != nil {
		return Defaults(lat, lon)
	}
	return result.(Stats)
}

// Defaults are the regional statistical baselines used when no live data
// is available.
func Defaults(lat, lon float64) Stats {
	region := config.RegionAt(lat, lon)
	return Stats{
		GumbelLocation: region.GumbelLocation,
		GumbelScale:    region.GumbelScale,
		HeatwaveDays:   region.HeatwaveDays,
		DroughtDays:    region.DroughtDays,
		Source:         SourceDefault,
	}
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	// Request the same 0.25 degree cell the cache keys on.
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.2f", math.Round(lat*4)/4))
	q.Set("longitude", fmt.Sprintf("%.2f", math.Round(lon*4)/4))
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	q.Set("daily", "temperature_2m_max,precipitation_sum")
	q.Set("timezone", "Asia/Seoul")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Stats{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Stats{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Daily struct {
			TemperatureMax   []*float64 `json:"temperature_2m_max"`
			PrecipitationSum []*float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	location, scale, err := fitGumbel(payload.Daily.PrecipitationSum)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	heatwave, okHW := heatwaveDays(payload.Daily.TemperatureMax)
	drought, okDR := droughtDays(payload.Daily.PrecipitationSum)

	stats := Stats{
		GumbelLocation: location,
		GumbelScale:    scale,
		HeatwaveDays:   heatwave,
		DroughtDays:    drought,
		Source:         SourceLive,
	}
	// Fill partial derivations from the regional defaults.
	defaults := Defaults(lat, lon)
	if !okHW {
		stats.HeatwaveDays = defaults.HeatwaveDays
	}
	if !okDR {
		stats.DroughtDays = defaults.DroughtDays
	}
	return stats, nil
}

// fitGumbel extracts annual maxima from daily precipitation and fits
// Gumbel Type I by the method of moments.
func fitGumbel(dailyPrecip []*float64) (location, scale float64, err error) {
	maxima := annualMaxima(dailyPrecip)
	if len(maxima) < minYears {
		return 0, 0, fmt.Errorf("only %d usable years of precipitation", len(maxima))
	}
	return riskmath.FitGumbel(maxima)
}

func annualMaxima(daily []*float64) []float64 {
	var maxima []float64
	yearMax, haveData, dayCount := 0.0, false, 0
	for _, v := range daily {
		if v != nil && *v >= 0 {
			if !haveData || *v > yearMax {
				yearMax = *v
			}
			haveData = true
		}
		dayCount++
		if dayCount >= 365 {
			if haveData {
				maxima = append(maxima, yearMax)
			}
			yearMax, haveData, dayCount = 0, false, 0
		}
	}
	if haveData {
		maxima = append(maxima, yearMax)
	}
	return maxima
}

// heatwaveDays counts the average annual days above the KMA threshold.
func heatwaveDays(dailyTmax []*float64) (float64, bool) {
	total, yearCount, yearDays, dayCount := 0, 0, 0, 0
	for _, v := range dailyTmax {
		if v != nil && *v > heatwaveThreshold {
			yearDays++
		}
		dayCount++
		if dayCount >= 365 {
			total += yearDays
			yearCount++
			yearDays, dayCount = 0, 0
		}
	}
	if dayCount > 180 {
		total += yearDays
		yearCount++
	}
	if yearCount < minYears {
		return 0, false
	}
	return float64(total) / float64(yearCount), true
}

// droughtDays is the mean annual longest dry spell; a dry day has under
// 1mm of precipitation.
func droughtDays(dailyPrecip []*float64) (float64, bool) {
	var spells []int
	current, longest, dayCount := 0, 0, 0
	for _, v := range dailyPrecip {
		if v != nil && *v < 1.0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
		dayCount++
		if dayCount >= 365 {
			spells = append(spells, longest)
			current, longest, dayCount = 0, 0, 0
		}
	}
	if dayCount > 180 {
		spells = append(spells, longest)
	}
	if len(spells) < minYears {
		return 0, false
	}
	sum := 0
	for _, s := range spells {
		sum += s
	}
	return float64(sum) / float64(len(spells)), true
}

// cacheKey rounds to the 0.25 degree grid the archive serves.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", math.Round(lat*4)/4, math.Round(lon*4)/4)
}

func (c *Client) cacheSet(key string, stats Stats) {
	c.cacheMu.Lock()
	c.cache[key] = cacheEntry{stats: stats, expires: c.now().Add(cacheTTL)}
	c.cacheMu.Unlock()
}

func (c *Client) redisGet(ctx context.Context, key string) (Stats, bool) {
	raw, err := c.redis.Get(ctx, "weather:"+key).Result()
	if err != nil {
		return Stats{}, false
	}
	var stats Stats
	if json.Unmarshal([]byte(raw), &stats) != nil {
		return Stats{}, false
	}
	return stats, true
}

func (c *Client) redisSet(ctx context.Context, key string, stats Stats) {
	if c.redis == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	c.redis.Set(ctx, "weather:"+key, raw, cacheTTL)
}

// BreakerState exposes the circuit state for health reporting.
func (c *Client) BreakerState() circuit.State {
	return c.breaker.State()
}

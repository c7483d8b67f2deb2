package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PLANiT-Institute/climate-risk/internal/config"
)

// archivePayload fabricates 30 years of daily records with one distinct
// rainfall spike and a hot spell per year.
func archivePayload() []byte {
	const years = 30
	var tmax, precip []float64
	for y := 0; y < years; y++ {
		for d := 0; d < 365; d++ {
			temp, rain := 18.0, 2.0
			if d >= 200 && d < 212 {
				temp = 34.5 // 12 heatwave days per year
			}
			if d >= 100 && d < 140 {
				rain = 0.0 // 40-day dry spell
			}
			if d == 180 {
				rain = 180 + float64(y%10)*12 // annual maximum
			}
			tmax = append(tmax, temp)
			precip = append(precip, rain)
		}
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"daily": map[string]interface{}{
			"temperature_2m_max": tmax,
			"precipitation_sum":  precip,
		},
	})
	return payload
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newArchiveServer(t *testing.T, calls *int64) *httptest.Server {
	t.Helper()
	payload := archivePayload()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		time.Sleep(20 * time.Millisecond) // widen the single-flight window
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchStats(t *testing.T) {
	t.Run("derives baselines from archive data", func(t *testing.T) {
		var calls int64
		server := newArchiveServer(t, &calls)
		client := NewClient(Config{BaseURL: server.URL})

		stats := client.FetchStats(context.Background(), 35.5, 129.0)
		assert.Equal(t, SourceLive, stats.Source)
		assert.Greater(t, stats.GumbelLocation, 150.0)
		assert.Greater(t, stats.GumbelScale, 0.0)
		assert.InDelta(t, 12.0, stats.HeatwaveDays, 0.5)
		assert.InDelta(t, 40.0, stats.DroughtDays, 1.0)
	})

	t.Run("concurrent fetches for one coordinate collapse to a single request", func(t *testing.T) {
		var calls int64
		server := newArchiveServer(t, &calls)
		client := NewClient(Config{BaseURL: server.URL})

		const callers = 8
		results := make([]Stats, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = client.FetchStats(context.Background(), 35.5, 129.0)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
		for _, stats := range results {
			assert.Equal(t, results[0], stats)
		}
	})

	t.Run("cache serves repeats within the hour and refetches after", func(t *testing.T) {
		var calls int64
		server := newArchiveServer(t, &calls)
		clock := &fakeClock{now: time.Date(2026, 8, 5, 9, 0, 0, 0, time.UTC)}
		client := NewClient(Config{BaseURL: server.URL, Now: clock.Now})

		client.FetchStats(context.Background(), 35.5, 129.0)
		client.FetchStats(context.Background(), 35.5, 129.0)
		assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

		clock.Advance(61 * time.Minute)
		client.FetchStats(context.Background(), 35.5, 129.0)
		assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
	})

	t.Run("nearby coordinates share the quarter-degree cell", func(t *testing.T) {
		var calls int64
		server := newArchiveServer(t, &calls)
		client := NewClient(Config{BaseURL: server.URL})

		client.FetchStats(context.Background(), 35.51, 129.01)
		client.FetchStats(context.Background(), 35.49, 128.99)
		assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	})

	t.Run("server errors fall back to regional defaults", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()
		client := NewClient(Config{BaseURL: server.URL})

		stats := client.FetchStats(context.Background(), 35.5, 129.0)
		assert.Equal(t, SourceDefault, stats.Source)
		region := config.RegionAt(35.5, 129.0)
		assert.Equal(t, region.GumbelLocation, stats.GumbelLocation)
	})

	t.Run("cancelled context falls back without waiting", func(t *testing.T) {
		var calls int64
		server := newArchiveServer(t, &calls)
		client := NewClient(Config{BaseURL: server.URL})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		stats := client.FetchStats(ctx, 33.5, 126.5)
		assert.Equal(t, SourceDefault, stats.Source)
	})

	t.Run("repeated failures trip the breaker", func(t *testing.T) {
		var calls int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()
		client := NewClient(Config{BaseURL: server.URL})

		// Distinct cells so the cache never short-circuits.
		for i := 0; i < 10; i++ {
			client.FetchStats(context.Background(), 30+float64(i), 120)
		}
		// After five consecutive failures the breaker stops issuing requests.
		assert.Equal(t, int64(5), atomic.LoadInt64(&calls))
	})
}

func TestDefaults(t *testing.T) {
	t.Run("match the regional tables", func(t *testing.T) {
		stats := Defaults(36.9, 126.6) // coastal_west
		assert.Equal(t, SourceDefault, stats.Source)
		assert.Equal(t, config.Regions["coastal_west"].GumbelLocation, stats.GumbelLocation)
		assert.Equal(t, config.Regions["coastal_west"].HeatwaveDays, stats.HeatwaveDays)
	})
}

func TestDerivations(t *testing.T) {
	t.Run("annual maxima handle nil gaps", func(t *testing.T) {
		daily := make([]*float64, 730)
		v1, v2 := 120.0, 90.0
		daily[10] = &v1
		daily[400] = &v2
		maxima := annualMaxima(daily)
		require.Len(t, maxima, 2)
		assert.Equal(t, 120.0, maxima[0])
		assert.Equal(t, 90.0, maxima[1])
	})

	t.Run("too few years of data is rejected", func(t *testing.T) {
		one := 50.0
		_, _, err := fitGumbel([]*float64{&one})
		assert.Error(t, err)
	})
}

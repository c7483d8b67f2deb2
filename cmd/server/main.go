package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/PLANiT-Institute/climate-risk/internal/gateway"
	"github.com/PLANiT-Institute/climate-risk/internal/metrics"
	"github.com/PLANiT-Institute/climate-risk/internal/session"
	"github.com/PLANiT-Institute/climate-risk/internal/weather"
	"github.com/PLANiT-Institute/climate-risk/pkg/messaging"
)

type Config struct {
	Port            string
	NATSUrl         string
	RedisURL        string
	EtcdEndpoints   []string
	WeatherBaseURL  string
	InfluxURL       string
	InfluxToken     string
	InfluxOrg       string
	InfluxBucket    string
	RequestTimeout  time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	ReapInterval    time.Duration
}

func loadConfig() *Config {
	return &Config{
		Port:            getEnv("PORT", "8000"),
		NATSUrl:         getEnv("NATS_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		EtcdEndpoints:   splitNonEmpty(getEnv("ETCD_ENDPOINTS", "")),
		WeatherBaseURL:  getEnv("WEATHER_API_BASE", weather.DefaultBaseURL),
		InfluxURL:       getEnv("INFLUX_URL", ""),
		InfluxToken:     getEnv("INFLUX_TOKEN", ""),
		InfluxOrg:       getEnv("INFLUX_ORG", "climate-risk"),
		InfluxBucket:    getEnv("INFLUX_BUCKET", "risk-metrics"),
		RequestTimeout:  30 * time.Second,
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
		ReapInterval:    5 * time.Minute,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	cfg := loadConfig()
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Event bus, cache, metrics, and election backends are all optional;
	// the service degrades to standalone mode when they are absent.
	var msgClient *messaging.Client
	if cfg.NATSUrl != "" {
		var err error
		msgClient, err = messaging.NewClient(messaging.Config{
			URL:            cfg.NATSUrl,
			Name:           "climate-risk-server",
			ReconnectWait:  time.Second,
			MaxReconnects:  60,
			ConnectTimeout: 10 * time.Second,
		})
		if err != nil {
			log.Printf("NATS unavailable, events disabled: %v", err)
		} else {
			defer msgClient.Close()
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("invalid REDIS_URL, redis cache disabled: %v", err)
		} else {
			redisClient = redis.NewClient(opts)
			defer redisClient.Close()
		}
	}

	var etcdClient *clientv3.Client
	if len(cfg.EtcdEndpoints) > 0 {
		var err error
		etcdClient, err = clientv3.New(clientv3.Config{
			Endpoints:   cfg.EtcdEndpoints,
			DialTimeout: 5 * time.Second,
		})
		if err != nil {
			log.Printf("etcd unavailable, reaper election disabled: %v", err)
		} else {
			defer etcdClient.Close()
		}
	}

	// Metrics flow off the event bus, not the request path; the recorder
	// joins a queue group so one replica records each event.
	var recorder *metrics.Recorder
	if cfg.InfluxURL != "" {
		recorder = metrics.NewRecorder(metrics.Config{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
		})
		defer recorder.Close()
		if msgClient != nil {
			if err := recorder.ConsumeEvents(msgClient); err != nil {
				log.Printf("metrics: event subscription failed: %v", err)
			}
		}
	}

	weatherClient := weather.NewClient(weather.Config{
		BaseURL: cfg.WeatherBaseURL,
		Redis:   redisClient,
	})

	sessions := session.NewStore(session.Config{Messaging: msgClient})
	reaper := session.NewReaper(sessions, etcdClient, cfg.ReapInterval)
	go reaper.Run(ctx)

	gw := gateway.NewGateway(gateway.Config{
		RequestTimeout:  cfg.RequestTimeout,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	}, sessions, weatherClient, msgClient)

	go func() {
		log.Printf("climate-risk server starting on port %s", cfg.Port)
		if err := gw.Start(":" + cfg.Port); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	stop()
	if msgClient != nil {
		if err := msgClient.Drain(); err != nil {
			log.Printf("event bus drain: %v", err)
		}
	}
	log.Println("server stopped")
}

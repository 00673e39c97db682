package config

import (
	"errors"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Report snapshot.
	ReportsFile            string
	ReportsRefreshInterval time.Duration

	// Reference used when a request carries no usable location.
	DefaultLat   float64
	DefaultLng   float64
	DefaultPlace string

	// Mapbox geocoding configuration.
	MapboxToken           string
	MapboxEnabled         bool
	MapboxTimeout         time.Duration
	MapboxCacheSize       int
	MapboxBreakerFailures int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parsePositiveDuration("REPORTS_REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	defaultLat, err := parseCoordinate("DEFAULT_LAT", "28.6139", 90)
	if err != nil {
		return nil, err
	}
	defaultLng, err := parseCoordinate("DEFAULT_LNG", "77.2090", 180)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("MAPBOX_CACHE_SIZE", "1000")
	if err != nil {
		return nil, err
	}
	breakerFailures, err := parsePositiveInt("MAPBOX_BREAKER_FAILURES", "5")
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "heatmap-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "pothole-heatmaps"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "pothole-heatmap"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ReportsFile:            sharedcfg.EnvOrDefault("REPORTS_FILE", "data/mock/pothole_reports.json"),
		ReportsRefreshInterval: refreshInterval,

		DefaultLat:   defaultLat,
		DefaultLng:   defaultLng,
		DefaultPlace: sharedcfg.EnvOrDefault("DEFAULT_PLACE", "New Delhi"),

		MapboxToken:           mapboxToken,
		MapboxEnabled:         mapboxEnabled,
		MapboxTimeout:         mapboxTimeout,
		MapboxCacheSize:       cacheSize,
		MapboxBreakerFailures: breakerFailures,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.ReportsFile == "" {
		return nil, errors.New("REPORTS_FILE is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseCoordinate(key, fallback string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, fallback), 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}

func parsePositiveInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

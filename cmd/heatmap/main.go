package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/pothole-heatmap-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/pothole-heatmap-service/internal/adapter/kafka"
	"github.com/couchcryptid/pothole-heatmap-service/internal/adapter/mapbox"
	"github.com/couchcryptid/pothole-heatmap-service/internal/adapter/reportfile"
	"github.com/couchcryptid/pothole-heatmap-service/internal/config"
	"github.com/couchcryptid/pothole-heatmap-service/internal/domain"
	"github.com/couchcryptid/pothole-heatmap-service/internal/observability"
	"github.com/couchcryptid/pothole-heatmap-service/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxBreakerFailures, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled",
			"cache_size", cfg.MapboxCacheSize,
			"timeout", cfg.MapboxTimeout,
			"breaker_failures", cfg.MapboxBreakerFailures,
		)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	source := reportfile.NewSource(cfg.ReportsFile, logger, metrics)
	if err := source.Refresh(context.Background()); err != nil {
		// Stay up and report not-ready; the scheduler retries on its interval.
		logger.Error("initial report load failed", "path", cfg.ReportsFile, "error", err)
	}
	scheduler := reportfile.NewScheduler(source, cfg.ReportsRefreshInterval, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start report refresh", "error", err)
		os.Exit(1)
	}

	fallback := domain.ReferenceLocation{
		Lat:       cfg.DefaultLat,
		Lng:       cfg.DefaultLng,
		PlaceName: cfg.DefaultPlace,
		Source:    domain.SourceFallback,
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(source, geocoder, fallback, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, source, transformer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	scheduler.Stop()
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/pothole-heatmap-service/internal/domain"
	"github.com/couchcryptid/pothole-heatmap-service/internal/observability"
)

// Channels label where a heatmap request came from.
const (
	ChannelKafka = "kafka"
	ChannelHTTP  = "http"
)

// HeatmapTransformer implements Transformer by resolving the request's
// reference location and computing a heatmap over the current report snapshot.
type HeatmapTransformer struct {
	reports  domain.ReportSource
	geocoder domain.Geocoder
	fallback domain.ReferenceLocation
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates a HeatmapTransformer. Pass a nil geocoder to disable
// place-name lookups.
func NewTransformer(reports domain.ReportSource, geocoder domain.Geocoder, fallback domain.ReferenceLocation, logger *slog.Logger, metrics *observability.Metrics) *HeatmapTransformer {
	return &HeatmapTransformer{
		reports:  reports,
		geocoder: geocoder,
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *HeatmapTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.HeatmapResult, error) {
	req, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.HeatmapResult{}, err
	}
	return t.compute(ctx, req, ChannelKafka)
}

// Heatmap computes a result for an already-parsed request.
func (t *HeatmapTransformer) Heatmap(ctx context.Context, req domain.HeatmapRequest) (domain.HeatmapResult, error) {
	return t.compute(ctx, req, ChannelHTTP)
}

func (t *HeatmapTransformer) compute(ctx context.Context, req domain.HeatmapRequest, channel string) (domain.HeatmapResult, error) {
	start := time.Now()

	reports, err := t.reports.Reports(ctx)
	if err != nil {
		return domain.HeatmapResult{}, fmt.Errorf("heatmap %s: %w", req.RequestID, err)
	}

	ref := domain.ResolveReference(ctx, req, t.geocoder, t.fallback, t.logger)
	h := domain.Compute(reports, ref.Coordinate(), req.Config)
	if req.Demo {
		h = domain.FillSynthetic(h, req.Seed)
	}

	t.metrics.ComputeDuration.WithLabelValues(channel).Observe(time.Since(start).Seconds())
	t.metrics.MatchedReports.Observe(float64(h.Matched))
	t.metrics.ReferenceSource.WithLabelValues(ref.Source).Inc()

	t.logger.Debug("heatmap computed",
		"request_id", req.RequestID,
		"channel", channel,
		"source", ref.Source,
		"radius_km", req.Config.RadiusKm,
		"severity", req.Config.Severity,
		"matched", h.Matched,
		"synthetic", h.Synthetic,
	)

	return domain.HeatmapResult{
		RequestID:  req.RequestID,
		Reference:  ref,
		Heatmap:    h,
		ComputedAt: domain.Now(),
	}, nil
}

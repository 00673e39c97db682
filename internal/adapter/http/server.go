package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/pothole-heatmap-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HeatmapService computes a heatmap for a validated request.
type HeatmapService interface {
	Heatmap(ctx context.Context, req domain.HeatmapRequest) (domain.HeatmapResult, error)
}

// Server exposes the heatmap query API alongside health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	heatmaps   HeatmapService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /api/v1/heatmap routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, heatmaps HeatmapService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		heatmaps: heatmaps,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/heatmap", s.handleHeatmap)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	params, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := params.Build()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.heatmaps.Heatmap(r.Context(), req)
	switch {
	case err == nil:
		sharedobs.WriteJSON(w, http.StatusOK, result)
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrNoReports):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("heatmap request failed", "request_id", req.RequestID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

// parseQuery maps query parameters onto the same wire form the request topic
// uses, so both channels share validation.
func parseQuery(q url.Values) (domain.RequestParams, error) {
	p := domain.RequestParams{
		RequestID: q.Get("request_id"),
		Place:     q.Get("place"),
		Severity:  q.Get("severity"),
	}

	var err error
	if p.Lat, err = optionalFloat(q, "lat"); err != nil {
		return p, err
	}
	if p.Lng, err = optionalFloat(q, "lng"); err != nil {
		return p, err
	}
	if p.RadiusKm, err = optionalFloat(q, "radius_km"); err != nil {
		return p, err
	}
	if v := q.Get("demo"); v != "" {
		if p.Demo, err = strconv.ParseBool(v); err != nil {
			return p, fmt.Errorf("invalid demo: %q", v)
		}
	}
	if v := q.Get("seed"); v != "" {
		if p.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return p, fmt.Errorf("invalid seed: %q", v)
		}
	}
	return p, nil
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, v)
	}
	return &f, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

// Package reportfile serves the pothole report snapshot from a JSON file.
package reportfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/couchcryptid/pothole-heatmap-service/internal/domain"
	"github.com/couchcryptid/pothole-heatmap-service/internal/observability"
)

// Source implements domain.ReportSource over a JSON array of reports.
// Snapshots are replaced wholesale, never mutated.
type Source struct {
	path    string
	logger  *slog.Logger
	metrics *observability.Metrics

	mu       sync.RWMutex
	snapshot []domain.Report
	loaded   bool
}

// NewSource creates a Source for path. Nothing is read until Refresh.
func NewSource(path string, logger *slog.Logger, metrics *observability.Metrics) *Source {
	return &Source{path: path, logger: logger, metrics: metrics}
}

// Reports returns the current snapshot, or domain.ErrNoReports before the
// first successful load.
func (s *Source) Reports(_ context.Context) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, domain.ErrNoReports
	}
	return s.snapshot, nil
}

// Refresh reloads the file. On error the previous snapshot stays in place.
func (s *Source) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	reports, rejected, err := Load(s.path)
	if err != nil {
		s.metrics.ReportRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh reports from %s: %w", s.path, err)
	}

	for _, r := range rejected {
		s.logger.Warn("invalid report skipped", "path", s.path, "error", r)
	}

	s.mu.Lock()
	s.snapshot = reports
	s.loaded = true
	s.mu.Unlock()

	s.metrics.ReportRefreshes.WithLabelValues("success").Inc()
	s.metrics.ReportsLoaded.Set(float64(len(reports)))
	s.metrics.ReportsRejected.Set(float64(len(rejected)))
	s.logger.Info("report snapshot loaded", "path", s.path, "reports", len(reports), "rejected", len(rejected))
	return nil
}

// CheckReadiness returns nil once a snapshot has been loaded.
func (s *Source) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return domain.ErrNoReports
	}
	return nil
}

// Load reads and validates a report file. Records that fail validation are
// dropped and returned as errors in rejected; duplicate ids keep the first
// occurrence.
func Load(path string) (reports []domain.Report, rejected []error, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Decode(data)
}

// Decode parses a JSON array of reports. A record with an unknown severity
// is rejected on its own rather than failing the whole file.
func Decode(data []byte) (reports []domain.Report, rejected []error, err error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("decode report file: %w", err)
	}

	reports = make([]domain.Report, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, raw := range records {
		var r domain.Report
		if err := json.Unmarshal(raw, &r); err != nil {
			rejected = append(rejected, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if err := r.Validate(); err != nil {
			rejected = append(rejected, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if _, dup := seen[r.ID]; dup {
			rejected = append(rejected, fmt.Errorf("record %d: duplicate report id %s", i, r.ID))
			continue
		}
		seen[r.ID] = struct{}{}
		reports = append(reports, r)
	}
	return reports, rejected, nil
}

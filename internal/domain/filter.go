package domain

import (
	"fmt"
	"slices"
)

// AllowedRadiiKm are the search radii the service accepts.
var AllowedRadiiKm = []float64{0.5, 1, 2, 5}

// DefaultRadiusKm is used when a request does not choose a radius.
const DefaultRadiusKm = 1.0

// Validate checks the radius against AllowedRadiiKm and the filter against
// SeverityFilters. The core computation itself accepts any config; this is
// for request boundaries.
func (c SearchConfig) Validate() error {
	if !slices.Contains(AllowedRadiiKm, c.RadiusKm) {
		return fmt.Errorf("radius_km %g is not one of %v", c.RadiusKm, AllowedRadiiKm)
	}
	if !slices.Contains(SeverityFilters, c.Severity) {
		return fmt.Errorf("unknown severity filter %q", c.Severity)
	}
	return nil
}

// FilterReports returns the reports within cfg.RadiusKm of reference that
// match cfg.Severity. The result is never nil.
func FilterReports(reports []Report, reference Coordinate, cfg SearchConfig) []Report {
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if !cfg.Severity.Matches(r.Severity) {
			continue
		}
		// Negated so a NaN distance never counts as inside.
		if !(DistanceKm(reference, r.Coordinate()) <= cfg.RadiusKm) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Summarize counts the reports within cfg.RadiusKm of reference. High, Medium
// and Low always count every in-radius report; Total honours the severity
// filter.
func Summarize(reports []Report, reference Coordinate, cfg SearchConfig) Summary {
	s := Summary{Filtered: cfg.Severity != FilterAll}
	for _, r := range reports {
		if !(DistanceKm(reference, r.Coordinate()) <= cfg.RadiusKm) {
			continue
		}
		switch r.Severity {
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		}
		if cfg.Severity.Matches(r.Severity) {
			s.Total++
		}
	}
	return s
}

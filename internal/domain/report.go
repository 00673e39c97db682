package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoReports is returned by a ReportSource that has no snapshot loaded yet.
var ErrNoReports = errors.New("no report snapshot loaded")

// Validate rejects reports that would poison the density computation:
// non-finite or out-of-range coordinates, unknown severity, or a negative
// report count.
func (r Report) Validate() error {
	switch {
	case r.ID == "":
		return errors.New("report id is empty")
	case math.IsNaN(r.Lat) || math.IsInf(r.Lat, 0) || r.Lat < -90 || r.Lat > 90:
		return fmt.Errorf("report %s: latitude %v out of range", r.ID, r.Lat)
	case math.IsNaN(r.Lng) || math.IsInf(r.Lng, 0) || r.Lng < -180 || r.Lng > 180:
		return fmt.Errorf("report %s: longitude %v out of range", r.ID, r.Lng)
	case !r.Severity.Valid():
		return fmt.Errorf("report %s: invalid severity", r.ID)
	case r.ReportCount < 0:
		return fmt.Errorf("report %s: negative report count %d", r.ID, r.ReportCount)
	}
	return nil
}

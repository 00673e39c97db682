package domain

import "math"

const (
	// InfluenceRadiusKm is how far a report reaches from a cell centre.
	InfluenceRadiusKm = 0.2

	// DistanceEpsilonKm keeps a report sitting on a cell centre from
	// dividing by zero.
	DistanceEpsilonKm = 0.01

	// MaxIntensity caps a cell's density.
	MaxIntensity = 100
)

// Aggregate returns a copy of grid with each cell's intensity set from the
// severity-weighted, distance-decayed contributions of reports. The input
// grid is not modified.
func Aggregate(grid []GridCell, reports []Report) []GridCell {
	out := make([]GridCell, len(grid))
	for i, cell := range grid {
		var sum float64
		for _, r := range reports {
			d := DistanceKm(cell.Center, r.Coordinate())
			if !(d <= InfluenceRadiusKm) {
				continue
			}
			sum += float64(r.ReportCount) * r.Severity.Weight() / math.Max(d+DistanceEpsilonKm, DistanceEpsilonKm)
		}
		cell.Intensity = clampIntensity(sum)
		out[i] = cell
	}
	return out
}

// clampIntensity rounds v to the nearest integer within [0, MaxIntensity].
func clampIntensity(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= MaxIntensity {
		return MaxIntensity
	}
	return int(math.Round(v))
}

package domain

// HeatmapFixture is the compact golden form of a heatmap: the inputs that
// select it and the resulting intensities as a GridSize x GridSize matrix.
type HeatmapFixture struct {
	RadiusKm    float64        `json:"radius_km"`
	Severity    SeverityFilter `json:"severity"`
	Matched     int            `json:"matched"`
	Summary     Summary        `json:"summary"`
	Intensities [][]int        `json:"intensities"`
}

// NewHeatmapFixture captures h in fixture form.
func NewHeatmapFixture(h Heatmap) HeatmapFixture {
	grid := make([][]int, GridSize)
	for r := range grid {
		grid[r] = make([]int, GridSize)
	}
	for _, c := range h.Cells {
		if c.Row < GridSize && c.Col < GridSize {
			grid[c.Row][c.Col] = c.Intensity
		}
	}
	return HeatmapFixture{
		RadiusKm:    h.Config.RadiusKm,
		Severity:    h.Config.Severity,
		Matched:     h.Matched,
		Summary:     h.Summary,
		Intensities: grid,
	}
}

package domain

import "strconv"

const (
	// GridSize is the number of rows and columns in a heatmap.
	GridSize = 10

	// KmPerDegree approximates one degree of latitude (and, loosely, of
	// longitude) in kilometres. Only valid for radii up to a few km.
	KmPerDegree = 111.0
)

// BuildGrid lays out GridSize*GridSize cells covering the square of half
// width radiusKm/KmPerDegree degrees around reference, in row-major order.
// Intensities are zero.
func BuildGrid(reference Coordinate, radiusKm float64) []GridCell {
	halfWidth := radiusKm / KmPerDegree
	step := (2 * halfWidth) / GridSize

	cells := make([]GridCell, 0, GridSize*GridSize)
	for row := range GridSize {
		for col := range GridSize {
			cells = append(cells, GridCell{
				ID:  strconv.Itoa(row) + "-" + strconv.Itoa(col),
				Row: row,
				Col: col,
				Center: Coordinate{
					Lat: reference.Lat - halfWidth + float64(row)*step,
					Lng: reference.Lng - halfWidth + float64(col)*step,
				},
			})
		}
	}
	return cells
}

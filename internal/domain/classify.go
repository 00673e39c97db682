package domain

import "fmt"

// DensityBand is the display bucket of a cell intensity.
type DensityBand uint8

const (
	BandNone DensityBand = iota
	BandLow
	BandMediumLow
	BandMedium
	BandHigh
	BandVeryHigh
)

type bandInfo struct {
	name  string
	color string
}

var bands = [...]bandInfo{
	BandNone:      {name: "none", color: "#F8FAFC"},
	BandLow:       {name: "low", color: "#DCFCE7"},
	BandMediumLow: {name: "medium_low", color: "#FEF3C7"},
	BandMedium:    {name: "medium", color: "#FED7AA"},
	BandHigh:      {name: "high", color: "#FECACA"},
	BandVeryHigh:  {name: "very_high", color: "#FCA5A5"},
}

// Classify maps an intensity to its band using the cut points 10, 25, 50
// and 75. Negative input is treated as 0.
func Classify(intensity int) DensityBand {
	switch {
	case intensity <= 0:
		return BandNone
	case intensity < 10:
		return BandLow
	case intensity < 25:
		return BandMediumLow
	case intensity < 50:
		return BandMedium
	case intensity < 75:
		return BandHigh
	default:
		return BandVeryHigh
	}
}

// ClassifyGrid returns a copy of grid with every cell's band set from its
// intensity.
func ClassifyGrid(grid []GridCell) []GridCell {
	out := make([]GridCell, len(grid))
	for i, cell := range grid {
		cell.Band = Classify(cell.Intensity)
		out[i] = cell
	}
	return out
}

// Color returns the hex fill colour of the band.
func (b DensityBand) Color() string {
	if int(b) >= len(bands) {
		return ""
	}
	return bands[b].color
}

func (b DensityBand) String() string {
	if int(b) >= len(bands) {
		return fmt.Sprintf("DensityBand(%d)", uint8(b))
	}
	return bands[b].name
}

func (b DensityBand) MarshalText() ([]byte, error) {
	if int(b) >= len(bands) {
		return nil, fmt.Errorf("marshal density band: invalid value %d", uint8(b))
	}
	return []byte(bands[b].name), nil
}

func (b *DensityBand) UnmarshalText(text []byte) error {
	for i, info := range bands {
		if info.name == string(text) {
			*b = DensityBand(i)
			return nil
		}
	}
	return fmt.Errorf("unknown density band %q", text)
}

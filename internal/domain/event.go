package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the request topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Coordinate is a WGS-84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Report is a single geotagged pothole with its citizen report count.
type Report struct {
	ID          string   `json:"id"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Severity    Severity `json:"severity"`
	ReportCount int      `json:"report_count"`
}

// Coordinate returns the report position.
func (r Report) Coordinate() Coordinate {
	return Coordinate{Lat: r.Lat, Lng: r.Lng}
}

// SearchConfig selects the search radius and the severity filter for one
// heatmap computation.
type SearchConfig struct {
	RadiusKm float64        `json:"radius_km"`
	Severity SeverityFilter `json:"severity"`
}

// GridCell is one sample point of the heatmap lattice.
type GridCell struct {
	ID        string      `json:"id"`
	Row       int         `json:"row"`
	Col       int         `json:"col"`
	Center    Coordinate  `json:"center"`
	Intensity int         `json:"intensity"`
	Band      DensityBand `json:"band"`
}

// Summary holds the headline counts shown next to the map.
type Summary struct {
	Total    int  `json:"total"`
	High     int  `json:"high"`
	Medium   int  `json:"medium"`
	Low      int  `json:"low"`
	Filtered bool `json:"filtered"`
}

// Heatmap is the output of one full computation pass.
type Heatmap struct {
	Reference Coordinate   `json:"reference"`
	Config    SearchConfig `json:"config"`
	Cells     []GridCell   `json:"cells"`
	Summary   Summary      `json:"summary"`
	Matched   int          `json:"matched"`
	Synthetic bool         `json:"synthetic,omitempty"`
}

// ReferenceLocation is the resolved centre of a heatmap and how it was found.
type ReferenceLocation struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	PlaceName        string  `json:"place_name,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Source           string  `json:"source"` // "request", "reverse", "forward", "fallback"
}

// Coordinate returns the resolved position.
func (r ReferenceLocation) Coordinate() Coordinate {
	return Coordinate{Lat: r.Lat, Lng: r.Lng}
}

// HeatmapResult is the message published for a processed request.
type HeatmapResult struct {
	RequestID  string            `json:"request_id"`
	Reference  ReferenceLocation `json:"reference"`
	Heatmap    Heatmap           `json:"heatmap"`
	ComputedAt time.Time         `json:"computed_at"`
}

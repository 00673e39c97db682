package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves place names to coordinates and back.
type Geocoder interface {
	// ForwardGeocode converts a free-form place query to coordinates.
	ForwardGeocode(ctx context.Context, query string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lng float64) (GeocodingResult, error)
}

// ReportSource supplies the current report snapshot. Implementations must
// not mutate a returned slice.
type ReportSource interface {
	Reports(ctx context.Context) ([]Report, error)
}

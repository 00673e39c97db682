package domain

import (
	"context"
	"log/slog"
)

// Reference sources.
const (
	SourceRequest  = "request"
	SourceReverse  = "reverse"
	SourceForward  = "forward"
	SourceFallback = "fallback"
)

// ResolveReference picks the heatmap centre for req. Request coordinates win;
// otherwise the place name is forward geocoded; otherwise fallback is used.
// Geocoding errors never fail the request (graceful degradation). geocoder
// may be nil to disable geocoding.
func ResolveReference(ctx context.Context, req HeatmapRequest, geocoder Geocoder, fallback ReferenceLocation, logger *slog.Logger) ReferenceLocation {
	if req.Location != nil {
		ref := ReferenceLocation{Lat: req.Location.Lat, Lng: req.Location.Lng, Source: SourceRequest}
		if geocoder == nil {
			return ref
		}

		// Reverse geocode: coordinates → place details for display.
		result, err := geocoder.ReverseGeocode(ctx, ref.Lat, ref.Lng)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"request_id", req.RequestID,
				"lat", ref.Lat,
				"lng", ref.Lng,
				"error", err,
			)
			return ref
		}
		if result.FormattedAddress != "" {
			ref.FormattedAddress = result.FormattedAddress
			ref.PlaceName = result.PlaceName
			ref.Source = SourceReverse
		}
		return ref
	}

	// Forward geocode: place name → coordinates.
	if req.Place != "" && geocoder != nil {
		result, err := geocoder.ForwardGeocode(ctx, req.Place)
		if err != nil {
			logger.Warn("forward geocoding failed, using fallback location",
				"request_id", req.RequestID,
				"place", req.Place,
				"error", err,
			)
			return asFallback(fallback)
		}
		if result.Lat != 0 || result.Lng != 0 {
			return ReferenceLocation{
				Lat:              result.Lat,
				Lng:              result.Lng,
				PlaceName:        result.PlaceName,
				FormattedAddress: result.FormattedAddress,
				Source:           SourceForward,
			}
		}
		logger.Info("place not found, using fallback location",
			"request_id", req.RequestID,
			"place", req.Place,
		)
	}

	return asFallback(fallback)
}

func asFallback(ref ReferenceLocation) ReferenceLocation {
	ref.Source = SourceFallback
	return ref
}

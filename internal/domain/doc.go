// Package domain models citizen pothole reports and the density heatmap
// computed from them.
//
// # Data Source
//
// Reports come from a JSON snapshot (see internal/adapter/reportfile). Each
// report is a single pothole location with a severity tag and the number of
// citizen reports filed against it:
//
//	{"id":"1","lat":28.6139,"lng":77.2090,"severity":"high","report_count":15}
//
// Severity is a closed set: "high", "medium", "low". Anything else is rejected
// at parse time rather than defaulted.
//
// # Grid Layout
//
// A heatmap is a fixed 10x10 lattice of sample points centred on the
// reference location, laid out row-major (row varies slowest). The square
// has a half width of radius/111 degrees on both axes:
//
//	halfWidth = radiusKm / 111
//	step      = 2 * halfWidth / 10
//	lat(row)  = ref.lat - halfWidth + row*step
//	lng(col)  = ref.lng - halfWidth + col*step
//
// The 111 km per degree figure ignores meridian convergence, so longitude
// spacing shrinks with cos(lat). The error is acceptable for the supported
// radii (0.5, 1, 2 and 5 km) and is not corrected for larger areas.
//
// # Density
//
// Each cell sums the contribution of every filtered report within 200 m of
// its centre:
//
//	reportCount * weight(severity) / max(distanceKm + 0.01, 0.01)
//
// with weights high=3, medium=2, low=1. The sum is rounded and clamped to
// [0, 100], then bucketed:
//
//	0        none
//	1-9      low
//	10-24    medium_low
//	25-49    medium
//	50-74    high
//	75-100   very_high
//
// # Synthetic Demo Mode
//
// An empty map looks broken in a demo, so a request may opt in to a seeded
// synthetic pattern that is only applied when no report matched. See
// [FillSynthetic]. It is never applied implicitly.
package domain

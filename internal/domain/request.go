package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidRequest is wrapped by every request validation failure.
var ErrInvalidRequest = errors.New("invalid heatmap request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("radius_km", func(fl validator.FieldLevel) bool {
		return slices.Contains(AllowedRadiiKm, fl.Field().Float())
	})
	return v
}

// RequestParams is the wire form of a heatmap request, shared by the Kafka
// request topic and the HTTP query API.
type RequestParams struct {
	RequestID string   `json:"request_id,omitempty" validate:"max=128"`
	Lat       *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng       *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
	Place     string   `json:"place,omitempty" validate:"max=200"`
	RadiusKm  *float64 `json:"radius_km,omitempty" validate:"omitempty,radius_km"`
	Severity  string   `json:"severity,omitempty" validate:"omitempty,oneof=all high medium low"`
	Demo      bool     `json:"demo,omitempty"`
	Seed      uint64   `json:"seed,omitempty"`
}

// HeatmapRequest is a validated request for one heatmap.
type HeatmapRequest struct {
	RequestID string
	// Location is nil when the caller did not send coordinates.
	Location *Coordinate
	Place    string
	Config   SearchConfig
	Demo     bool
	Seed     uint64
}

// Build validates p and applies defaults: radius 1 km, severity "all", and a
// random request id when none was given.
func (p RequestParams) Build() (HeatmapRequest, error) {
	if err := validate.Struct(p); err != nil {
		return HeatmapRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if (p.Lat == nil) != (p.Lng == nil) {
		return HeatmapRequest{}, fmt.Errorf("%w: lat and lng must be given together", ErrInvalidRequest)
	}

	severity, err := ParseSeverityFilter(p.Severity)
	if err != nil {
		return HeatmapRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	req := HeatmapRequest{
		RequestID: p.RequestID,
		Place:     p.Place,
		Config:    SearchConfig{RadiusKm: DefaultRadiusKm, Severity: severity},
		Demo:      p.Demo,
		Seed:      p.Seed,
	}
	if p.RadiusKm != nil {
		req.Config.RadiusKm = *p.RadiusKm
	}
	if p.Lat != nil {
		req.Location = &Coordinate{Lat: *p.Lat, Lng: *p.Lng}
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req, nil
}

// ParseRawEvent decodes a request message. A missing request_id falls back to
// the message key.
func ParseRawEvent(raw RawEvent) (HeatmapRequest, error) {
	var p RequestParams
	if err := json.Unmarshal(raw.Value, &p); err != nil {
		return HeatmapRequest{}, fmt.Errorf("parse heatmap request: %w", err)
	}
	if p.RequestID == "" && len(raw.Key) > 0 {
		p.RequestID = string(raw.Key)
	}

	req, err := p.Build()
	if err != nil {
		return HeatmapRequest{}, fmt.Errorf("parse heatmap request: %w", err)
	}
	return req, nil
}

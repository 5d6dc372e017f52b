package domain

import "context"

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationCandidate is a single geocoding match. Admin1 through Admin4 are
// optional administrative subdivisions, coarsest first.
type LocationCandidate struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1,omitempty"`
	Admin2      string  `json:"admin2,omitempty"`
	Admin3      string  `json:"admin3,omitempty"`
	Admin4      string  `json:"admin4,omitempty"`
}

// Coordinates returns the candidate's position.
func (c LocationCandidate) Coordinates() Coordinates {
	return Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
}

// State is the first-level subdivision (state, province, region).
func (c LocationCandidate) State() string {
	return c.Admin1
}

// Geocoder resolves free-text place names to candidate locations.
type Geocoder interface {
	// Search returns up to five candidates in upstream order. An empty slice
	// with a nil error means nothing matched.
	Search(ctx context.Context, query string) ([]LocationCandidate, error)
}

// PositionProvider reads the device's current position.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// ForecastFetcher retrieves weather payloads for a coordinate pair.
type ForecastFetcher interface {
	// Current returns instantaneous conditions plus a one-day daily summary.
	Current(ctx context.Context, coords Coordinates) (CurrentWeatherPayload, error)

	// Forecast returns seven days of daily series and the hourly series.
	Forecast(ctx context.Context, coords Coordinates) (ForecastPayload, error)
}

package domain

import "time"

// Observation is a normalized current-conditions reading for one tracked
// place, as handed to downstream publishers.
type Observation struct {
	Place       string            `json:"place"`
	Coordinates Coordinates       `json:"coordinates"`
	Display     DisplayWeather    `json:"display"`
	Theme       Theme             `json:"theme"`
	Range       *TemperatureRange `json:"range,omitempty"`
	Timezone    string            `json:"timezone"`
	ObservedAt  time.Time         `json:"observed_at"`
}

// NewObservation normalizes payload for place at observedAt.
func NewObservation(place string, payload CurrentWeatherPayload, observedAt time.Time) Observation {
	obs := Observation{
		Place:       place,
		Coordinates: Coordinates{Latitude: payload.Latitude, Longitude: payload.Longitude},
		Display:     ToDisplayWeather(payload),
		Theme:       ThemeFor(payload.Current.WeatherCode),
		Timezone:    payload.Timezone,
		ObservedAt:  observedAt.UTC(),
	}
	if r, ok := DailyRange(payload); ok {
		obs.Range = &r
	}
	return obs
}

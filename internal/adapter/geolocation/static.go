package geolocation

import (
	"context"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// Static always reports the configured position.
type Static struct {
	Coords domain.Coordinates
}

func (s Static) CurrentPosition(context.Context) (domain.Coordinates, error) {
	return s.Coords, nil
}

// Unavailable is used when no position provider is configured.
type Unavailable struct{}

func (Unavailable) CurrentPosition(context.Context) (domain.Coordinates, error) {
	return domain.Coordinates{}, domain.ErrGeolocationUnavailable
}

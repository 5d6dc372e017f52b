package weather

import (
	"context"
	"strings"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// Resolver turns place names and the device position into coordinates.
// It caches nothing.
type Resolver struct {
	geocoder  domain.Geocoder
	positions domain.PositionProvider
}

// NewResolver creates a Resolver. A nil positions provider makes every
// CurrentPosition call fail with domain.ErrGeolocationUnavailable.
func NewResolver(geocoder domain.Geocoder, positions domain.PositionProvider) *Resolver {
	return &Resolver{geocoder: geocoder, positions: positions}
}

// Search returns up to five candidates in upstream order. A blank query is
// rejected before any network call; an empty result is not an error.
func (r *Resolver) Search(ctx context.Context, query string) ([]domain.LocationCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &domain.ValidationError{Field: "query", Reason: "must not be empty"}
	}
	return r.geocoder.Search(ctx, query)
}

// CurrentPosition reads the device position once.
func (r *Resolver) CurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	if r.positions == nil {
		return domain.Coordinates{}, domain.ErrGeolocationUnavailable
	}
	return r.positions.CurrentPosition(ctx)
}

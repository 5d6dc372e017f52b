package geolocation

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// CachedProvider returns the last successful fix while it is younger than
// maxAge, sampling the inner provider otherwise. Failures are never cached.
type CachedProvider struct {
	inner  domain.PositionProvider
	maxAge time.Duration
	clock  clockwork.Clock

	mu    sync.Mutex
	last  domain.Coordinates
	at    time.Time
	valid bool
}

// NewCachedProvider wraps inner. A maxAge of zero disables caching.
func NewCachedProvider(inner domain.PositionProvider, maxAge time.Duration, clock clockwork.Clock) *CachedProvider {
	return &CachedProvider{inner: inner, maxAge: maxAge, clock: clock}
}

func (c *CachedProvider) CurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	c.mu.Lock()
	if c.valid && c.clock.Since(c.at) <= c.maxAge {
		coords := c.last
		c.mu.Unlock()
		return coords, nil
	}
	c.mu.Unlock()

	coords, err := c.inner.CurrentPosition(ctx)
	if err != nil {
		return domain.Coordinates{}, err
	}

	c.mu.Lock()
	c.last, c.at, c.valid = coords, c.clock.Now(), c.maxAge > 0
	c.mu.Unlock()
	return coords, nil
}

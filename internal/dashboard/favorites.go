package dashboard

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/couchcryptid/weather-dashboard/internal/observability"
	"github.com/couchcryptid/weather-dashboard/internal/query"
)

// DefaultCapacity is the most favorites tracked at once.
const DefaultCapacity = 5

// DefaultSeed is the initial favorites list.
var DefaultSeed = []string{"São Paulo", "Rio de Janeiro"}

// Invalidator drops cache entries.
type Invalidator interface {
	Invalidate(keys ...query.Key)
}

// Favorites is an ordered, capacity-bounded set of place names. It lives as
// long as the process.
type Favorites struct {
	mu       sync.RWMutex
	names    []string
	capacity int

	cache   Invalidator
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewFavorites creates the set and adds seed in order under the usual rules.
func NewFavorites(seed []string, capacity int, cache Invalidator, metrics *observability.Metrics, logger *slog.Logger) *Favorites {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	f := &Favorites{
		names:    make([]string, 0, capacity),
		capacity: capacity,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
	for _, name := range seed {
		f.Add(name)
	}
	return f
}

// Add appends name. It is a no-op for blank names, names already present,
// and when the set is full. The result reports whether name was added.
func (f *Favorites) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if slices.Contains(f.names, name) {
		return false
	}
	if len(f.names) >= f.capacity {
		f.logger.Debug("favorites full, ignoring add", "place", name, "capacity", f.capacity)
		return false
	}
	f.names = append(f.names, name)
	f.metrics.Favorites.Set(float64(len(f.names)))
	return true
}

// Remove deletes name and invalidates its cached current conditions and
// forecast, so a later re-add fetches fresh data. The result reports whether
// name was present.
func (f *Favorites) Remove(name string) bool {
	name = strings.TrimSpace(name)

	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.Index(f.names, name)
	if i < 0 {
		return false
	}
	f.names = slices.Delete(f.names, i, i+1)
	f.metrics.Favorites.Set(float64(len(f.names)))

	f.cache.Invalidate(
		query.PlaceKey(query.KindCurrent, name),
		query.PlaceKey(query.KindForecast, name),
	)
	f.logger.Info("favorite removed", "place", name)
	return true
}

// List returns a copy of the names in insertion order.
func (f *Favorites) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.names)
}

// Contains reports whether name is tracked.
func (f *Favorites) Contains(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Contains(f.names, strings.TrimSpace(name))
}

// Capacity is the maximum number of favorites.
func (f *Favorites) Capacity() int {
	return f.capacity
}

package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
	"github.com/couchcryptid/weather-dashboard/internal/query"
)

// FavoritesLister supplies the places to refresh.
type FavoritesLister interface {
	List() []string
}

// CurrentRefetcher refreshes one place's current conditions.
type CurrentRefetcher interface {
	RefetchCurrent(ctx context.Context, place string) (query.Result[domain.CurrentWeatherPayload], error)
}

// Publisher hands observations downstream.
type Publisher interface {
	Publish(ctx context.Context, observations []domain.Observation) error
}

// Refresher keeps favorites warm in the cache on a schedule and publishes
// each round's observations.
type Refresher struct {
	favorites FavoritesLister
	hooks     CurrentRefetcher
	publisher Publisher
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Refresher that runs every interval.
func New(favorites FavoritesLister, hooks CurrentRefetcher, publisher Publisher, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	return &Refresher{
		favorites: favorites,
		hooks:     hooks,
		publisher: publisher,
		interval:  interval,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a round has refreshed at least one favorite.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("refresher has not completed a successful round yet")
	}
	return nil
}

// Run schedules RunOnce every interval, starting immediately, until ctx is
// cancelled. Rounds never overlap.
func (r *Refresher) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", r.interval)
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(r.interval).Do(func() {
		if err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("refresh round failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	r.logger.Info("refresher started", "interval", r.interval)
	r.metrics.RefresherRunning.Set(1)
	defer r.metrics.RefresherRunning.Set(0)

	s.StartAsync()
	<-ctx.Done()
	s.Stop()

	r.logger.Info("refresher stopping", "reason", ctx.Err())
	return nil
}

// RunOnce refreshes every favorite and publishes the successes. Per-place
// failures are logged and counted; the returned error is non-nil only when
// nothing could be refreshed.
func (r *Refresher) RunOnce(ctx context.Context) error {
	places := r.favorites.List()
	observations := make([]domain.Observation, 0, len(places))
	var failures int

	for _, place := range places {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := r.hooks.RefetchCurrent(ctx, place)
		if err != nil {
			failures++
			r.metrics.RefreshErrors.Inc()
			r.logger.Warn("refresh failed, skipping place", "place", place, "error", err)
			continue
		}
		observations = append(observations, domain.NewObservation(place, res.Data, r.clock.Now()))
	}

	if len(observations) > 0 {
		if err := r.publisher.Publish(ctx, observations); err != nil {
			r.logger.Error("publish observations failed", "error", err, "count", len(observations))
		} else {
			r.metrics.ObservationsPublished.Add(float64(len(observations)))
		}
		r.ready.Store(true)
	}

	switch {
	case failures == 0:
		r.metrics.RefreshRounds.WithLabelValues("success").Inc()
	case len(observations) > 0:
		r.metrics.RefreshRounds.WithLabelValues("partial").Inc()
	default:
		r.metrics.RefreshRounds.WithLabelValues("failed").Inc()
		return fmt.Errorf("refresh failed for all %d favorites", failures)
	}

	r.logger.Debug("refresh round complete", "refreshed", len(observations), "failed", failures)
	return nil
}

// Discard is a Publisher that drops observations.
type Discard struct{}

func (Discard) Publish(context.Context, []domain.Observation) error { return nil }

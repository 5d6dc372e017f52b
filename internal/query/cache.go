package query

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

// Status describes a Result.
type Status string

const (
	// StatusIdle means the read was disabled and nothing was fetched.
	StatusIdle Status = "idle"
	// StatusSuccess means Data holds a fetched value.
	StatusSuccess Status = "success"
)

// Result is what a read hands back to its caller.
type Result[T any] struct {
	Data      T
	Status    Status
	FetchedAt time.Time
	// Stale is set when Data is past its stale time; a background
	// revalidation has been started.
	Stale bool
	// FromCache is set when no network call was awaited for this read.
	FromCache bool
}

// Idle returns the result of a disabled read.
func Idle[T any]() Result[T] {
	return Result[T]{Status: StatusIdle}
}

// entry is stored by pointer and never mutated, so readers see either the
// old or the new value for a key.
type entry struct {
	value     any
	fetchedAt time.Time
}

type readMeta struct {
	stale     bool
	fromCache bool
}

// FetchFunc performs the network call for one key.
type FetchFunc func(ctx context.Context) (any, error)

// Cache is the keyed store behind every weather read. It serves fresh
// entries directly, serves stale entries while revalidating in the
// background, and lets at most one fetch per key run at a time.
type Cache struct {
	store   *gocache.Cache
	flights singleflight.Group
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	// mu orders commits against invalidation.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewCache creates a Cache whose entries are dropped gcTime after they were
// written unless a read's Options say otherwise.
func NewCache(gcTime time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Cache {
	return &Cache{
		store:       gocache.New(gcTime, gcTime/2),
		clock:       clock,
		metrics:     metrics,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

// Fetch returns the cached value for key when fresh, the stale value plus a
// background revalidation when stale, or the result of fn otherwise. If ctx
// ends first the caller gets ctx.Err() and the fetch keeps running for others.
func Fetch[T any](ctx context.Context, c *Cache, key Key, opts Options, fn func(context.Context) (T, error)) (Result[T], error) {
	e, meta, err := c.fetch(ctx, key, opts, erase(fn), false)
	if err != nil {
		return Result[T]{}, err
	}
	return typed[T](key, e, meta)
}

// Refetch bypasses staleness but still joins a fetch already in flight.
func Refetch[T any](ctx context.Context, c *Cache, key Key, opts Options, fn func(context.Context) (T, error)) (Result[T], error) {
	e, meta, err := c.fetch(ctx, key, opts, erase(fn), true)
	if err != nil {
		return Result[T]{}, err
	}
	return typed[T](key, e, meta)
}

// Peek returns the cached value for key without fetching.
func Peek[T any](c *Cache, key Key) (Result[T], bool) {
	e, ok := c.lookup(key.String())
	if !ok {
		return Result[T]{}, false
	}
	r, err := typed[T](key, e, readMeta{fromCache: true})
	if err != nil {
		return Result[T]{}, false
	}
	return r, true
}

// Invalidate drops the entries for keys. Fetches already in flight for them
// are not written back, and later reads start a new fetch instead of joining.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		ks := k.String()
		c.generations[ks]++
		c.store.Delete(ks)
		c.flights.Forget(ks)
		c.logger.Debug("cache entry invalidated", "key", ks)
	}
}

// Len is the number of stored entries, expired ones included until the next sweep.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

func (c *Cache) fetch(ctx context.Context, key Key, opts Options, fn FetchFunc, force bool) (*entry, readMeta, error) {
	ks := key.String()
	kind := string(key.Kind)

	if !force {
		if e, ok := c.lookup(ks); ok {
			if c.clock.Since(e.fetchedAt) < opts.StaleTime {
				c.metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
				return e, readMeta{fromCache: true}, nil
			}
			c.metrics.CacheLookups.WithLabelValues(kind, "stale").Inc()
			c.revalidate(ctx, key, opts, fn)
			return e, readMeta{fromCache: true, stale: true}, nil
		}
		c.metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
	}

	ch, leader := c.start(ctx, key, opts, fn)
	select {
	case r := <-ch:
		if !leader.Load() {
			c.metrics.CacheJoins.WithLabelValues(kind).Inc()
		}
		if r.Err != nil {
			return nil, readMeta{}, r.Err
		}
		return r.Val.(*entry), readMeta{}, nil
	case <-ctx.Done():
		return nil, readMeta{}, ctx.Err()
	}
}

// start joins or launches the flight for key. The flight runs detached from
// the caller's cancellation. leader reports, once the result is received,
// whether this caller's fn was the one that ran.
func (c *Cache) start(ctx context.Context, key Key, opts Options, fn FetchFunc) (<-chan singleflight.Result, *atomic.Bool) {
	ks := key.String()
	gen := c.generation(ks)
	flightCtx := context.WithoutCancel(ctx)
	leader := &atomic.Bool{}

	ch := c.flights.DoChan(ks, func() (any, error) {
		leader.Store(true)
		v, err := c.runWithRetry(flightCtx, key, opts, fn)
		if err != nil {
			return nil, err
		}
		e := &entry{value: v, fetchedAt: c.clock.Now()}
		if !c.commit(ks, gen, e, opts.GCTime) {
			c.logger.Debug("discarding result fetched before invalidation", "key", ks)
		}
		return e, nil
	})
	return ch, leader
}

func (c *Cache) revalidate(ctx context.Context, key Key, opts Options, fn FetchFunc) {
	ch, _ := c.start(ctx, key, opts, fn)
	go func() {
		if r := <-ch; r.Err != nil {
			c.logger.Warn("background revalidation failed", "key", key.String(), "error", r.Err)
		}
	}()
}

func (c *Cache) runWithRetry(ctx context.Context, key Key, opts Options, fn FetchFunc) (any, error) {
	delay := opts.RetryDelay
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= opts.Retry || !domain.IsRetryable(err) {
			return nil, err
		}

		c.metrics.CacheRetries.WithLabelValues(string(key.Kind)).Inc()
		c.logger.Warn("fetch failed, retrying",
			"key", key.String(),
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		if !sleepWithContext(ctx, c.clock, delay) {
			return nil, ctx.Err()
		}
		delay = nextBackoff(delay, maxRetryDelay)
	}
}

func (c *Cache) lookup(ks string) (*entry, bool) {
	v, ok := c.store.Get(ks)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

func (c *Cache) generation(ks string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[ks]
}

// commit stores e unless key was invalidated after gen was read.
func (c *Cache) commit(ks string, gen uint64, e *entry, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[ks] != gen {
		return false
	}
	c.store.Set(ks, e, ttl)
	return true
}

func erase[T any](fn func(context.Context) (T, error)) FetchFunc {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

func typed[T any](key Key, e *entry, meta readMeta) (Result[T], error) {
	data, ok := e.value.(T)
	if !ok {
		return Result[T]{}, fmt.Errorf("cached value for %s has type %T", key, e.value)
	}
	return Result[T]{
		Data:      data,
		Status:    StatusSuccess,
		FetchedAt: e.fetchedAt,
		Stale:     meta.stale,
		FromCache: meta.fromCache,
	}, nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

package dashboard

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/query"
	"github.com/couchcryptid/weather-dashboard/internal/weather"
)

// minSearchLength is the shortest query, in characters, that triggers a search.
const minSearchLength = 3

// Policy maps each read kind to its fetch options.
type Policy map[query.Kind]query.Options

// DefaultPolicy is 5/10/15 minute staleness with 2/2/1 retries.
func DefaultPolicy() Policy {
	return Policy{
		query.KindCurrent:  query.DefaultOptions(query.KindCurrent),
		query.KindForecast: query.DefaultOptions(query.KindForecast),
		query.KindSearch:   query.DefaultOptions(query.KindSearch),
	}
}

// Hooks wraps each weather read with its cache key, policy, and enable gate.
// A disabled read returns an idle result without touching the network.
type Hooks struct {
	client *weather.Client
	cache  *query.Cache
	policy Policy
}

// NewHooks creates Hooks. Kinds missing from policy use query.DefaultOptions.
func NewHooks(client *weather.Client, cache *query.Cache, policy Policy) *Hooks {
	merged := DefaultPolicy()
	for k, v := range policy {
		merged[k] = v
	}
	return &Hooks{client: client, cache: cache, policy: merged}
}

// CurrentWeather reads current conditions for a place name.
func (h *Hooks) CurrentWeather(ctx context.Context, place string, enabled bool) (query.Result[domain.CurrentWeatherPayload], error) {
	place = ownedTrim(place)
	if !enabled || place == "" {
		return query.Idle[domain.CurrentWeatherPayload](), nil
	}
	return query.Fetch(ctx, h.cache, query.PlaceKey(query.KindCurrent, place), h.policy[query.KindCurrent], h.currentByName(place))
}

// CurrentWeatherByCoords reads current conditions for coordinates. A nil
// pointer means the position is not known yet and disables the read.
func (h *Hooks) CurrentWeatherByCoords(ctx context.Context, coords *domain.Coordinates, enabled bool) (query.Result[domain.CurrentWeatherPayload], error) {
	if !enabled || coords == nil {
		return query.Idle[domain.CurrentWeatherPayload](), nil
	}
	return query.Fetch(ctx, h.cache, query.CoordsKey(query.KindCurrent, *coords), h.policy[query.KindCurrent], h.currentByCoords(*coords))
}

// Forecast reads the seven-day forecast for a place name.
func (h *Hooks) Forecast(ctx context.Context, place string, enabled bool) (query.Result[domain.ForecastPayload], error) {
	place = ownedTrim(place)
	if !enabled || place == "" {
		return query.Idle[domain.ForecastPayload](), nil
	}
	return query.Fetch(ctx, h.cache, query.PlaceKey(query.KindForecast, place), h.policy[query.KindForecast], h.forecastByName(place))
}

// ForecastByCoords reads the seven-day forecast for coordinates.
func (h *Hooks) ForecastByCoords(ctx context.Context, coords *domain.Coordinates, enabled bool) (query.Result[domain.ForecastPayload], error) {
	if !enabled || coords == nil {
		return query.Idle[domain.ForecastPayload](), nil
	}
	return query.Fetch(ctx, h.cache, query.CoordsKey(query.KindForecast, *coords), h.policy[query.KindForecast], h.forecastByCoords(*coords))
}

// SearchEnabled reports whether q is long enough to search for.
func SearchEnabled(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) >= minSearchLength
}

// LocationSearch looks up place candidates once q passes SearchEnabled.
func (h *Hooks) LocationSearch(ctx context.Context, q string, enabled bool) (query.Result[[]domain.LocationCandidate], error) {
	if !enabled || !SearchEnabled(q) {
		return query.Idle[[]domain.LocationCandidate](), nil
	}
	q = ownedTrim(q)
	return query.Fetch(ctx, h.cache, query.SearchKey(q), h.policy[query.KindSearch], h.search(q))
}

// Geolocate reads the device position. Positions are not cached here.
func (h *Hooks) Geolocate(ctx context.Context) (domain.Coordinates, error) {
	return h.client.Resolver().CurrentPosition(ctx)
}

// RefetchCurrent refreshes a place's current conditions regardless of staleness.
func (h *Hooks) RefetchCurrent(ctx context.Context, place string) (query.Result[domain.CurrentWeatherPayload], error) {
	place = ownedTrim(place)
	return query.Refetch(ctx, h.cache, query.PlaceKey(query.KindCurrent, place), h.policy[query.KindCurrent], h.currentByName(place))
}

// RefetchCurrentByCoords refreshes current conditions for coordinates.
func (h *Hooks) RefetchCurrentByCoords(ctx context.Context, coords domain.Coordinates) (query.Result[domain.CurrentWeatherPayload], error) {
	return query.Refetch(ctx, h.cache, query.CoordsKey(query.KindCurrent, coords), h.policy[query.KindCurrent], h.currentByCoords(coords))
}

// RefetchForecast refreshes a place's forecast regardless of staleness.
func (h *Hooks) RefetchForecast(ctx context.Context, place string) (query.Result[domain.ForecastPayload], error) {
	place = ownedTrim(place)
	return query.Refetch(ctx, h.cache, query.PlaceKey(query.KindForecast, place), h.policy[query.KindForecast], h.forecastByName(place))
}

// RefetchForecastByCoords refreshes the forecast for coordinates.
func (h *Hooks) RefetchForecastByCoords(ctx context.Context, coords domain.Coordinates) (query.Result[domain.ForecastPayload], error) {
	return query.Refetch(ctx, h.cache, query.CoordsKey(query.KindForecast, coords), h.policy[query.KindForecast], h.forecastByCoords(coords))
}

// RefetchSearch repeats a location search regardless of staleness.
func (h *Hooks) RefetchSearch(ctx context.Context, q string) (query.Result[[]domain.LocationCandidate], error) {
	q = ownedTrim(q)
	return query.Refetch(ctx, h.cache, query.SearchKey(q), h.policy[query.KindSearch], h.search(q))
}

func (h *Hooks) currentByName(place string) func(context.Context) (domain.CurrentWeatherPayload, error) {
	return func(ctx context.Context) (domain.CurrentWeatherPayload, error) {
		return h.client.GetCurrentWeather(ctx, place)
	}
}

func (h *Hooks) currentByCoords(coords domain.Coordinates) func(context.Context) (domain.CurrentWeatherPayload, error) {
	return func(ctx context.Context) (domain.CurrentWeatherPayload, error) {
		return h.client.GetCurrentWeatherByCoords(ctx, coords)
	}
}

func (h *Hooks) forecastByName(place string) func(context.Context) (domain.ForecastPayload, error) {
	return func(ctx context.Context) (domain.ForecastPayload, error) {
		return h.client.GetForecast(ctx, place)
	}
}

func (h *Hooks) forecastByCoords(coords domain.Coordinates) func(context.Context) (domain.ForecastPayload, error) {
	return func(ctx context.Context) (domain.ForecastPayload, error) {
		return h.client.GetForecastByCoords(ctx, coords)
	}
}

func (h *Hooks) search(q string) func(context.Context) ([]domain.LocationCandidate, error) {
	return func(ctx context.Context) ([]domain.LocationCandidate, error) {
		return h.client.Resolver().Search(ctx, q)
	}
}

// ownedTrim trims s and copies it. Fetch closures outlive the call, and
// transports such as fasthttp reuse the memory behind request strings.
func ownedTrim(s string) string {
	return strings.Clone(strings.TrimSpace(s))
}

package weather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// Client fetches weather payloads by coordinates or by place name. Place
// lookups take the first geocoding candidate as the match. Nothing is
// retried here.
type Client struct {
	resolver *Resolver
	fetcher  domain.ForecastFetcher
	logger   *slog.Logger
}

// NewClient creates a weather Client.
func NewClient(resolver *Resolver, fetcher domain.ForecastFetcher, logger *slog.Logger) *Client {
	return &Client{resolver: resolver, fetcher: fetcher, logger: logger}
}

// Resolver exposes the underlying location resolver.
func (c *Client) Resolver() *Resolver {
	return c.resolver
}

// GetCurrentWeatherByCoords fetches current conditions with no location label.
func (c *Client) GetCurrentWeatherByCoords(ctx context.Context, coords domain.Coordinates) (domain.CurrentWeatherPayload, error) {
	return c.fetcher.Current(ctx, coords)
}

// GetCurrentWeather resolves place and fetches its current conditions,
// stamping the match's name and country on the payload.
func (c *Client) GetCurrentWeather(ctx context.Context, place string) (domain.CurrentWeatherPayload, error) {
	match, err := c.resolve(ctx, place)
	if err != nil {
		return domain.CurrentWeatherPayload{}, err
	}

	payload, err := c.fetcher.Current(ctx, match.Coordinates())
	if err != nil {
		return domain.CurrentWeatherPayload{}, fmt.Errorf("current weather for %q: %w", match.Name, err)
	}
	payload.Name = match.Name
	payload.Country = match.Country
	return payload, nil
}

// GetForecastByCoords fetches the seven-day forecast with no location label.
func (c *Client) GetForecastByCoords(ctx context.Context, coords domain.Coordinates) (domain.ForecastPayload, error) {
	return c.fetcher.Forecast(ctx, coords)
}

// GetForecast resolves place and fetches its forecast.
func (c *Client) GetForecast(ctx context.Context, place string) (domain.ForecastPayload, error) {
	match, err := c.resolve(ctx, place)
	if err != nil {
		return domain.ForecastPayload{}, err
	}

	payload, err := c.fetcher.Forecast(ctx, match.Coordinates())
	if err != nil {
		return domain.ForecastPayload{}, fmt.Errorf("forecast for %q: %w", match.Name, err)
	}
	payload.Name = match.Name
	payload.Country = match.Country
	return payload, nil
}

func (c *Client) resolve(ctx context.Context, place string) (domain.LocationCandidate, error) {
	candidates, err := c.resolver.Search(ctx, place)
	if err != nil {
		return domain.LocationCandidate{}, fmt.Errorf("resolve %q: %w", place, err)
	}
	if len(candidates) == 0 {
		c.logger.Debug("place not found", "place", place)
		return domain.LocationCandidate{}, &domain.NotFoundError{Place: place}
	}
	return candidates[0], nil
}

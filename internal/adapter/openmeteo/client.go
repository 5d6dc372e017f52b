package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

const (
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

	maxCandidates   = 5
	searchLanguage  = "pt"
	maxBodyBytes    = 8 << 20
	maxErrorExcerpt = 256
)

// Endpoint names used for metrics, spans, breakers, and TransportError.Op.
const (
	endpointSearch   = "search"
	endpointCurrent  = "current"
	endpointForecast = "forecast"
)

// Field lists requested from the forecast endpoint. The normalizer reads
// these names verbatim from the response.
var (
	currentFields       = []string{"temperature_2m", "relative_humidity_2m", "apparent_temperature", "precipitation", "rain", "weather_code", "cloud_cover", "pressure_msl", "wind_speed_10m", "wind_direction_10m"}
	currentDailyFields  = []string{"weather_code", "temperature_2m_max", "temperature_2m_min", "precipitation_sum"}
	forecastDailyFields = []string{"weather_code", "temperature_2m_max", "temperature_2m_min", "precipitation_sum", "wind_speed_10m_max"}
	hourlyFields        = []string{"temperature_2m", "relative_humidity_2m", "precipitation", "weather_code", "wind_speed_10m"}
)

// Client implements domain.Geocoder and domain.ForecastFetcher against the
// Open-Meteo forecast and geocoding APIs. It never retries; every failure is
// returned as a *domain.TransportError.
type Client struct {
	httpClient   *http.Client
	forecastURL  string
	geocodingURL string
	forecastCB   *gobreaker.CircuitBreaker
	geocodingCB  *gobreaker.CircuitBreaker
	metrics      *observability.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
}

// NewClient creates an Open-Meteo client. Empty URLs fall back to the public endpoints.
func NewClient(forecastURL, geocodingURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		forecastURL:  forecastURL,
		geocodingURL: geocodingURL,
		forecastCB:   newBreaker("forecast", metrics, logger),
		geocodingCB:  newBreaker("geocoding", metrics, logger),
		metrics:      metrics,
		logger:       logger,
		tracer:       otel.Tracer("github.com/couchcryptid/weather-dashboard/internal/adapter/openmeteo"),
	}
}

func newBreaker(name string, metrics *observability.Metrics, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// CheckReadiness fails while the forecast breaker is open.
func (c *Client) CheckReadiness(_ context.Context) error {
	if c.forecastCB.State() == gobreaker.StateOpen {
		return errors.New("open-meteo forecast circuit breaker is open")
	}
	return nil
}

// Search returns up to five place candidates for query in upstream order.
// A response without results is an empty, non-nil slice.
func (c *Client) Search(ctx context.Context, query string) ([]domain.LocationCandidate, error) {
	params := url.Values{
		"name":     {query},
		"count":    {strconv.Itoa(maxCandidates)},
		"language": {searchLanguage},
		"format":   {"json"},
	}

	var resp searchResponse
	if err := c.get(ctx, endpointSearch, c.geocodingCB, c.geocodingURL, params, &resp); err != nil {
		return nil, err
	}

	results := resp.Results
	if len(results) > maxCandidates {
		results = results[:maxCandidates]
	}
	if len(results) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues(endpointSearch, "empty").Inc()
		return []domain.LocationCandidate{}, nil
	}
	c.metrics.UpstreamRequests.WithLabelValues(endpointSearch, "success").Inc()
	return results, nil
}

// Current fetches instantaneous conditions plus today's daily summary.
func (c *Client) Current(ctx context.Context, coords domain.Coordinates) (domain.CurrentWeatherPayload, error) {
	params := coordinateParams(coords)
	params.Set("current", strings.Join(currentFields, ","))
	params.Set("daily", strings.Join(currentDailyFields, ","))
	params.Set("forecast_days", "1")

	var payload domain.CurrentWeatherPayload
	if err := c.get(ctx, endpointCurrent, c.forecastCB, c.forecastURL, params, &payload); err != nil {
		return domain.CurrentWeatherPayload{}, err
	}
	c.metrics.UpstreamRequests.WithLabelValues(endpointCurrent, "success").Inc()
	return payload, nil
}

// Forecast fetches seven days of daily series plus the hourly series.
func (c *Client) Forecast(ctx context.Context, coords domain.Coordinates) (domain.ForecastPayload, error) {
	params := coordinateParams(coords)
	params.Set("daily", strings.Join(forecastDailyFields, ","))
	params.Set("hourly", strings.Join(hourlyFields, ","))
	params.Set("forecast_days", "7")

	var payload domain.ForecastPayload
	if err := c.get(ctx, endpointForecast, c.forecastCB, c.forecastURL, params, &payload); err != nil {
		return domain.ForecastPayload{}, err
	}
	c.metrics.UpstreamRequests.WithLabelValues(endpointForecast, "success").Inc()
	return payload, nil
}

func coordinateParams(coords domain.Coordinates) url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(coords.Latitude, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(coords.Longitude, 'f', -1, 64)},
		"timezone":  {"auto"},
	}
}

// get performs one GET through the endpoint's breaker and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, cb *gobreaker.CircuitBreaker, baseURL string, params url.Values, out any) (err error) {
	fullURL := baseURL + "?" + params.Encode()

	ctx, span := c.tracer.Start(ctx, "openmeteo."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", fullURL)),
	)
	start := time.Now()
	defer func() {
		c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err != nil {
			c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Debug("open-meteo request failed", "endpoint", endpoint, "error", err)
		}
		span.End()
	}()

	body, err := cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, endpoint, fullURL)
	})
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) {
			return err
		}
		// Breaker rejections (open or half-open saturation).
		return &domain.TransportError{Op: endpoint, Err: err}
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return &domain.TransportError{Op: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.TransportError{Op: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.TransportError{Op: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.TransportError{Op: endpoint, StatusCode: resp.StatusCode, Err: upstreamError(body)}
	}
	return body, nil
}

// upstreamError extracts Open-Meteo's {"error":true,"reason":"..."} message,
// falling back to a body excerpt.
func upstreamError(body []byte) error {
	var e errorResponse
	if json.Unmarshal(body, &e) == nil && e.Reason != "" {
		return fmt.Errorf("open-meteo API error: %s", e.Reason)
	}
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > maxErrorExcerpt {
		excerpt = excerpt[:maxErrorExcerpt]
	}
	return fmt.Errorf("open-meteo API error: %s", excerpt)
}

// Open-Meteo response types not shared with the domain.

type searchResponse struct {
	Results []domain.LocationCandidate `json:"results"`
}

type errorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

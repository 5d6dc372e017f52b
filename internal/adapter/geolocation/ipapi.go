package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

// DefaultIPAPIURL is the ip-api.com JSON endpoint for the caller's own address.
const DefaultIPAPIURL = "http://ip-api.com/json/"

const timeoutMessage = "Timeout expired"

// IPAPIProvider approximates the device position from the host's public IP
// address using ip-api.com.
type IPAPIProvider struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewIPAPIProvider creates a provider that gives up after timeout.
func NewIPAPIProvider(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *IPAPIProvider {
	if url == "" {
		url = DefaultIPAPIURL
	}
	return &IPAPIProvider{
		url:        url,
		timeout:    timeout,
		httpClient: &http.Client{},
		metrics:    metrics,
		logger:     logger,
	}
}

// CurrentPosition performs a single lookup. Refusals and lookup failures are
// reported as *domain.GeolocationError carrying the provider's message.
func (p *IPAPIProvider) CurrentPosition(ctx context.Context) (domain.Coordinates, error) {
	coords, err := p.lookup(ctx)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.metrics.UpstreamRequests.WithLabelValues("geolocation", outcome).Inc()
	return coords, err
}

func (p *IPAPIProvider) lookup(parent context.Context) (domain.Coordinates, error) {
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, p.classify(parent, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinates{}, &domain.GeolocationError{
			Reason:  domain.GeolocationDenied,
			Message: fmt.Sprintf("provider returned status %d", resp.StatusCode),
		}
	}

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Coordinates{}, p.classify(parent, fmt.Errorf("decode response: %w", err))
	}
	if body.Status != "success" {
		msg := body.Message
		if msg == "" {
			msg = "position unavailable"
		}
		return domain.Coordinates{}, &domain.GeolocationError{Reason: domain.GeolocationDenied, Message: msg}
	}

	p.logger.Debug("device position resolved", "lat", body.Lat, "lon", body.Lon, "city", body.City)
	return domain.Coordinates{Latitude: body.Lat, Longitude: body.Lon}, nil
}

// classify maps a lookup failure to a geolocation error. Cancellation by the
// caller is returned unchanged.
func (p *IPAPIProvider) classify(parent context.Context, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.GeolocationError{Reason: domain.GeolocationTimeout, Message: timeoutMessage}
	}
	return &domain.GeolocationError{Reason: domain.GeolocationDenied, Message: err.Error()}
}

type ipapiResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

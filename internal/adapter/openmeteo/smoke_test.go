//go:build openmeteo

package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
)

// These tests hit the real Open-Meteo APIs (no key needed).
// Run with: go test -tags=openmeteo ./internal/adapter/openmeteo/ -v -count=1

func smokeClient() *Client {
	return NewClient(DefaultForecastURL, DefaultGeocodingURL, 10*time.Second,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_Search(t *testing.T) {
	got, err := smokeClient().Search(context.Background(), "São Paulo")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 5)

	assert.Equal(t, "São Paulo", got[0].Name)
	assert.Equal(t, "BR", got[0].CountryCode)
	assert.InDelta(t, -23.55, got[0].Latitude, 0.1)
	assert.InDelta(t, -46.63, got[0].Longitude, 0.1)
}

func TestSmoke_SearchNoMatch(t *testing.T) {
	got, err := smokeClient().Search(context.Background(), "Qzxqzxqzx Nowhere")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSmoke_Current(t *testing.T) {
	got, err := smokeClient().Current(context.Background(), domain.Coordinates{Latitude: -23.55, Longitude: -46.63})
	require.NoError(t, err)

	assert.Equal(t, "America/Sao_Paulo", got.Timezone)
	assert.NotEmpty(t, got.Current.Time)
	assert.Equal(t, "hPa", got.CurrentUnits.PressureMSL)
	require.NotNil(t, got.Daily)
	assert.Equal(t, 1, got.Daily.Len())

	display := domain.ToDisplayWeather(got)
	assert.NotEmpty(t, display.Description)
}

func TestSmoke_Forecast(t *testing.T) {
	got, err := smokeClient().Forecast(context.Background(), domain.Coordinates{Latitude: -22.91, Longitude: -43.17})
	require.NoError(t, err)

	assert.Equal(t, 7, got.Daily.Len())
	assert.Len(t, got.Daily.WindSpeed10mMax, 7)
	assert.Equal(t, 7*24, got.Hourly.Len())
}

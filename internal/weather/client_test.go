package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// --- fakes ---

type fakeGeocoder struct {
	results []domain.LocationCandidate
	err     error
	calls   int
	queries []string
}

func (f *fakeGeocoder) Search(_ context.Context, query string) ([]domain.LocationCandidate, error) {
	f.calls++
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeFetcher struct {
	current  domain.CurrentWeatherPayload
	forecast domain.ForecastPayload
	err      error
	coords   []domain.Coordinates
}

func (f *fakeFetcher) Current(_ context.Context, coords domain.Coordinates) (domain.CurrentWeatherPayload, error) {
	f.coords = append(f.coords, coords)
	return f.current, f.err
}

func (f *fakeFetcher) Forecast(_ context.Context, coords domain.Coordinates) (domain.ForecastPayload, error) {
	f.coords = append(f.coords, coords)
	return f.forecast, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var saoPaulo = domain.LocationCandidate{ID: 3448439, Name: "São Paulo", Latitude: -23.55, Longitude: -46.63, Country: "BR", CountryCode: "BR"}

// --- tests ---

func TestGetCurrentWeather_EndToEnd(t *testing.T) {
	geo := &fakeGeocoder{results: []domain.LocationCandidate{saoPaulo, {Name: "São Paulo de Olivença", Latitude: -3.4, Longitude: -68.9}}}
	fetcher := &fakeFetcher{current: domain.CurrentWeatherPayload{
		Current: domain.CurrentValues{Temperature2m: 25, WeatherCode: 1},
	}}
	c := NewClient(NewResolver(geo, nil), fetcher, discardLogger())

	payload, err := c.GetCurrentWeather(context.Background(), "São Paulo")
	require.NoError(t, err)

	assert.Equal(t, []domain.Coordinates{{Latitude: -23.55, Longitude: -46.63}}, fetcher.coords, "first candidate wins")
	assert.Equal(t, "São Paulo", payload.Name)
	assert.Equal(t, "BR", payload.Country)

	display := domain.ToDisplayWeather(payload)
	assert.Equal(t, 25, display.Temperature)
	assert.Equal(t, "Principalmente limpo", display.Description)
	assert.Equal(t, 1, display.WeatherCode)
	assert.Equal(t, "São Paulo", display.Location)
}

func TestGetCurrentWeather_NotFound(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := NewClient(NewResolver(&fakeGeocoder{results: []domain.LocationCandidate{}}, nil), fetcher, discardLogger())

	_, err := c.GetCurrentWeather(context.Background(), "Atlantis")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, `Cidade "Atlantis" não encontrada`, err.Error())
	assert.False(t, domain.IsRetryable(err))
	assert.Empty(t, fetcher.coords, "no weather call without a match")
}

func TestGetForecast_NotFound(t *testing.T) {
	c := NewClient(NewResolver(&fakeGeocoder{}, nil), &fakeFetcher{}, discardLogger())

	_, err := c.GetForecast(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetForecast_Stamps(t *testing.T) {
	fetcher := &fakeFetcher{forecast: domain.ForecastPayload{Timezone: "America/Sao_Paulo"}}
	c := NewClient(NewResolver(&fakeGeocoder{results: []domain.LocationCandidate{saoPaulo}}, nil), fetcher, discardLogger())

	got, err := c.GetForecast(context.Background(), "São Paulo")
	require.NoError(t, err)

	want := domain.ForecastPayload{Timezone: "America/Sao_Paulo", Name: "São Paulo", Country: "BR"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("forecast mismatch (-want +got):\n%s", diff)
	}
}

func TestTransportErrorsStayDistinguishable(t *testing.T) {
	transport := &domain.TransportError{Op: "search", StatusCode: 503, Err: errors.New("unavailable")}
	c := NewClient(NewResolver(&fakeGeocoder{err: transport}, nil), &fakeFetcher{}, discardLogger())

	_, err := c.GetCurrentWeather(context.Background(), "Recife")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, domain.IsRetryable(err))

	fetchErr := &domain.TransportError{Op: "current", StatusCode: 500, Err: errors.New("boom")}
	c = NewClient(NewResolver(&fakeGeocoder{results: []domain.LocationCandidate{saoPaulo}}, nil), &fakeFetcher{err: fetchErr}, discardLogger())
	_, err = c.GetCurrentWeather(context.Background(), "São Paulo")
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "current", te.Op)
}

func TestByCoords_NoLabel(t *testing.T) {
	fetcher := &fakeFetcher{current: domain.CurrentWeatherPayload{Latitude: 1}}
	geo := &fakeGeocoder{}
	c := NewClient(NewResolver(geo, nil), fetcher, discardLogger())

	got, err := c.GetCurrentWeatherByCoords(context.Background(), domain.Coordinates{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.Zero(t, geo.calls)

	_, err = c.GetForecastByCoords(context.Background(), domain.Coordinates{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	assert.Len(t, fetcher.coords, 2)
}

func TestResolver_Search(t *testing.T) {
	geo := &fakeGeocoder{results: []domain.LocationCandidate{saoPaulo}}
	r := NewResolver(geo, nil)

	got, err := r.Search(context.Background(), "São")
	require.NoError(t, err)
	assert.Equal(t, []domain.LocationCandidate{saoPaulo}, got)
	assert.Equal(t, []string{"São"}, geo.queries)
}

func TestResolver_SearchRejectsBlank(t *testing.T) {
	geo := &fakeGeocoder{}
	r := NewResolver(geo, nil)

	for _, q := range []string{"", "   "} {
		_, err := r.Search(context.Background(), q)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
	}
	assert.Zero(t, geo.calls)
}

type stubPositions struct {
	coords domain.Coordinates
	err    error
}

func (s stubPositions) CurrentPosition(context.Context) (domain.Coordinates, error) {
	return s.coords, s.err
}

func TestResolver_CurrentPosition(t *testing.T) {
	_, err := NewResolver(&fakeGeocoder{}, nil).CurrentPosition(context.Background())
	assert.ErrorIs(t, err, domain.ErrGeolocationUnavailable)

	want := domain.Coordinates{Latitude: -22.9, Longitude: -43.2}
	got, err := NewResolver(&fakeGeocoder{}, stubPositions{coords: want}).CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	denied := &domain.GeolocationError{Reason: domain.GeolocationDenied, Message: "User denied Geolocation"}
	_, err = NewResolver(&fakeGeocoder{}, stubPositions{err: denied}).CurrentPosition(context.Background())
	assert.ErrorIs(t, err, domain.ErrGeolocationDenied)
}

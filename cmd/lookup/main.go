// Command lookup fetches weather for one place and prints the normalized view
// as JSON. It goes through the same cache, retry, and normalization path as
// the dashboard service, so it doubles as a smoke check against Open-Meteo.
//
// Usage:
//
//	go run ./cmd/lookup -city "São Paulo"
//	go run ./cmd/lookup -lat -23.55 -lon -46.63 -forecast
//	go run ./cmd/lookup -search Curi
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-dashboard/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-dashboard/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
	"github.com/couchcryptid/weather-dashboard/internal/query"
	"github.com/couchcryptid/weather-dashboard/internal/weather"
)

type options struct {
	city     string
	lat, lon float64
	search   string
	forecast bool
	timeout  time.Duration
	verbose  bool
}

func main() {
	var o options
	flag.StringVar(&o.city, "city", "", "place name to look up")
	flag.Float64Var(&o.lat, "lat", math.NaN(), "latitude (with -lon)")
	flag.Float64Var(&o.lon, "lon", math.NaN(), "longitude (with -lat)")
	flag.StringVar(&o.search, "search", "", "list location candidates instead of fetching weather")
	flag.BoolVar(&o.forecast, "forecast", false, "print the seven-day forecast instead of current conditions")
	flag.DurationVar(&o.timeout, "timeout", 30*time.Second, "overall deadline")
	flag.BoolVar(&o.verbose, "v", false, "log retries and upstream calls to stderr")
	flag.Parse()

	hasCoords := !math.IsNaN(o.lat) && !math.IsNaN(o.lon)
	if o.city == "" && o.search == "" && !hasCoords {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(o, hasCoords, os.Stdout, os.Stderr))
}

func run(o options, hasCoords bool, stdout, stderr io.Writer) int {
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	metrics := observability.NewMetrics()

	upstream := openmeteo.NewClient("", "", 10*time.Second, metrics, logger)
	client := weather.NewClient(weather.NewResolver(upstream, nil), upstream, logger)
	cache := query.NewCache(time.Minute, clockwork.NewRealClock(), metrics, logger)
	hooks := dashboard.NewHooks(client, cache, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	out, err := lookup(ctx, hooks, o, hasCoords)
	if err != nil {
		fmt.Fprintf(stderr, "%s (%s)\n", domain.UserMessage(err), domain.ErrorKind(err))
		if o.verbose {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func lookup(ctx context.Context, hooks *dashboard.Hooks, o options, hasCoords bool) (any, error) {
	var coords *domain.Coordinates
	if hasCoords {
		coords = &domain.Coordinates{Latitude: o.lat, Longitude: o.lon}
	}

	switch {
	case o.search != "":
		if !dashboard.SearchEnabled(o.search) {
			return []domain.LocationCandidate{}, nil
		}
		res, err := hooks.LocationSearch(ctx, o.search, true)
		return res.Data, err

	case o.forecast:
		var (
			res query.Result[domain.ForecastPayload]
			err error
		)
		if coords != nil {
			res, err = hooks.ForecastByCoords(ctx, coords, true)
		} else {
			res, err = hooks.Forecast(ctx, o.city, true)
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"days":   domain.ForecastDays(res.Data),
			"hourly": domain.UpcomingHours(res.Data, 24),
		}, nil

	default:
		var (
			res query.Result[domain.CurrentWeatherPayload]
			err error
		)
		if coords != nil {
			res, err = hooks.CurrentWeatherByCoords(ctx, coords, true)
		} else {
			res, err = hooks.CurrentWeather(ctx, o.city, true)
		}
		if err != nil {
			return nil, err
		}
		out := map[string]any{
			"weather": domain.ToDisplayWeather(res.Data),
			"theme":   domain.ThemeFor(res.Data.Current.WeatherCode),
		}
		if r, ok := domain.DailyRange(res.Data); ok {
			out["range"] = r
		}
		return out, nil
	}
}

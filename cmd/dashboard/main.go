package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-dashboard/internal/adapter/api"
	"github.com/couchcryptid/weather-dashboard/internal/adapter/geolocation"
	httpadapter "github.com/couchcryptid/weather-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/weather-dashboard/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-dashboard/internal/config"
	"github.com/couchcryptid/weather-dashboard/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
	"github.com/couchcryptid/weather-dashboard/internal/query"
	"github.com/couchcryptid/weather-dashboard/internal/refresh"
	"github.com/couchcryptid/weather-dashboard/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	shutdownTracing, err := observability.InitTracing(cfg.ZipkinURL)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	upstream := openmeteo.NewClient(cfg.ForecastURL, cfg.GeocodingURL, cfg.UpstreamTimeout, metrics, logger)
	positions := newPositionProvider(cfg, clock, metrics, logger)

	client := weather.NewClient(weather.NewResolver(upstream, positions), upstream, logger)
	cache := query.NewCache(cfg.CacheGCTime, clock, metrics, logger)
	hooks := dashboard.NewHooks(client, cache, nil)
	favorites := dashboard.NewFavorites(cfg.Favorites, cfg.FavoritesMax, cache, metrics, logger)

	checks := map[string]httpadapter.ReadinessChecker{"upstream": upstream}

	// Optional observation sink (feature-flagged via KAFKA_BROKERS).
	var publisher refresh.Publisher = refresh.Discard{}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("observation publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("observation publishing disabled")
	}

	var refresher *refresh.Refresher
	if cfg.RefreshInterval > 0 {
		refresher = refresh.New(favorites, hooks, publisher, cfg.RefreshInterval, clock, logger, metrics)
		checks["refresher"] = refresher
	} else {
		logger.Info("favorites refresher disabled")
	}

	opsSrv := httpadapter.NewServer(cfg.HTTPAddr, checks, logger)
	apiSrv := api.NewServer(cfg.APIAddr, cfg.APITimeout, api.NewHandlers(hooks, favorites, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := opsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", "error", err)
		}
	}()

	go func() {
		if err := apiSrv.Start(); err != nil {
			logger.Error("api server error", "error", err)
			stop()
		}
	}()

	if refresher != nil {
		go func() {
			if err := refresher.Run(ctx); err != nil {
				logger.Error("refresher error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", "error", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

func newPositionProvider(cfg *config.Config, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) domain.PositionProvider {
	switch cfg.GeolocationProvider {
	case config.GeolocationStatic:
		logger.Info("geolocation from static coordinates", "latitude", cfg.DeviceLatitude, "longitude", cfg.DeviceLongitude)
		return geolocation.Static{Coords: domain.Coordinates{Latitude: cfg.DeviceLatitude, Longitude: cfg.DeviceLongitude}}
	case config.GeolocationIPAPI:
		logger.Info("geolocation via ip lookup", "url", cfg.GeolocationURL, "max_age", cfg.GeolocationMaxAge)
		inner := geolocation.NewIPAPIProvider(cfg.GeolocationURL, cfg.GeolocationTimeout, metrics, logger)
		return geolocation.NewCachedProvider(inner, cfg.GeolocationMaxAge, clock)
	default:
		logger.Info("geolocation disabled")
		return geolocation.Unavailable{}
	}
}

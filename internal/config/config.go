package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Geolocation provider names accepted by GEOLOCATION_PROVIDER.
const (
	GeolocationNone   = "none"
	GeolocationStatic = "static"
	GeolocationIPAPI  = "ipapi"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	APIAddr         string
	APITimeout      time.Duration
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Open-Meteo upstreams.
	ForecastURL     string
	GeocodingURL    string
	UpstreamTimeout time.Duration

	// Device position.
	GeolocationProvider string
	GeolocationURL      string
	DeviceLatitude      float64
	DeviceLongitude     float64
	GeolocationTimeout  time.Duration
	GeolocationMaxAge   time.Duration

	Favorites       []string
	FavoritesMax    int
	RefreshInterval time.Duration // 0 disables the refresher
	CacheGCTime     time.Duration

	// Observation publishing; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	ZipkinURL string
}

// Load reads configuration from environment variables, applying defaults
// where unset. Variables from ENV_FILE (default ".env") are loaded first when
// the file exists; real environment variables take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(envOrDefault("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load ENV_FILE: %w", err)
	}

	cfg := &Config{
		HTTPAddr:     envOrDefault("HTTP_ADDR", ":8080"),
		APIAddr:      envOrDefault("API_ADDR", ":3000"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		LogFormat:    envOrDefault("LOG_FORMAT", "json"),
		ForecastURL:  envOrDefault("OPEN_METEO_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		GeocodingURL: envOrDefault("OPEN_METEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),

		GeolocationProvider: strings.ToLower(envOrDefault("GEOLOCATION_PROVIDER", GeolocationNone)),
		GeolocationURL:      envOrDefault("GEOLOCATION_URL", "http://ip-api.com/json/"),

		Favorites:    parseList(envOrDefault("FAVORITES", "São Paulo,Rio de Janeiro")),
		KafkaBrokers: parseList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "weather-observations"),
		ZipkinURL:    os.Getenv("ZIPKIN_URL"),
	}

	var err error
	if cfg.ShutdownTimeout, err = parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.APITimeout, err = parsePositiveDuration("API_REQUEST_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = parsePositiveDuration("UPSTREAM_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.GeolocationTimeout, err = parsePositiveDuration("GEOLOCATION_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.GeolocationMaxAge, err = parseDuration("GEOLOCATION_MAX_AGE", "5m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = parseDuration("REFRESH_INTERVAL", "5m"); err != nil {
		return nil, err
	}
	if cfg.CacheGCTime, err = parsePositiveDuration("CACHE_GC_TIME", "30m"); err != nil {
		return nil, err
	}
	if cfg.FavoritesMax, err = parsePositiveInt("FAVORITES_MAX", 5); err != nil {
		return nil, err
	}

	switch cfg.GeolocationProvider {
	case GeolocationNone, GeolocationIPAPI:
	case GeolocationStatic:
		if cfg.DeviceLatitude, err = parseCoordinate("DEVICE_LATITUDE", 90); err != nil {
			return nil, err
		}
		if cfg.DeviceLongitude, err = parseCoordinate("DEVICE_LONGITUDE", 180); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid GEOLOCATION_PROVIDER %q: want none, static, or ipapi", cfg.GeolocationProvider)
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether observations should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseList splits a comma-separated value, trimming blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := parseDuration(key, fallback)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseCoordinate(key string, limit float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, fmt.Errorf("%s is required when GEOLOCATION_PROVIDER is static", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < -limit || v > limit {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-dashboard/internal/config"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC)
	obs := domain.Observation{
		Place:       "São Paulo",
		Coordinates: domain.Coordinates{Latitude: -23.55, Longitude: -46.63},
		Display:     domain.DisplayWeather{Temperature: 26, WeatherCode: 61, Description: "Chuva leve"},
		Theme:       domain.ThemeRain,
		ObservedAt:  now,
	}

	msg, err := serializeToMessage(obs)
	require.NoError(t, err)

	assert.Equal(t, []byte("São Paulo"), msg.Key)
	assert.Contains(t, string(msg.Value), `"theme":"rain"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "weather_code", msg.Headers[0].Key)
	assert.Equal(t, []byte("61"), msg.Headers[0].Value)
	assert.Equal(t, "observed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var back domain.Observation
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, obs.Display, back.Display)
}

func TestPublish_EmptyIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaTopic: "weather-observations"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	assert.NoError(t, w.Publish(context.Background(), nil))
}

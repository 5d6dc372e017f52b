//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/weather-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/weather-dashboard/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-dashboard/internal/config"
	"github.com/couchcryptid/weather-dashboard/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/observability"
	"github.com/couchcryptid/weather-dashboard/internal/query"
	"github.com/couchcryptid/weather-dashboard/internal/refresh"
	"github.com/couchcryptid/weather-dashboard/internal/weather"
)

const testTopic = "test-observations"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("weather-dashboard-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// fakeOpenMeteo serves geocoding and current conditions for any query.
func fakeOpenMeteo(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{
				"id": 1, "name": name, "latitude": -23.55, "longitude": -46.63,
				"country": "Brasil", "country_code": "BR",
			}},
		})
	})
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{
			"latitude": -23.55, "longitude": -46.63,
			"timezone": "America/Sao_Paulo", "timezone_abbreviation": "-03", "utc_offset_seconds": -10800,
			"current": {"time": "2024-06-01T14:00", "temperature_2m": 25.6, "relative_humidity_2m": 60,
				"apparent_temperature": 27.4, "precipitation": 0, "weather_code": 61, "cloud_cover": 40,
				"pressure_msl": 1013.2, "wind_speed_10m": 12.3, "wind_direction_10m": 180},
			"daily": {"time": ["2024-06-01"], "weather_code": [61], "temperature_2m_max": [28.5],
				"temperature_2m_min": [17.4], "precipitation_sum": [3.1]}
		}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type publishedMessage struct {
	Observation domain.Observation
	Key         string
	Headers     map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from observation topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var obs domain.Observation
	require.NoError(t, json.Unmarshal(msg.Value, &obs), "unmarshal observation")
	return publishedMessage{Observation: obs, Key: string(msg.Key), Headers: headers}
}

// TestRefreshPublishesFavorites drives one refresh round against a fake
// Open-Meteo and reads the observations back from a real broker.
func TestRefreshPublishesFavorites(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC))

	srv := fakeOpenMeteo(t)
	upstream := openmeteo.NewClient(srv.URL+"/v1/forecast", srv.URL+"/v1/search", 5*time.Second, metrics, logger)
	client := weather.NewClient(weather.NewResolver(upstream, nil), upstream, logger)
	cache := query.NewCache(10*time.Minute, clock, metrics, logger)
	hooks := dashboard.NewHooks(client, cache, nil)
	favorites := dashboard.NewFavorites([]string{"São Paulo", "Recife"}, dashboard.DefaultCapacity, cache, metrics, logger)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, logger)
	t.Cleanup(func() { _ = writer.Close() })

	r := refresh.New(favorites, hooks, writer, time.Minute, clock, logger, metrics)
	require.NoError(t, r.RunOnce(ctx))
	require.NoError(t, r.CheckReadiness(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	first := readPublished(ctx, t, consumer)
	second := readPublished(ctx, t, consumer)

	assert.Equal(t, "São Paulo", first.Key)
	assert.Equal(t, "Recife", second.Key)
	assert.Equal(t, "61", first.Headers["weather_code"])
	assert.Equal(t, "2024-06-01T17:00:00Z", first.Headers["observed_at"])

	obs := first.Observation
	assert.Equal(t, 26, obs.Display.Temperature)
	assert.Equal(t, "Chuva leve", obs.Display.Description)
	assert.Equal(t, "São Paulo", obs.Display.Location)
	assert.Equal(t, domain.ThemeRain, obs.Theme)
	require.NotNil(t, obs.Range)
	assert.Equal(t, domain.TemperatureRange{Min: 17, Max: 29}, *obs.Range)
}

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

func TestKey_String(t *testing.T) {
	assert.Equal(t, "weather/current/name:São Paulo", PlaceKey(KindCurrent, "  São Paulo ").String())
	assert.Equal(t, "weather/forecast/coords:-23.55,-46.63", CoordsKey(KindForecast, domain.Coordinates{Latitude: -23.55, Longitude: -46.63}).String())
	assert.Equal(t, "weather/search/query:rec", SearchKey("rec ").String())
}

func TestKey_KindsNeverCollide(t *testing.T) {
	keys := map[Key]bool{}
	for _, k := range []Key{
		PlaceKey(KindCurrent, "Recife"),
		PlaceKey(KindForecast, "Recife"),
		SearchKey("Recife"),
		CoordsKey(KindCurrent, domain.Coordinates{Latitude: 1, Longitude: 2}),
		CoordsKey(KindForecast, domain.Coordinates{Latitude: 1, Longitude: 2}),
	} {
		assert.False(t, keys[k], "duplicate key %s", k)
		keys[k] = true
	}
}

func TestCoordsKey_ExactEquality(t *testing.T) {
	a := CoordsKey(KindCurrent, domain.Coordinates{Latitude: 0.1 + 0.2, Longitude: 1})
	b := CoordsKey(KindCurrent, domain.Coordinates{Latitude: 0.3, Longitude: 1})
	assert.NotEqual(t, a, b, "0.1+0.2 is not exactly 0.3")

	c := CoordsKey(KindCurrent, domain.Coordinates{Latitude: -23.5505, Longitude: -46.6333})
	d := CoordsKey(KindCurrent, domain.Coordinates{Latitude: -23.5505, Longitude: -46.6333})
	assert.Equal(t, c, d)

	negZero := CoordsKey(KindCurrent, domain.Coordinates{Latitude: negativeZero(), Longitude: 0})
	zero := CoordsKey(KindCurrent, domain.Coordinates{})
	assert.Equal(t, zero, negZero)
}

func negativeZero() float64 {
	z := 0.0
	return -z
}

func TestDefaultOptions(t *testing.T) {
	cur := DefaultOptions(KindCurrent)
	assert.Equal(t, 5*60.0, cur.StaleTime.Seconds())
	assert.Equal(t, 2, cur.Retry)

	fc := DefaultOptions(KindForecast)
	assert.Equal(t, 10*60.0, fc.StaleTime.Seconds())
	assert.Equal(t, 2, fc.Retry)

	s := DefaultOptions(KindSearch)
	assert.Equal(t, 15*60.0, s.StaleTime.Seconds())
	assert.Equal(t, 1, s.Retry)
}

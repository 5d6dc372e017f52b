package query

import (
	"strconv"
	"strings"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// Kind namespaces cache keys by operation.
type Kind string

const (
	KindCurrent  Kind = "current"
	KindForecast Kind = "forecast"
	KindSearch   Kind = "search"
)

// Key identifies one cache entry. Two keys are equal only when both kind and
// location match, so kinds never collide.
type Key struct {
	Kind     Kind
	Location string
}

// String renders the key as "weather/<kind>/<location>".
func (k Key) String() string {
	return "weather/" + string(k.Kind) + "/" + k.Location
}

// PlaceKey keys a by-name read. Names are trimmed and otherwise kept as typed.
func PlaceKey(kind Kind, name string) Key {
	return Key{Kind: kind, Location: "name:" + strings.TrimSpace(name)}
}

// CoordsKey keys a by-coordinates read. Coordinates are formatted with the
// shortest exact representation, so two pairs share a key only when they are
// exactly equal.
func CoordsKey(kind Kind, c domain.Coordinates) Key {
	return Key{Kind: kind, Location: "coords:" + formatCoord(c.Latitude) + "," + formatCoord(c.Longitude)}
}

// SearchKey keys a location search.
func SearchKey(query string) Key {
	return Key{Kind: KindSearch, Location: "query:" + strings.TrimSpace(query)}
}

func formatCoord(v float64) string {
	if v == 0 {
		v = 0 // -0 == 0, so both render as "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Package domain models Open-Meteo weather data and its presentation form.
//
// # Data Source
//
// Forecasts come from the Open-Meteo forecast API
// (https://api.open-meteo.com/v1/forecast) and place names are resolved through
// the Open-Meteo geocoding API (https://geocoding-api.open-meteo.com/v1/search).
// Neither needs an API key. Payload structs mirror the upstream JSON verbatim;
// the only fields not sent by the API are Name and Country, which are stamped
// on after a by-name lookup.
//
// # Open-Meteo Conventions
//
// Series layout:
//
//	Daily and hourly data arrive as parallel arrays keyed by index, not as
//	arrays of objects. daily.time[0] is today in the location's own timezone
//	(requests use timezone=auto). [DailySeries.Len] and [HourlySeries.Len]
//	return the length every array shares, so a truncated series never panics.
//
// Time format:
//
//	Local wall-clock time without offset, e.g. "2024-06-01T14:00".
//	utc_offset_seconds in the payload converts it back to an absolute instant.
//
// Units:
//
//	Defaults are used: °C, %, hPa, km/h, mm, and degrees for wind direction.
//	Each payload carries a *_units block naming them.
//
// Weather codes:
//
//	WMO 4677 interpretation codes, a sparse subset of 0-99. Every code the API
//	emits has an entry in the condition table; anything else is rendered as
//	code 0 (clear sky) rather than failing. See [LookupCondition].
//
// # Normalization
//
// [ToDisplayWeather] is a pure function of the payload. Temperature, apparent
// temperature, and pressure are rounded half away from zero (25.5 becomes 26,
// -0.5 becomes -1); humidity, wind, cloud cover, and precipitation pass
// through unchanged. Payloads fetched by coordinates carry no name and are
// labelled [DefaultLocationLabel].
//
// # Errors
//
// Failures are classified rather than stringly typed: [TransportError] for
// anything between us and the upstream, [NotFoundError] for an empty geocoding
// result, [GeolocationError] and [ErrGeolocationUnavailable] for device
// position failures, and [ValidationError] for bad input. Only transport
// failures are retried; see [IsRetryable].
package domain

package domain

import (
	"math"
	"time"
)

// DefaultLocationLabel is shown when a payload was fetched by coordinates.
const DefaultLocationLabel = "Localização atual"

// DisplayWeather is the presentation-ready view of a CurrentWeatherPayload.
// It is always recomputed from the payload, never stored on its own.
type DisplayWeather struct {
	Temperature   int     `json:"temperature"`
	FeelsLike     int     `json:"feelsLike"`
	Humidity      float64 `json:"humidity"`
	Pressure      int     `json:"pressure"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
	CloudCover    float64 `json:"cloudCover"`
	Precipitation float64 `json:"precipitation"`
	Description   string  `json:"description"`
	IconURL       string  `json:"iconUrl"`
	Location      string  `json:"location"`
	Country       string  `json:"country"`
	WeatherCode   int     `json:"weatherCode"`
}

// ToDisplayWeather normalizes a current-conditions payload. Temperatures and
// pressure are rounded half away from zero; every other value passes through.
func ToDisplayWeather(p CurrentWeatherPayload) DisplayWeather {
	c := p.Current
	cond := LookupCondition(c.WeatherCode)

	label := p.Name
	if label == "" {
		label = DefaultLocationLabel
	}

	return DisplayWeather{
		Temperature:   roundInt(c.Temperature2m),
		FeelsLike:     roundInt(c.ApparentTemperature),
		Humidity:      c.RelativeHumidity2m,
		Pressure:      roundInt(c.PressureMSL),
		WindSpeed:     c.WindSpeed10m,
		WindDirection: c.WindDirection10m,
		CloudCover:    c.CloudCover,
		Precipitation: c.Precipitation,
		Description:   cond.Description,
		IconURL:       IconURL(c.WeatherCode, IconSize2x),
		Location:      label,
		Country:       p.Country,
		WeatherCode:   c.WeatherCode,
	}
}

// TemperatureRange is a rounded min/max pair.
type TemperatureRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DailyRange returns today's rounded min/max from the one-day summary that
// accompanies current conditions. ok is false when the summary is missing.
func DailyRange(p CurrentWeatherPayload) (TemperatureRange, bool) {
	if p.Daily == nil || len(p.Daily.Temperature2mMin) == 0 || len(p.Daily.Temperature2mMax) == 0 {
		return TemperatureRange{}, false
	}
	return TemperatureRange{
		Min: roundInt(p.Daily.Temperature2mMin[0]),
		Max: roundInt(p.Daily.Temperature2mMax[0]),
	}, true
}

// DayForecast is one column of the seven-day strip.
type DayForecast struct {
	Date             string  `json:"date"`
	WeatherCode      int     `json:"weatherCode"`
	Description      string  `json:"description"`
	IconURL          string  `json:"iconUrl"`
	Max              int     `json:"max"`
	Min              int     `json:"min"`
	PrecipitationSum float64 `json:"precipitationSum"`
	WindSpeedMax     float64 `json:"windSpeedMax"`
}

// ForecastDays flattens the daily series into rows, index 0 being today.
// Days missing from any required series are dropped.
func ForecastDays(p ForecastPayload) []DayForecast {
	d := p.Daily
	n := d.Len()
	days := make([]DayForecast, 0, n)
	for i := 0; i < n; i++ {
		code := d.WeatherCode[i]
		day := DayForecast{
			Date:             d.Time[i],
			WeatherCode:      code,
			Description:      LookupCondition(code).Description,
			IconURL:          IconURL(code, IconSize2x),
			Max:              roundInt(d.Temperature2mMax[i]),
			Min:              roundInt(d.Temperature2mMin[i]),
			PrecipitationSum: d.PrecipitationSum[i],
		}
		if i < len(d.WindSpeed10mMax) {
			day.WindSpeedMax = d.WindSpeed10mMax[i]
		}
		days = append(days, day)
	}
	return days
}

// HourForecast is one point of the hourly series.
type HourForecast struct {
	Time          string  `json:"time"`
	Temperature   int     `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weatherCode"`
	Description   string  `json:"description"`
	WindSpeed     float64 `json:"windSpeed"`
}

// hourLayout is the local-time format Open-Meteo uses with timezone=auto.
const hourLayout = "2006-01-02T15:04"

// HourlyFrom returns up to n hourly points starting at the first hour not
// before from. Times that fail to parse are skipped.
func HourlyFrom(p ForecastPayload, from time.Time, n int) []HourForecast {
	h := p.Hourly
	total := h.Len()
	out := make([]HourForecast, 0, n)
	cutoff := from.Truncate(time.Hour).Format(hourLayout)
	for i := 0; i < total && len(out) < n; i++ {
		if _, err := time.Parse(hourLayout, h.Time[i]); err != nil {
			continue
		}
		// Same fixed-width layout, so lexical order is chronological.
		if h.Time[i] < cutoff {
			continue
		}
		code := h.WeatherCode[i]
		out = append(out, HourForecast{
			Time:          h.Time[i],
			Temperature:   roundInt(h.Temperature2m[i]),
			Humidity:      h.RelativeHumidity2m[i],
			Precipitation: h.Precipitation[i],
			WeatherCode:   code,
			Description:   LookupCondition(code).Description,
			WindSpeed:     h.WindSpeed10m[i],
		})
	}
	return out
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

package domain

// CurrentUnits carries the unit string for every field of CurrentValues.
type CurrentUnits struct {
	Time                string `json:"time"`
	Temperature2m       string `json:"temperature_2m"`
	RelativeHumidity2m  string `json:"relative_humidity_2m"`
	ApparentTemperature string `json:"apparent_temperature"`
	Precipitation       string `json:"precipitation"`
	Rain                string `json:"rain"`
	WeatherCode         string `json:"weather_code"`
	CloudCover          string `json:"cloud_cover"`
	PressureMSL         string `json:"pressure_msl"`
	WindSpeed10m        string `json:"wind_speed_10m"`
	WindDirection10m    string `json:"wind_direction_10m"`
}

// CurrentValues is a snapshot of conditions at a single instant.
type CurrentValues struct {
	Time                string  `json:"time"`
	Temperature2m       float64 `json:"temperature_2m"`
	RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Precipitation       float64 `json:"precipitation"`
	Rain                float64 `json:"rain"`
	WeatherCode         int     `json:"weather_code"`
	CloudCover          float64 `json:"cloud_cover"`
	PressureMSL         float64 `json:"pressure_msl"`
	WindSpeed10m        float64 `json:"wind_speed_10m"`
	WindDirection10m    float64 `json:"wind_direction_10m"`
}

// DailyUnits carries the unit string for every daily series.
type DailyUnits struct {
	Time             string `json:"time"`
	WeatherCode      string `json:"weather_code"`
	Temperature2mMax string `json:"temperature_2m_max"`
	Temperature2mMin string `json:"temperature_2m_min"`
	PrecipitationSum string `json:"precipitation_sum"`
	WindSpeed10mMax  string `json:"wind_speed_10m_max,omitempty"`
}

// DailySeries holds parallel per-day arrays; index 0 is today.
type DailySeries struct {
	Time             []string  `json:"time"`
	WeatherCode      []int     `json:"weather_code"`
	Temperature2mMax []float64 `json:"temperature_2m_max"`
	Temperature2mMin []float64 `json:"temperature_2m_min"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
	WindSpeed10mMax  []float64 `json:"wind_speed_10m_max,omitempty"`
}

// Len is the number of days present in every series.
func (d DailySeries) Len() int {
	n := len(d.Time)
	for _, l := range []int{len(d.WeatherCode), len(d.Temperature2mMax), len(d.Temperature2mMin), len(d.PrecipitationSum)} {
		if l < n {
			n = l
		}
	}
	return n
}

// HourlyUnits carries the unit string for every hourly series.
type HourlyUnits struct {
	Time               string `json:"time"`
	Temperature2m      string `json:"temperature_2m"`
	RelativeHumidity2m string `json:"relative_humidity_2m"`
	Precipitation      string `json:"precipitation"`
	WeatherCode        string `json:"weather_code"`
	WindSpeed10m       string `json:"wind_speed_10m"`
}

// HourlySeries holds parallel per-hour arrays.
type HourlySeries struct {
	Time               []string  `json:"time"`
	Temperature2m      []float64 `json:"temperature_2m"`
	RelativeHumidity2m []float64 `json:"relative_humidity_2m"`
	Precipitation      []float64 `json:"precipitation"`
	WeatherCode        []int     `json:"weather_code"`
	WindSpeed10m       []float64 `json:"wind_speed_10m"`
}

// Len is the number of hours present in every series.
func (h HourlySeries) Len() int {
	n := len(h.Time)
	for _, l := range []int{len(h.Temperature2m), len(h.RelativeHumidity2m), len(h.Precipitation), len(h.WeatherCode), len(h.WindSpeed10m)} {
		if l < n {
			n = l
		}
	}
	return n
}

// CurrentWeatherPayload is the body of a "current" forecast request. Name and
// Country are not part of the upstream body; they are stamped on when the
// request was made for a named place.
type CurrentWeatherPayload struct {
	Latitude             float64       `json:"latitude"`
	Longitude            float64       `json:"longitude"`
	Timezone             string        `json:"timezone"`
	TimezoneAbbreviation string        `json:"timezone_abbreviation"`
	UTCOffsetSeconds     int           `json:"utc_offset_seconds"`
	Elevation            float64       `json:"elevation"`
	CurrentUnits         CurrentUnits  `json:"current_units"`
	Current              CurrentValues `json:"current"`
	DailyUnits           *DailyUnits   `json:"daily_units,omitempty"`
	Daily                *DailySeries  `json:"daily,omitempty"`

	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
}

// ForecastPayload is the body of a seven-day forecast request.
type ForecastPayload struct {
	Latitude             float64      `json:"latitude"`
	Longitude            float64      `json:"longitude"`
	Timezone             string       `json:"timezone"`
	TimezoneAbbreviation string       `json:"timezone_abbreviation"`
	UTCOffsetSeconds     int          `json:"utc_offset_seconds"`
	Elevation            float64      `json:"elevation"`
	DailyUnits           DailyUnits   `json:"daily_units"`
	Daily                DailySeries  `json:"daily"`
	HourlyUnits          HourlyUnits  `json:"hourly_units"`
	Hourly               HourlySeries `json:"hourly"`

	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
}

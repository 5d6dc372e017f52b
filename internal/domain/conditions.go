package domain

import "fmt"

// Condition is the presentation data for one WMO weather code.
type Condition struct {
	Description string
	Icon        string // openweathermap icon id, e.g. "01d"
}

// Theme is a background style group shared by cards that render a code.
type Theme string

const (
	ThemeClear   Theme = "clear"
	ThemeCloudy  Theme = "cloudy"
	ThemeRain    Theme = "rain"
	ThemeStorm   Theme = "storm"
	ThemeSnow    Theme = "snow"
	ThemeDefault Theme = "default"
)

// conditions is the single lookup table for descriptions, icons, and themes.
// Codes follow the WMO 4677 subset used by Open-Meteo.
var conditions = map[int]struct {
	Condition
	theme Theme
}{
	0:  {Condition{"Céu limpo", "01d"}, ThemeClear},
	1:  {Condition{"Principalmente limpo", "01d"}, ThemeClear},
	2:  {Condition{"Parcialmente nublado", "02d"}, ThemeCloudy},
	3:  {Condition{"Nublado", "03d"}, ThemeCloudy},
	45: {Condition{"Névoa", "50d"}, ThemeDefault},
	48: {Condition{"Névoa com geada", "50d"}, ThemeDefault},
	51: {Condition{"Garoa leve", "09d"}, ThemeDefault},
	53: {Condition{"Garoa moderada", "09d"}, ThemeDefault},
	55: {Condition{"Garoa densa", "09d"}, ThemeDefault},
	56: {Condition{"Garoa gelada leve", "09d"}, ThemeDefault},
	57: {Condition{"Garoa gelada densa", "09d"}, ThemeDefault},
	61: {Condition{"Chuva leve", "10d"}, ThemeRain},
	63: {Condition{"Chuva moderada", "10d"}, ThemeRain},
	65: {Condition{"Chuva forte", "10d"}, ThemeRain},
	66: {Condition{"Chuva gelada leve", "13d"}, ThemeDefault},
	67: {Condition{"Chuva gelada forte", "13d"}, ThemeDefault},
	71: {Condition{"Neve leve", "13d"}, ThemeSnow},
	73: {Condition{"Neve moderada", "13d"}, ThemeSnow},
	75: {Condition{"Neve forte", "13d"}, ThemeSnow},
	77: {Condition{"Granizo", "13d"}, ThemeSnow},
	80: {Condition{"Pancadas de chuva leves", "09d"}, ThemeRain},
	81: {Condition{"Pancadas de chuva moderadas", "09d"}, ThemeRain},
	82: {Condition{"Pancadas de chuva violentas", "09d"}, ThemeRain},
	85: {Condition{"Pancadas de neve leves", "13d"}, ThemeSnow},
	86: {Condition{"Pancadas de neve fortes", "13d"}, ThemeSnow},
	95: {Condition{"Tempestade", "11d"}, ThemeStorm},
	96: {Condition{"Tempestade com granizo leve", "11d"}, ThemeStorm},
	99: {Condition{"Tempestade com granizo forte", "11d"}, ThemeStorm},
}

// KnownCodes lists every code with its own table entry, ascending.
var KnownCodes = []int{0, 1, 2, 3, 45, 48, 51, 53, 55, 56, 57, 61, 63, 65, 66, 67, 71, 73, 75, 77, 80, 81, 82, 85, 86, 95, 96, 99}

// LookupCondition returns the entry for code, falling back to code 0 for
// anything outside the table.
func LookupCondition(code int) Condition {
	if c, ok := conditions[code]; ok {
		return c.Condition
	}
	return conditions[0].Condition
}

// ThemeFor returns the background theme group for code. Unknown codes share
// code 0's theme.
func ThemeFor(code int) Theme {
	if c, ok := conditions[code]; ok {
		return c.theme
	}
	return conditions[0].theme
}

// IconSize selects the rendered icon resolution.
type IconSize string

const (
	IconSize2x IconSize = "2x"
	IconSize4x IconSize = "4x"
)

// IconURL builds the openweathermap image URL for code.
func IconURL(code int, size IconSize) string {
	if size != IconSize4x {
		size = IconSize2x
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@%s.png", LookupCondition(code).Icon, size)
}

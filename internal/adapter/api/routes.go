package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/couchcryptid/weather-dashboard/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard/internal/domain"
	"github.com/couchcryptid/weather-dashboard/internal/query"
)

// hoursAhead is how many hourly points the forecast view shows.
const hoursAhead = 24

var validate = validator.New()

// Handlers serves the dashboard API from the hooks layer and favorites set.
type Handlers struct {
	hooks     *dashboard.Hooks
	favorites *dashboard.Favorites
	logger    *slog.Logger
}

// NewHandlers creates Handlers.
func NewHandlers(hooks *dashboard.Hooks, favorites *dashboard.Favorites, logger *slog.Logger) *Handlers {
	return &Handlers{hooks: hooks, favorites: favorites, logger: logger}
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h *Handlers) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", h.currentWeather)
	v1.Get("/weather/forecast", h.forecast)
	v1.Post("/weather/refetch", h.refetch)
	v1.Get("/locations/search", h.search)
	v1.Get("/geolocation/weather", h.geolocationWeather)

	v1.Get("/favorites", h.listFavorites)
	v1.Post("/favorites", h.addFavorite)
	v1.Delete("/favorites/:name", h.removeFavorite)
}

// locationQuery selects a place either by name or by coordinates.
type locationQuery struct {
	City string
	Lat  *float64 `validate:"omitempty,latitude"`
	Lon  *float64 `validate:"omitempty,longitude"`
}

func (l locationQuery) coords() *domain.Coordinates {
	if l.Lat == nil || l.Lon == nil {
		return nil
	}
	return &domain.Coordinates{Latitude: *l.Lat, Longitude: *l.Lon}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	q := locationQuery{City: strings.TrimSpace(c.Query("city"))}

	var err error
	if q.Lat, err = parseOptionalFloat(c, "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = parseOptionalFloat(c, "lon"); err != nil {
		return q, err
	}
	switch {
	case (q.Lat == nil) != (q.Lon == nil):
		return q, &domain.ValidationError{Field: "lat", Reason: "lat and lon must be given together"}
	case q.Lat == nil && q.City == "":
		return q, &domain.ValidationError{Field: "city", Reason: "city or lat/lon is required"}
	}
	if err := validate.Struct(q); err != nil {
		return q, toValidationError(err)
	}
	return q, nil
}

func parseOptionalFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &domain.ValidationError{Field: name, Reason: "must be a number"}
	}
	return &v, nil
}

// toValidationError reports the first failed field as a domain error.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{
			Field:  strings.ToLower(fe.Field()),
			Reason: fmt.Sprintf("failed %q check", fe.Tag()),
		}
	}
	return &domain.ValidationError{Field: "request", Reason: err.Error()}
}

type currentResponse struct {
	Weather   domain.DisplayWeather    `json:"weather"`
	Range     *domain.TemperatureRange `json:"range,omitempty"`
	Theme     domain.Theme             `json:"theme"`
	FetchedAt time.Time                `json:"fetchedAt"`
	Stale     bool                     `json:"stale"`
}

func newCurrentResponse(res query.Result[domain.CurrentWeatherPayload]) currentResponse {
	resp := currentResponse{
		Weather:   domain.ToDisplayWeather(res.Data),
		Theme:     domain.ThemeFor(res.Data.Current.WeatherCode),
		FetchedAt: res.FetchedAt,
		Stale:     res.Stale,
	}
	if r, ok := domain.DailyRange(res.Data); ok {
		resp.Range = &r
	}
	return resp
}

type forecastResponse struct {
	Location  string                `json:"location"`
	Timezone  string                `json:"timezone"`
	Days      []domain.DayForecast  `json:"days"`
	Hourly    []domain.HourForecast `json:"hourly"`
	FetchedAt time.Time             `json:"fetchedAt"`
	Stale     bool                  `json:"stale"`
}

func newForecastResponse(res query.Result[domain.ForecastPayload]) forecastResponse {
	label := res.Data.Name
	if label == "" {
		label = domain.DefaultLocationLabel
	}
	return forecastResponse{
		Location:  label,
		Timezone:  res.Data.Timezone,
		Days:      domain.ForecastDays(res.Data),
		Hourly:    domain.UpcomingHours(res.Data, hoursAhead),
		FetchedAt: res.FetchedAt,
		Stale:     res.Stale,
	}
}

func (h *Handlers) currentWeather(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var res query.Result[domain.CurrentWeatherPayload]
	if coords := q.coords(); coords != nil {
		res, err = h.hooks.CurrentWeatherByCoords(ctx, coords, true)
	} else {
		res, err = h.hooks.CurrentWeather(ctx, q.City, true)
	}
	if err != nil {
		return err
	}
	return c.JSON(newCurrentResponse(res))
}

func (h *Handlers) forecast(c *fiber.Ctx) error {
	q, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var res query.Result[domain.ForecastPayload]
	if coords := q.coords(); coords != nil {
		res, err = h.hooks.ForecastByCoords(ctx, coords, true)
	} else {
		res, err = h.hooks.Forecast(ctx, q.City, true)
	}
	if err != nil {
		return err
	}
	return c.JSON(newForecastResponse(res))
}

type refetchQuery struct {
	Kind string `validate:"required,oneof=current forecast"`
}

func (h *Handlers) refetch(c *fiber.Ctx) error {
	rq := refetchQuery{Kind: c.Query("kind")}
	if err := validate.Struct(rq); err != nil {
		return toValidationError(err)
	}
	q, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	coords := q.coords()

	switch query.Kind(rq.Kind) {
	case query.KindForecast:
		var res query.Result[domain.ForecastPayload]
		if coords != nil {
			res, err = h.hooks.RefetchForecastByCoords(ctx, *coords)
		} else {
			res, err = h.hooks.RefetchForecast(ctx, q.City)
		}
		if err != nil {
			return err
		}
		return c.JSON(newForecastResponse(res))
	default:
		var res query.Result[domain.CurrentWeatherPayload]
		if coords != nil {
			res, err = h.hooks.RefetchCurrentByCoords(ctx, *coords)
		} else {
			res, err = h.hooks.RefetchCurrent(ctx, q.City)
		}
		if err != nil {
			return err
		}
		return c.JSON(newCurrentResponse(res))
	}
}

type searchResponse struct {
	Results []domain.LocationCandidate `json:"results"`
}

func (h *Handlers) search(c *fiber.Ctx) error {
	q := c.Query("q")
	res, err := h.hooks.LocationSearch(c.UserContext(), q, dashboard.SearchEnabled(q))
	if err != nil {
		return err
	}
	results := res.Data
	if results == nil {
		results = []domain.LocationCandidate{}
	}
	return c.JSON(searchResponse{Results: results})
}

type geolocationResponse struct {
	Coordinates domain.Coordinates `json:"coordinates"`
	Current     currentResponse    `json:"current"`
	Forecast    forecastResponse   `json:"forecast"`
}

func (h *Handlers) geolocationWeather(c *fiber.Ctx) error {
	ctx := c.UserContext()
	coords, err := h.hooks.Geolocate(ctx)
	if err != nil {
		return err
	}
	current, err := h.hooks.CurrentWeatherByCoords(ctx, &coords, true)
	if err != nil {
		return err
	}
	forecast, err := h.hooks.ForecastByCoords(ctx, &coords, true)
	if err != nil {
		return err
	}
	return c.JSON(geolocationResponse{
		Coordinates: coords,
		Current:     newCurrentResponse(current),
		Forecast:    newForecastResponse(forecast),
	})
}

type favoritesResponse struct {
	Favorites []string `json:"favorites"`
	Capacity  int      `json:"capacity"`
	Changed   *bool    `json:"changed,omitempty"`
}

func (h *Handlers) favoritesBody(changed *bool) favoritesResponse {
	return favoritesResponse{Favorites: h.favorites.List(), Capacity: h.favorites.Capacity(), Changed: changed}
}

func (h *Handlers) listFavorites(c *fiber.Ctx) error {
	return c.JSON(h.favoritesBody(nil))
}

type addFavoriteRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handlers) addFavorite(c *fiber.Ctx) error {
	var req addFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "must be a JSON object"}
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return toValidationError(err)
	}

	added := h.favorites.Add(req.Name)
	status := fiber.StatusOK
	if added {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(h.favoritesBody(&added))
}

func (h *Handlers) removeFavorite(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return &domain.ValidationError{Field: "name", Reason: "malformed path segment"}
	}
	removed := h.favorites.Remove(name)
	return c.JSON(h.favoritesBody(&removed))
}

package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/couchcryptid/weather-dashboard/internal/domain"
)

// Server serves the dashboard API.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger
}

// NewServer creates the Fiber app with error mapping, panic recovery, and a
// per-request deadline, and registers the routes.
func NewServer(addr string, requestTimeout time.Duration, h *Handlers, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		Immutable:             true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          requestTimeout + 5*time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(withTimeout(requestTimeout))

	RegisterRoutes(app, h)

	return &Server{app: app, addr: addr, logger: logger}
}

// App exposes the Fiber app, useful for testing with app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start begins listening and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("api server starting", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func withTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// kindHTTP labels routing errors raised by Fiber itself.
const kindHTTP = "http"

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error   bool   `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(errorResponse{Error: true, Kind: kindHTTP, Message: fe.Message})
		}

		kind := domain.ErrorKind(err)
		status := statusFor(err, kind)
		if status >= fiber.StatusInternalServerError {
			logger.Warn("request failed", "method", c.Method(), "path", c.Path(), "kind", kind, "error", err)
		}
		return c.Status(status).JSON(errorResponse{
			Error:   true,
			Kind:    kind,
			Message: domain.UserMessage(err),
			Retry:   kind != domain.KindInvalidRequest,
		})
	}
}

func statusFor(err error, kind string) int {
	switch kind {
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindGeolocationUnavailable:
		return fiber.StatusNotImplemented
	case domain.KindGeolocationDenied:
		var ge *domain.GeolocationError
		if errors.As(err, &ge) && ge.Reason == domain.GeolocationTimeout {
			return fiber.StatusGatewayTimeout
		}
		return fiber.StatusForbidden
	case domain.KindInvalidRequest:
		return fiber.StatusBadRequest
	case domain.KindTransport:
		return fiber.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

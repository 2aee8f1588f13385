package httpapi

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/temptrack/internal/settings"
	"github.com/i474232898/temptrack/internal/units"
	"github.com/i474232898/temptrack/internal/weather"
)

var validate = validator.New()

// ViewService is the part of weather.Service the handlers need.
type ViewService interface {
	GetView(ctx context.Context, location string, u units.System) (*weather.View, error)
	Preferences() settings.Preferences
	Refresh()
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service ViewService) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if q.Refresh {
			service.Refresh()
		}

		view, err := service.GetView(c.UserContext(), q.Location, q.system())
		if err != nil {
			return fiber.NewError(statusFor(err), messageFor(err))
		}

		return c.JSON(view)
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(service.Preferences())
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// weatherQuery holds the query parameters of the weather endpoint. An empty
// location means "detect or use the stored default"; empty units means the
// stored preference.
type weatherQuery struct {
	Location string `validate:"max=100"`
	Units    string `validate:"omitempty,oneof=metric imperial"`
	Refresh  bool
}

func (q weatherQuery) system() units.System {
	if q.Units == "" {
		return ""
	}
	return units.System(q.Units)
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	q := weatherQuery{
		Location: strings.TrimSpace(c.Query("location")),
		Units:    strings.ToLower(strings.TrimSpace(c.Query("units"))),
		Refresh:  c.QueryBool("refresh", false),
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Units":
				return q, errors.New("units must be metric or imperial")
			case "Location":
				return q, errors.New("location must be at most 100 characters")
			}
		}
		return q, err
	}

	return q, nil
}

func statusFor(err error) int {
	var cfgErr *weather.ConfigError
	var provErr *weather.ProviderError
	switch {
	case errors.Is(err, weather.ErrNoLocation):
		return fiber.StatusBadRequest
	case errors.As(err, &cfgErr):
		return fiber.StatusInternalServerError
	case errors.As(err, &provErr) && provErr.NotFound():
		return fiber.StatusNotFound
	case errors.As(err, &provErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func messageFor(err error) string {
	if errors.Is(err, weather.ErrNoLocation) {
		return "location is required"
	}
	return weather.UserMessage(err)
}

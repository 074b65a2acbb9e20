package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-station/internal/scheduler"
	"github.com/i474232898/weather-station/internal/weather"
)

var validate = validator.New()

// RefreshController exposes the scheduler's state and manual refresh.
type RefreshController interface {
	State() scheduler.State
	TriggerRefresh() error
}

// SnapshotSource exposes the stored weather data.
type SnapshotSource interface {
	Snapshot() weather.Snapshot
}

// FrameSource exposes the last rendered frame as PNG.
type FrameSource interface {
	Frame() ([]byte, bool)
}

// Deps bundles what the routes read from.
type Deps struct {
	Refresh      RefreshController
	Weather      SnapshotSource
	Frames       FrameSource
	Location     *time.Location
	LocationName string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(deps.Refresh.State())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		if err := deps.Refresh.TriggerRefresh(); err != nil {
			if errors.Is(err, scheduler.ErrRefreshInProgress) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to trigger refresh")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "scheduled"})
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		snap := deps.Weather.Snapshot()
		if snap.Current.IsZero() {
			return fiber.NewError(fiber.StatusNotFound, "no weather data yet")
		}

		return c.JSON(fiber.Map{
			"location":  locationName(deps.LocationName, snap.Current.City),
			"updatedAt": snap.CurrentAt,
			"current":   snap.Current,
			"icon":      weather.ResolveIcon(snap.Current.Condition()),
			"wind":      weather.WindDirection(snap.Current.WindDeg),
		})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap := deps.Weather.Snapshot()
		days := weather.AggregateDays(snap.ForecastSlice(), deps.Location, req.Days)
		if len(days) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no forecast data yet")
		}

		out := make([]dayResponse, 0, len(days))
		for _, d := range days {
			out = append(out, dayResponse{
				DaySummary:  d,
				WeekdayAbbr: d.Weekday.String()[:3],
				Icon:        weather.ResolveIcon(weather.ForecastCondition(d.Code)),
			})
		}

		return c.JSON(fiber.Map{
			"updatedAt": snap.ForecastsAt,
			"days":      out,
		})
	})

	v1.Get("/frame.png", func(c *fiber.Ctx) error {
		frame, ok := deps.Frames.Frame()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "nothing rendered yet")
		}
		c.Type("png")
		return c.Send(frame)
	})
}

type dayResponse struct {
	weather.DaySummary
	WeekdayAbbr string       `json:"weekdayAbbr"`
	Icon        weather.Icon `json:"icon"`
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Days int `validate:"required,min=1,max=4"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	raw := c.Query("days")
	if raw == "" {
		return errors.New("days query parameter is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("days must be an integer")
	}
	q.Days = n
	return nil
}

func locationName(configured, reported string) string {
	if configured != "" {
		return configured
	}
	return reported
}

package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/gofiber/fiber/v2"

	"github.com/manol-dimitrov/strava-data-analyser/internal/domain"
	"github.com/manol-dimitrov/strava-data-analyser/internal/strava"
)

func registerStrava(app *fiber.App, gw Gateway, logger *slog.Logger) {
	app.Get("/athletes/:id", func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, err)
		}
		a, err := gw.GetAthlete(c.UserContext(), id)
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(a)
	})

	app.Get("/activities/:id", func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return badRequest(c, err)
		}
		act, err := gw.GetActivity(c.UserContext(), id)
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(act)
	})

	// from/to are calendar dates (YYYY-MM-DD); the range is forwarded as given.
	app.Get("/athlete/activities", func(c *fiber.Ctx) error {
		from, err := queryDate(c, "from")
		if err != nil {
			return badRequest(c, err)
		}
		to, err := queryDate(c, "to")
		if err != nil {
			return badRequest(c, err)
		}
		acts, err := gw.ListAthleteActivities(c.UserContext(), from, to)
		if err != nil {
			return writeError(c, logger, err)
		}
		if acts == nil {
			acts = []strava.Activity{}
		}
		return c.JSON(acts)
	})
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

func queryDate(c *fiber.Ctx, key string) (civil.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return civil.Date{}, errors.New(key + " is required (YYYY-MM-DD)")
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return civil.Date{}, errors.New(key + " must be a date (YYYY-MM-DD)")
	}
	return d, nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func writeError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	status := statusFor(err)
	logger.Warn("request failed", "path", c.Path(), "status", status, "err", err)
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	var feedStatus *domain.StatusError
	switch {
	case errors.Is(err, strava.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, strava.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, strava.ErrNetwork), errors.Is(err, domain.ErrNetwork), errors.As(err, &feedStatus):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

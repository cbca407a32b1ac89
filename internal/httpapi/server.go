package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manol-dimitrov/strava-data-analyser/internal/domain"
	"github.com/manol-dimitrov/strava-data-analyser/internal/strava"
)

// Gateway is the read-only Strava surface the routes depend on.
type Gateway interface {
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	GetAthlete(ctx context.Context, athleteID int64) (*strava.Athlete, error)
	ListAthleteActivities(ctx context.Context, from, to civil.Date) ([]strava.Activity, error)
}

type ActivityFeed interface {
	GetActivity(ctx context.Context) (*domain.Activity, error)
}

// NewServer wires the routes. feed may be nil, in which case /feed/activity
// is not served.
func NewServer(gw Gateway, feed ActivityFeed, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ReadTimeout: 30 * time.Second, WriteTimeout: 60 * time.Second})
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	registerStrava(app, gw, logger)
	if feed != nil {
		registerFeed(app, feed, logger)
	}
	return app
}

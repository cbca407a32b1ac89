package httpapi

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

func registerFeed(app *fiber.App, feed ActivityFeed, logger *slog.Logger) {
	app.Get("/feed/activity", func(c *fiber.Ctx) error {
		a, err := feed.GetActivity(c.UserContext())
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(a)
	})
}

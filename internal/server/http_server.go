package server

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/oggyb/matchmaker/internal/config"
	"github.com/oggyb/matchmaker/internal/server/httpx"
)

// NewHTTPServer builds the fiber app and mounts every registrar.
//
// Middleware order:
//   - recover turns handler panics into 500s
//   - access log, written through slog
//
// Registrars attach httpx.Identity to the groups that need a caller.
func NewHTTPServer(cfg *config.Config, log *slog.Logger, registrars ...Registrar) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ErrorHandler:          httpx.ErrorHandler(log),
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.App.ENV == "development",
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error("panic recovered", "method", c.Method(), "path", c.Path(), "panic", e)
		},
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${status} ${method} ${path} ${latency}",
		Output: io.Discard,
		Done: func(c *fiber.Ctx, line []byte) {
			log.Debug("http request", "line", string(bytes.TrimSpace(line)), "ip", c.IP())
		},
	}))

	for _, r := range registrars {
		r.Register(app)
	}
	return app
}

// StartHTTPServer listens on HTTP_HOST:HTTP_PORT until the app is shut down.
func StartHTTPServer(app *fiber.App, cfg *config.Config) error {
	return app.Listen(cfg.HTTP.Host + ":" + cfg.HTTP.Port)
}

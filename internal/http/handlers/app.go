package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "apiadventures/internal/log"
)

type AppConfig struct {
	// RequestsPerMinute caps requests per client IP; 0 means 60.
	RequestsPerMinute int
	// RefreshesPerMinute caps manual refreshes per client IP; 0 means 5.
	RefreshesPerMinute int
	// AccessLog enables fiber's per-request access log.
	AccessLog bool
}

// ErrorHandler logs the error and answers with a message that does not leak internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
}

func NewApp(deps *Deps, cfg AppConfig) *fiber.App {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.RefreshesPerMinute <= 0 {
		cfg.RefreshesPerMinute = 5
	}

	app := fiber.New(fiber.Config{
		AppName:               "apiadventures",
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	app.Server().MaxRequestBodySize = 64 << 10

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if cfg.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RequestsPerMinute,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Warn(c, "rate.global.hit", nil, nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// ---------- API ----------
	api := app.Group("/api/v1")
	api.Get("/products", deps.ProductHandler.List)
	api.Post("/products/refresh", limiter.New(limiter.Config{
		Max:        cfg.RefreshesPerMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|refresh"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Warn(c, "rate.refresh.hit", nil, nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many refreshes, retry soon"})
		},
	}), deps.ProductHandler.Refresh)
	api.Get("/status", deps.StatusHandler.Status)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}

package handlers

import (
	"context"
	"time"

	"apiadventures/internal/log"
	"apiadventures/internal/worker"

	"github.com/gofiber/fiber/v2"
)

type CacheCounter interface {
	Count(ctx context.Context) (int, error)
}

type RefreshStatus interface {
	Last() *worker.Run
	Next() time.Time
}

type StatusHandler struct {
	Cache   CacheCounter
	Refresh RefreshStatus
}

func (h *StatusHandler) Status(c *fiber.Ctx) error {
	n, err := h.Cache.Count(c.UserContext())
	if err != nil {
		log.Error(c, "status.cache.count.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not read product cache"})
	}
	out := fiber.Map{"cached_products": n}
	if h.Refresh != nil {
		out["last_refresh"] = h.Refresh.Last()
		if next := h.Refresh.Next(); !next.IsZero() {
			out["next_refresh"] = next.UTC()
		}
	}
	return c.JSON(out)
}

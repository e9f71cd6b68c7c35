package handlers

import (
	"apiadventures/internal/domain"
	"apiadventures/internal/log"
	"apiadventures/internal/services"
	"apiadventures/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	VM *services.ProductsViewModel
}

// List returns the current outcome. The first request triggers the initial
// load, so it usually answers with the not_loaded state. ?category= narrows a
// product list to Equipment or Food.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	category := ""
	if raw := c.Query("category"); raw != "" {
		cat, ok := validate.Category(raw)
		if !ok {
			log.Warn(c, "products.list.bad_category", nil, map[string]any{"category": raw})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "category must be Equipment or Food"})
		}
		category = cat
	}

	h.VM.Appear()
	view := domain.View(h.VM.Outcome())
	if category != "" && view.State == domain.StateProducts {
		kept := view.Products[:0:0]
		for _, p := range view.Products {
			if p.Category == category {
				kept = append(kept, p)
			}
		}
		view.Products = kept
	}
	return c.JSON(view)
}

func (h *ProductHandler) Refresh(c *fiber.Ctx) error {
	h.VM.Reload()
	log.Audit(c, "products.refresh.requested", nil)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "refresh started"})
}

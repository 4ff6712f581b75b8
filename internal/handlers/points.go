package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/gemmarket/internal/services"
)

// PointsHandler exposes the loyalty configuration.
type PointsHandler struct {
	points *services.PointsService
}

// NewPointsHandler constructs PointsHandler.
func NewPointsHandler(points *services.PointsService) *PointsHandler {
	return &PointsHandler{points: points}
}

// GetSettings returns every loyalty setting.
func (h *PointsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.points.GetPointsSettings(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, settings)
}

// SaveSettings overlays the body on the current settings and saves every
// key.
func (h *PointsHandler) SaveSettings(c *fiber.Ctx) error {
	settings, err := h.points.GetPointsSettings(c.UserContext())
	if err != nil {
		return err
	}
	if err := parseBody(c, &settings); err != nil {
		return err
	}
	if err := h.points.SavePointsSettings(c.UserContext(), settings); err != nil {
		return err
	}
	return ok(c, settings)
}

// GetRates returns points earned per unit of each currency.
func (h *PointsHandler) GetRates(c *fiber.Ctx) error {
	rates, err := h.points.GetEarningPointsRates(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, rates)
}

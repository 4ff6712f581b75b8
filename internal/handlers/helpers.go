package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/gemmarket/internal/validation"
)

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	return validation.ParseID(c.Params("id"))
}

// parseBody decodes a JSON body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

func queryID(c *fiber.Ctx, key string) *uuid.UUID {
	id, err := uuid.Parse(c.Query(key))
	if err != nil {
		return nil
	}
	return &id
}

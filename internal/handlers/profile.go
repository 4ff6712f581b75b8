package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/gemmarket/internal/middleware"
	"github.com/example/gemmarket/internal/services"
	"github.com/example/gemmarket/internal/validation"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	users *services.UserService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// GetProfile returns authenticated user profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	user, signedIn := middleware.CurrentUser(c)
	if !signedIn {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return ok(c, user)
}

// UpdateProfile updates user profile fields.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	user, signedIn := middleware.CurrentUser(c)
	if !signedIn {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var payload validation.ProfilePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	updated, err := h.users.UpdateProfile(c.UserContext(), user.ID, payload)
	if err != nil {
		return err
	}
	return ok(c, updated)
}

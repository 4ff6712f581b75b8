package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gemmarket/internal/middleware"
	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/services"
	"github.com/example/gemmarket/internal/utils"
	"github.com/example/gemmarket/internal/validation"
)

// Counter reports the number of rows of one entity.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	products *services.ProductService
	users    *services.UserService
	counters map[string]Counter
}

// NewAdminHandler constructs AdminHandler. counters feed the dashboard,
// keyed by the name reported to the client.
func NewAdminHandler(products *services.ProductService, users *services.UserService, counters map[string]Counter) *AdminHandler {
	return &AdminHandler{products: products, users: users, counters: counters}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
// Counts run one after another on the shared connection.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	totals := fiber.Map{}
	for name, counter := range h.counters {
		total, err := counter.Count(ctx)
		if err != nil {
			return err
		}
		totals[name] = total
	}

	byModeration, err := h.products.ModerationCounts(ctx)
	if err != nil {
		return err
	}
	moderation := fiber.Map{}
	for _, status := range []string{models.ModerationPending, models.ModerationApproved, models.ModerationRejected} {
		moderation[status] = byModeration[status]
	}

	return ok(c, fiber.Map{
		"totals":     totals,
		"moderation": moderation,
	})
}

// ListProducts is the admin product table.
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	filter, err := validation.ParseAdminProductQuery(func(key string) string { return c.Query(key) })
	if err != nil {
		return err
	}

	page, err := h.products.AdminList(c.UserContext(), filter)
	if err != nil {
		return err
	}

	pg := utils.NewPagination(filter.Page, filter.Limit)
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       page,
		"pagination": pg.Meta(page.Total),
	})
}

// GetProduct returns any product regardless of moderation state.
func (h *AdminHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, product)
}

// ModerateProduct records a review decision.
func (h *AdminHandler) ModerateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var payload validation.ModerationPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	product, err := h.products.Moderate(c.UserContext(), id, payload)
	if err != nil {
		return err
	}
	return ok(c, product)
}

type featuredRequest struct {
	IsFeatured *bool `json:"is_featured"`
}

// FeatureProduct toggles the featured flag.
func (h *AdminHandler) FeatureProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req featuredRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.IsFeatured == nil {
		return validation.Errors{"is_featured is required"}
	}
	product, err := h.products.SetFeatured(c.UserContext(), id, *req.IsFeatured)
	if err != nil {
		return err
	}
	return ok(c, product)
}

// ListUsers returns paginated users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := repository.UserFilter{
		Search: c.Query("search"),
		Page:   pg.Page,
		Limit:  pg.Limit,
	}
	switch role := c.Query("role"); role {
	case models.RoleUser, models.RoleAdmin:
		filter.Role = role
	}

	page, err := h.users.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       page.Users,
		"pagination": pg.Meta(page.Total),
	})
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var payload validation.AdminUserPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	user, err := h.users.AdminUpdate(c.UserContext(), id, payload)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	actor, _ := middleware.CurrentUser(c)
	if err := h.users.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

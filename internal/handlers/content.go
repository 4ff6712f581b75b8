package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/services"
	"github.com/example/gemmarket/internal/utils"
	"github.com/example/gemmarket/internal/validation"
)

// PublicationHandler serves news items or articles.
type PublicationHandler[T any] struct {
	svc *services.PublicationService[T]
}

// NewNewsHandler constructs the news handler.
func NewNewsHandler(svc *services.PublicationService[models.News]) *PublicationHandler[models.News] {
	return &PublicationHandler[models.News]{svc: svc}
}

// NewArticleHandler constructs the article handler.
func NewArticleHandler(svc *services.PublicationService[models.Article]) *PublicationHandler[models.Article] {
	return &PublicationHandler[models.Article]{svc: svc}
}

// ListPublished returns published items, newest first.
func (h *PublicationHandler[T]) ListPublished(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	page, err := h.svc.ListPublished(c.UserContext(), pg.Page, pg.Limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       page.Items,
		"pagination": pg.Meta(page.Total),
	})
}

// GetPublished returns a published item by slug.
func (h *PublicationHandler[T]) GetPublished(c *fiber.Ctx) error {
	item, err := h.svc.GetPublished(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return ok(c, item)
}

// List returns every item for the back office.
func (h *PublicationHandler[T]) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := repository.PublicationFilter{
		Search: c.Query("search"),
		Page:   pg.Page,
		Limit:  pg.Limit,
	}
	switch status := c.Query("status"); status {
	case models.PublicationDraft, models.PublicationPublished:
		filter.Status = status
	}

	page, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       page.Items,
		"pagination": pg.Meta(page.Total),
	})
}

func (h *PublicationHandler[T]) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	item, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, item)
}

func (h *PublicationHandler[T]) Create(c *fiber.Ctx) error {
	var payload validation.PublicationPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	item, err := h.svc.Create(c.UserContext(), payload)
	if err != nil {
		return err
	}
	return created(c, item)
}

func (h *PublicationHandler[T]) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var payload validation.PublicationPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	item, err := h.svc.Update(c.UserContext(), id, payload)
	if err != nil {
		return err
	}
	return ok(c, item)
}

func (h *PublicationHandler[T]) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterPublic mounts the published read routes.
func (h *PublicationHandler[T]) RegisterPublic(router fiber.Router) {
	router.Get("/", h.ListPublished)
	router.Get("/:slug", h.GetPublished)
}

// RegisterAdmin mounts the full CRUD routes.
func (h *PublicationHandler[T]) RegisterAdmin(router fiber.Router) {
	router.Get("/", h.List)
	router.Get("/:id", h.Get)
	router.Post("/", h.Create)
	router.Patch("/:id", h.Update)
	router.Delete("/:id", h.Delete)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/services"
	"github.com/example/gemmarket/internal/validation"
)

// CategoryHandler serves the category tree.
type CategoryHandler struct {
	categories *services.CategoryService
}

// NewCategoryHandler constructs CategoryHandler.
func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// ListCategories returns the tree, or the flat list with ?flat=true.
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	var (
		categories []models.Category
		err        error
	)
	if c.QueryBool("flat") {
		categories, err = h.categories.List(c.UserContext())
	} else {
		categories, err = h.categories.Tree(c.UserContext())
	}
	if err != nil {
		return err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return ok(c, categories)
}

// GetCategory returns a single category with its species.
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	category, err := h.categories.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, category)
}

// CreateCategory persists a new category.
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var payload validation.CategoryPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	category, err := h.categories.Create(c.UserContext(), payload)
	if err != nil {
		return err
	}
	return created(c, category)
}

// UpdateCategory applies a partial update.
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var payload validation.CategoryPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	category, err := h.categories.Update(c.UserContext(), id, payload)
	if err != nil {
		return err
	}
	return ok(c, category)
}

// ReplaceCategorySpecies sets the species allowed under a category.
func (h *CategoryHandler) ReplaceCategorySpecies(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var payload validation.SpeciesLinkPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	category, err := h.categories.ReplaceSpecies(c.UserContext(), id, payload.SpeciesIDs)
	if err != nil {
		return err
	}
	return ok(c, category)
}

// DeleteCategory removes a category by ID.
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.categories.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReferenceHandler serves species, laboratories or origins.
type ReferenceHandler[T any] struct {
	svc     *services.ReferenceService[T]
	build   func(validation.ReferencePayload) T
	updates func(validation.ReferencePayload) map[string]any
}

// NewSpeciesHandler constructs the species handler.
func NewSpeciesHandler(svc *services.ReferenceService[models.Species]) *ReferenceHandler[models.Species] {
	return &ReferenceHandler[models.Species]{
		svc:     svc,
		build:   validation.ReferencePayload.NewSpecies,
		updates: validation.ReferencePayload.SpeciesUpdates,
	}
}

// NewLaboratoryHandler constructs the laboratory handler.
func NewLaboratoryHandler(svc *services.ReferenceService[models.Laboratory]) *ReferenceHandler[models.Laboratory] {
	return &ReferenceHandler[models.Laboratory]{
		svc:     svc,
		build:   validation.ReferencePayload.NewLaboratory,
		updates: validation.ReferencePayload.LaboratoryUpdates,
	}
}

// NewOriginHandler constructs the origin handler.
func NewOriginHandler(svc *services.ReferenceService[models.Origin]) *ReferenceHandler[models.Origin] {
	return &ReferenceHandler[models.Origin]{
		svc:     svc,
		build:   validation.ReferencePayload.NewOrigin,
		updates: validation.ReferencePayload.OriginUpdates,
	}
}

func (h *ReferenceHandler[T]) List(c *fiber.Ctx) error {
	items, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	return ok(c, items)
}

func (h *ReferenceHandler[T]) Get(c *fiber.Ctx) error {
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

func (h *ReferenceHandler[T]) Create(c *fiber.Ctx) error {
	var payload validation.ReferencePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	if err := payload.ValidateCreate(); err != nil {
		return err
	}
	item := h.build(payload)
	if err := h.svc.Create(c.UserContext(), &item); err != nil {
		return err
	}
	return created(c, item)
}

func (h *ReferenceHandler[T]) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var payload validation.ReferencePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	if err := payload.ValidateUpdate(); err != nil {
		return err
	}
	item, err := h.svc.Update(c.UserContext(), id, h.updates(payload))
	if err != nil {
		return err
	}
	return ok(c, item)
}

func (h *ReferenceHandler[T]) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterPublic mounts the read routes.
func (h *ReferenceHandler[T]) RegisterPublic(router fiber.Router) {
	router.Get("/", h.List)
	router.Get("/:id", h.Get)
}

// RegisterAdmin mounts the full CRUD routes.
func (h *ReferenceHandler[T]) RegisterAdmin(router fiber.Router) {
	router.Get("/", h.List)
	router.Get("/:id", h.Get)
	router.Post("/", h.Create)
	router.Patch("/:id", h.Update)
	router.Delete("/:id", h.Delete)
}

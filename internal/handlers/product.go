package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gemmarket/internal/middleware"
	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/services"
	"github.com/example/gemmarket/internal/utils"
	"github.com/example/gemmarket/internal/validation"
)

// ProductHandler serves listing endpoints.
type ProductHandler struct {
	products *services.ProductService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// ListProducts returns active, approved listings.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := repository.PublicProductFilter{
		Search:     c.Query("search"),
		CategoryID: queryID(c, "category_id"),
		SpeciesID:  queryID(c, "species_id"),
		Page:       pg.Page,
		Limit:      pg.Limit,
	}
	switch productType := c.Query("product_type", c.Query("type")); productType {
	case models.ProductTypeLooseStone, models.ProductTypeJewellery:
		filter.ProductType = productType
	}
	if featured, err := strconv.ParseBool(c.Query("featured")); err == nil {
		filter.Featured = &featured
	}

	page, err := h.products.ListPublic(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       page.Products,
		"pagination": pg.Meta(page.Total),
	})
}

// GetProduct returns a single listing. Unpublished listings are only
// visible to their seller and admins.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	viewer, _ := middleware.CurrentUser(c)

	product, err := h.products.GetVisible(c.UserContext(), viewer, id)
	if err != nil {
		return err
	}
	return ok(c, product)
}

// CreateProduct stores a listing sold by the session user.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	user, signedIn := middleware.CurrentUser(c)
	if !signedIn {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	payload, err := validation.DecodeProductBody(c.Body())
	if err != nil {
		return err
	}

	product, err := h.products.Create(c.UserContext(), user, payload)
	if err != nil {
		return err
	}
	return created(c, product)
}

// UpdateProduct applies a partial update by the seller or an admin.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	user, signedIn := middleware.CurrentUser(c)
	if !signedIn {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	payload, err := validation.DecodeProductBody(c.Body())
	if err != nil {
		return err
	}

	product, err := h.products.Update(c.UserContext(), user, id, payload)
	if err != nil {
		return err
	}
	return ok(c, product)
}

// DeleteProduct removes a listing on behalf of the seller or an admin.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	user, signedIn := middleware.CurrentUser(c)
	if !signedIn {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.products.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterProductRoutes mounts the public listing routes.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Get("/:id", h.GetProduct)
	router.Post("/", middleware.NoStore(), h.CreateProduct)
	router.Patch("/:id", middleware.NoStore(), h.UpdateProduct)
	router.Delete("/:id", middleware.NoStore(), h.DeleteProduct)
}

package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalog/internal/dto"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/validation"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validation.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app. Reads are
// public; writes go through the supplied guard.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, writeGuard fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/category/:categoryId", h.HandleListByCategory)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", writeGuard, h.HandleCreateProduct)
	productRoutes.Put("/:id", writeGuard, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", writeGuard, h.HandleDeleteProduct)
}

// HandleListProducts lists, searches or filters the catalog. An explicit
// categoryId takes precedence over the keyword; a non-blank keyword takes
// precedence over the plain listing.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page := parsePageRequest(c)

	if raw := c.Query("categoryId"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "categoryId must be an integer",
			})
		}
		result, err := h.service.ListProductsByCategory(categoryID, page)
		if err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(result)
	}

	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		result, err := h.service.SearchProducts(keyword, page)
		if err != nil {
			return h.respondError(c, err)
		}
		return c.JSON(result)
	}

	result, err := h.service.ListProducts(page)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// HandleListByCategory filters the catalog by the path's category id.
func (h *ProductHandler) HandleListByCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.ParseInt(c.Params("categoryId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "categoryId must be an integer",
		})
	}

	result, err := h.service.ListProductsByCategory(categoryID, parsePageRequest(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "id must be a positive integer",
		})
	}

	product, err := h.service.GetProductByID(id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req dto.ProductCreateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return h.respondValidationFailed(c, err.(validator.ValidationErrors))
	}

	created, err := h.service.CreateProduct(&req)
	if err != nil {
		return h.respondError(c, err)
	}
	log.Printf("Product created successfully with id: %d", created.ID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "id must be a positive integer",
		})
	}

	var req dto.ProductUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return h.respondValidationFailed(c, err.(validator.ValidationErrors))
	}

	updated, err := h.service.UpdateProduct(id, &req)
	if err != nil {
		return h.respondError(c, err)
	}
	log.Printf("Product %d updated successfully", id)
	return c.JSON(updated)
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "id must be a positive integer",
		})
	}

	if err := h.service.DeleteProduct(id); err != nil {
		return h.respondError(c, err)
	}
	log.Printf("Product %d deleted successfully", id)
	return c.SendStatus(fiber.StatusNoContent)
}

// respondError translates service and repository failures into responses.
// Unclassified errors are logged and answered with a generic 500 so the
// underlying cause is never echoed to the caller.
func (h *ProductHandler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, repositories.ErrDuplicateSKU):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Data integrity violation",
			"message": "The SKU or another unique field is already in use.",
		})
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return h.respondValidationFailed(c, validationErrors)
	}

	log.Printf("Unexpected error handling %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "An internal server error occurred",
	})
}

// respondValidationFailed maps each offending field to a human message.
func (h *ProductHandler) respondValidationFailed(c *fiber.Ctx, validationErrors validator.ValidationErrors) error {
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// parseID reads the id path parameter.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// parsePageRequest reads page, size and sort query parameters, applying
// the defaults for anything absent or out of range.
func parsePageRequest(c *fiber.Ctx) dto.PageRequest {
	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	size := c.QueryInt("size", dto.DefaultPageSize)
	if size <= 0 {
		size = dto.DefaultPageSize
	}
	return dto.PageRequest{
		Page: page,
		Size: size,
		Sort: c.Query("sort", dto.DefaultSort),
	}
}

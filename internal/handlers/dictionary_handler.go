package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/middleware"
	"github.com/okozyrev/ratemark/internal/permissions"
	"github.com/okozyrev/ratemark/internal/services"
)

// DictionaryHandler serves /categories and /genres: open listing with
// partial name search, admin-only create and delete.
type DictionaryHandler struct {
	dictService *services.DictionaryService
}

func NewDictionaryHandler(dictService *services.DictionaryService) *DictionaryHandler {
	return &DictionaryHandler{dictService: dictService}
}

func (h *DictionaryHandler) ListCategories(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	categories, total, err := h.dictService.ListCategories(c.Query("search"), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(paginated("categories", categories, page, limit, total))
}

func (h *DictionaryHandler) CreateCategory(c *fiber.Ctx) error {
	if err := h.requireAdminWrite(c); err != nil {
		return serviceError(c, err)
	}

	var req dto.DictionaryRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	category, err := h.dictService.CreateCategory(&req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *DictionaryHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.requireAdminWrite(c); err != nil {
		return serviceError(c, err)
	}

	if err := h.dictService.DeleteCategory(c.Params("slug")); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *DictionaryHandler) ListGenres(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	genres, total, err := h.dictService.ListGenres(c.Query("search"), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(paginated("genres", genres, page, limit, total))
}

func (h *DictionaryHandler) CreateGenre(c *fiber.Ctx) error {
	if err := h.requireAdminWrite(c); err != nil {
		return serviceError(c, err)
	}

	var req dto.DictionaryRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	genre, err := h.dictService.CreateGenre(&req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(genre)
}

func (h *DictionaryHandler) DeleteGenre(c *fiber.Ctx) error {
	if err := h.requireAdminWrite(c); err != nil {
		return serviceError(c, err)
	}

	if err := h.dictService.DeleteGenre(c.Params("slug")); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *DictionaryHandler) requireAdminWrite(c *fiber.Ctx) error {
	return permissions.Check(permissions.AdminOrReadOnly, middleware.Actor(c), c.Method(), uuid.Nil)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/middleware"
	"github.com/okozyrev/ratemark/internal/permissions"
	"github.com/okozyrev/ratemark/internal/services"
)

type TitleHandler struct {
	titleService *services.TitleService
}

func NewTitleHandler(titleService *services.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

func (h *TitleHandler) List(c *fiber.Ctx) error {
	filters := &dto.TitleFilters{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
	}
	if c.Query("year") != "" {
		year := c.QueryInt("year")
		filters.Year = &year
	}

	page, limit := pageParams(c)
	titles, total, err := h.titleService.List(filters, page, limit)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(paginated("titles", titles, page, limit, total))
}

func (h *TitleHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return serviceError(c, services.ErrTitleNotFound)
	}

	title, err := h.titleService.Get(id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(title)
}

func (h *TitleHandler) Create(c *fiber.Ctx) error {
	if err := h.requireAdminWrite(c); err != nil {
		return serviceError(c, err)
	}

	var req dto.TitleRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	title, err := h.titleService.Create(&req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(title)
}

func (h *TitleHandler) Update(c *fiber.Ctx) error {
	if err := h.requireAdminWrite(c); err != nil {
		return serviceError(c, err)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return serviceError(c, services.ErrTitleNotFound)
	}

	var req dto.TitleRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	title, err := h.titleService.Update(id, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(title)
}

func (h *TitleHandler) Delete(c *fiber.Ctx) error {
	if err := h.requireAdminWrite(c); err != nil {
		return serviceError(c, err)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return serviceError(c, services.ErrTitleNotFound)
	}

	if err := h.titleService.Delete(id); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TitleHandler) requireAdminWrite(c *fiber.Ctx) error {
	return permissions.Check(permissions.AdminOrReadOnly, middleware.Actor(c), c.Method(), uuid.Nil)
}

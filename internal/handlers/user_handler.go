package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/middleware"
	"github.com/okozyrev/ratemark/internal/permissions"
	"github.com/okozyrev/ratemark/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// --- admin collection ---

func (h *UserHandler) List(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return serviceError(c, err)
	}

	page, limit := pageParams(c)
	users, total, err := h.userService.List(page, limit)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(paginated("users", users, page, limit, total))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return serviceError(c, err)
	}

	user, err := h.userService.GetByUsername(c.Params("username"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(user)
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return serviceError(c, err)
	}

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.userService.Create(&req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return serviceError(c, err)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.userService.Update(c.Params("username"), &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(user)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return serviceError(c, err)
	}

	if err := h.userService.Delete(c.Params("username")); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// --- self service ---

func (h *UserHandler) Me(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return serviceError(c, permissions.ErrAuthRequired)
	}
	return c.JSON(actor)
}

// UpdateMe never lets the payload change the stored role.
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if actor == nil {
		return serviceError(c, permissions.ErrAuthRequired)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.userService.UpdateSelf(actor, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(user)
}

func (h *UserHandler) requireAdmin(c *fiber.Ctx) error {
	return permissions.Check(permissions.AdminOnly, middleware.Actor(c), c.Method(), uuid.Nil)
}

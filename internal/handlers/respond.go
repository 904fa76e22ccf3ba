package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/permissions"
	"github.com/okozyrev/ratemark/internal/services"
)

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// serviceError maps the error taxonomy onto HTTP statuses. Anything
// unrecognized is a server fault: logged, reported as a bare 500.
func serviceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fail(c, fiber.StatusBadRequest, validationErr.Error())
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrSlugTaken),
		errors.Is(err, services.ErrDuplicateReview),
		errors.Is(err, services.ErrInvalidCode):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTitleNotFound),
		errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrGenreNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidToken):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, permissions.ErrAuthRequired):
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	case errors.Is(err, permissions.ErrForbidden):
		return fail(c, fiber.StatusForbidden, "You do not have permission to perform this action")
	}

	slog.Error("unhandled service error", "method", c.Method(), "path", c.Path(), "error", err.Error())
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

func pageParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func paginated(key string, items interface{}, page, limit int, total int64) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			key: items,
			"pagination": fiber.Map{
				"page":        page,
				"limit":       limit,
				"total":       total,
				"total_pages": (total + int64(limit) - 1) / int64(limit),
			},
		},
	}
}

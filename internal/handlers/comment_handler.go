package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/middleware"
	"github.com/okozyrev/ratemark/internal/models"
	"github.com/okozyrev/ratemark/internal/permissions"
	"github.com/okozyrev/ratemark/internal/services"
)

// CommentHandler serves comments nested under a title's review; the same
// policy as reviews applies.
type CommentHandler struct {
	reviewService *services.ReviewService
}

func NewCommentHandler(reviewService *services.ReviewService) *CommentHandler {
	return &CommentHandler{reviewService: reviewService}
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	titleID, reviewID, err := h.parentIDs(c)
	if err != nil {
		return serviceError(c, err)
	}

	page, limit := pageParams(c)
	comments, total, err := h.reviewService.ListComments(titleID, reviewID, page, limit)
	if err != nil {
		return serviceError(c, err)
	}

	resp := make([]dto.CommentResponse, len(comments))
	for i := range comments {
		resp[i] = dto.NewCommentResponse(&comments[i])
	}
	return c.JSON(paginated("comments", resp, page, limit, total))
}

func (h *CommentHandler) Get(c *fiber.Ctx) error {
	titleID, reviewID, commentID, err := h.pathIDs(c)
	if err != nil {
		return serviceError(c, err)
	}

	comment, err := h.reviewService.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(dto.NewCommentResponse(comment))
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if err := permissions.Check(permissions.IsAuthenticated, actor, c.Method(), uuid.Nil); err != nil {
		return serviceError(c, err)
	}

	titleID, reviewID, err := h.parentIDs(c)
	if err != nil {
		return serviceError(c, err)
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	comment, err := h.reviewService.CreateComment(titleID, reviewID, actor, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewCommentResponse(comment))
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	titleID, reviewID, commentID, err := h.pathIDs(c)
	if err != nil {
		return serviceError(c, err)
	}

	comment, err := h.authorize(c, titleID, reviewID, commentID)
	if err != nil {
		return serviceError(c, err)
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	comment, err = h.reviewService.UpdateComment(titleID, reviewID, comment.ID, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(dto.NewCommentResponse(comment))
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	titleID, reviewID, commentID, err := h.pathIDs(c)
	if err != nil {
		return serviceError(c, err)
	}

	comment, err := h.authorize(c, titleID, reviewID, commentID)
	if err != nil {
		return serviceError(c, err)
	}

	if err := h.reviewService.DeleteComment(titleID, reviewID, comment.ID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CommentHandler) authorize(c *fiber.Ctx, titleID, reviewID, commentID uuid.UUID) (*models.Comment, error) {
	comment, err := h.reviewService.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	actor := middleware.Actor(c)
	if err := permissions.Check(permissions.AuthorOrStaffOrReadOnly, actor, c.Method(), comment.AuthorID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (h *CommentHandler) parentIDs(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	titleID, err := uuid.Parse(c.Params("titleID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, services.ErrTitleNotFound
	}
	reviewID, err := uuid.Parse(c.Params("reviewID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, services.ErrReviewNotFound
	}
	return titleID, reviewID, nil
}

func (h *CommentHandler) pathIDs(c *fiber.Ctx) (uuid.UUID, uuid.UUID, uuid.UUID, error) {
	titleID, reviewID, err := h.parentIDs(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, err
	}
	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, services.ErrCommentNotFound
	}
	return titleID, reviewID, commentID, nil
}

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

// ReviewHandler serves reviews nested under a title. Reads are open;
// creation needs any authenticated user; mutation is author, moderator
// or admin.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	titleID, err := uuid.Parse(c.Params("titleID"))
	if err != nil {
		return serviceError(c, services.ErrTitleNotFound)
	}

	page, limit := pageParams(c)
	reviews, total, err := h.reviewService.ListReviews(titleID, page, limit)
	if err != nil {
		return serviceError(c, err)
	}

	resp := make([]dto.ReviewResponse, len(reviews))
	for i := range reviews {
		resp[i] = dto.NewReviewResponse(&reviews[i])
	}
	return c.JSON(paginated("reviews", resp, page, limit, total))
}

func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	titleID, reviewID, err := h.pathIDs(c)
	if err != nil {
		return serviceError(c, err)
	}

	review, err := h.reviewService.GetReview(titleID, reviewID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(dto.NewReviewResponse(review))
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if err := permissions.Check(permissions.IsAuthenticated, actor, c.Method(), uuid.Nil); err != nil {
		return serviceError(c, err)
	}

	titleID, err := uuid.Parse(c.Params("titleID"))
	if err != nil {
		return serviceError(c, services.ErrTitleNotFound)
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	review, err := h.reviewService.CreateReview(titleID, actor, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewReviewResponse(review))
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	titleID, reviewID, err := h.pathIDs(c)
	if err != nil {
		return serviceError(c, err)
	}

	review, err := h.authorize(c, titleID, reviewID)
	if err != nil {
		return serviceError(c, err)
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	review, err = h.reviewService.UpdateReview(titleID, review.ID, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(dto.NewReviewResponse(review))
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	titleID, reviewID, err := h.pathIDs(c)
	if err != nil {
		return serviceError(c, err)
	}

	review, err := h.authorize(c, titleID, reviewID)
	if err != nil {
		return serviceError(c, err)
	}

	if err := h.reviewService.DeleteReview(titleID, review.ID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// authorize fetches the review first: a missing target is a 404 before
// it is a 403.
func (h *ReviewHandler) authorize(c *fiber.Ctx, titleID, reviewID uuid.UUID) (*models.Review, error) {
	review, err := h.reviewService.GetReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}

	actor := middleware.Actor(c)
	if err := permissions.Check(permissions.AuthorOrStaffOrReadOnly, actor, c.Method(), review.AuthorID); err != nil {
		return nil, err
	}
	return review, nil
}

func (h *ReviewHandler) pathIDs(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	titleID, err := uuid.Parse(c.Params("titleID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, services.ErrTitleNotFound
	}
	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, services.ErrReviewNotFound
	}
	return titleID, reviewID, nil
}

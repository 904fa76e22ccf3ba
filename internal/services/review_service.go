package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/models"
	"github.com/okozyrev/ratemark/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrDuplicateReview = errors.New("you have already reviewed this title")
)

// ReviewService handles reviews and their comments, always scoped to the
// parent entity named in the request path.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

func (s *ReviewService) ListReviews(titleID uuid.UUID, page, limit int) ([]models.Review, int64, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, 0, err
	}

	q := s.db.Model(&models.Review{}).Where("title_id = ?", titleID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []models.Review
	err := q.Preload("Author").
		Order("pub_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, total, nil
}

func (s *ReviewService) GetReview(titleID, reviewID uuid.UUID) (*models.Review, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, err
	}

	var review models.Review
	err := s.db.Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to look up review: %w", err)
	}
	return &review, nil
}

// CreateReview enforces one review per (author, title). The unique index
// is the real guard; the pre-check just produces the error without
// burning an insert.
func (s *ReviewService) CreateReview(titleID uuid.UUID, author *models.User, req *dto.ReviewRequest) (*models.Review, error) {
	if err := s.requireTitle(titleID); err != nil {
		return nil, err
	}
	if req.Text == nil || *req.Text == "" {
		return nil, invalid(errors.New("text is required"))
	}
	if req.Score == nil {
		return nil, invalid(errors.New("score is required"))
	}
	if err := validation.Score(*req.Score); err != nil {
		return nil, invalid(err)
	}

	var count int64
	s.db.Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, author.ID).
		Count(&count)
	if count > 0 {
		return nil, ErrDuplicateReview
	}

	review := models.Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Text:     *req.Text,
		Score:    *req.Score,
	}
	if err := s.db.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	review.Author = author
	return &review, nil
}

// UpdateReview skips the duplicate check: edits never create a second
// review for the pair.
func (s *ReviewService) UpdateReview(titleID, reviewID uuid.UUID, req *dto.ReviewRequest) (*models.Review, error) {
	review, err := s.GetReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Text != nil {
		if *req.Text == "" {
			return nil, invalid(errors.New("text is required"))
		}
		updates["text"] = *req.Text
	}
	if req.Score != nil {
		if err := validation.Score(*req.Score); err != nil {
			return nil, invalid(err)
		}
		updates["score"] = *req.Score
	}

	if len(updates) > 0 {
		if err := s.db.Model(review).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update review: %w", err)
		}
	}

	return review, nil
}

func (s *ReviewService) DeleteReview(titleID, reviewID uuid.UUID) error {
	review, err := s.GetReview(titleID, reviewID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", review.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(review).Error
	})
}

func (s *ReviewService) ListComments(titleID, reviewID uuid.UUID, page, limit int) ([]models.Comment, int64, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, 0, err
	}

	q := s.db.Model(&models.Comment{}).Where("review_id = ?", reviewID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	var comments []models.Comment
	err := q.Preload("Author").
		Order("pub_date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, total, nil
}

func (s *ReviewService) GetComment(titleID, reviewID, commentID uuid.UUID) (*models.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}

	var comment models.Comment
	err := s.db.Preload("Author").
		Where("id = ? AND review_id = ?", commentID, reviewID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to look up comment: %w", err)
	}
	return &comment, nil
}

func (s *ReviewService) CreateComment(titleID, reviewID uuid.UUID, author *models.User, req *dto.CommentRequest) (*models.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}
	if req.Text == nil || *req.Text == "" {
		return nil, invalid(errors.New("text is required"))
	}

	comment := models.Comment{
		ReviewID: reviewID,
		AuthorID: author.ID,
		Text:     *req.Text,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	comment.Author = author
	return &comment, nil
}

func (s *ReviewService) UpdateComment(titleID, reviewID, commentID uuid.UUID, req *dto.CommentRequest) (*models.Comment, error) {
	comment, err := s.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if req.Text == nil || *req.Text == "" {
		return nil, invalid(errors.New("text is required"))
	}

	if err := s.db.Model(comment).Update("text", *req.Text).Error; err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

func (s *ReviewService) DeleteComment(titleID, reviewID, commentID uuid.UUID) error {
	comment, err := s.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	return s.db.Delete(comment).Error
}

func (s *ReviewService) requireTitle(titleID uuid.UUID) error {
	var count int64
	if err := s.db.Model(&models.Title{}).Where("id = ?", titleID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up title: %w", err)
	}
	if count == 0 {
		return ErrTitleNotFound
	}
	return nil
}

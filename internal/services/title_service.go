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

var ErrTitleNotFound = errors.New("title not found")

// ratingSelect attaches the derived mean review score to each row.
// AVG over zero rows is NULL, which scans into a nil *float64.
const ratingSelect = "titles.*, (SELECT AVG(score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

type TitleService struct {
	db *gorm.DB
}

func NewTitleService(db *gorm.DB) *TitleService {
	return &TitleService{db: db}
}

func (s *TitleService) List(filters *dto.TitleFilters, page, limit int) ([]models.Title, int64, error) {
	var total int64
	if err := s.filtered(filters).Distinct("titles.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count titles: %w", err)
	}

	var titles []models.Title
	err := s.filtered(filters).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres").
		Order("titles.created_at").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&titles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list titles: %w", err)
	}

	return titles, total, nil
}

func (s *TitleService) Get(id uuid.UUID) (*models.Title, error) {
	var title models.Title
	err := s.db.Model(&models.Title{}).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres").
		Where("titles.id = ?", id).
		First(&title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, fmt.Errorf("failed to look up title: %w", err)
	}
	return &title, nil
}

func (s *TitleService) Create(req *dto.TitleRequest) (*models.Title, error) {
	if req.Name == nil || *req.Name == "" {
		return nil, invalid(errors.New("name is required"))
	}
	if req.Year == nil {
		return nil, invalid(errors.New("year is required"))
	}
	if err := validation.Year(*req.Year); err != nil {
		return nil, invalid(err)
	}
	if req.Category == nil {
		return nil, invalid(errors.New("category is required"))
	}
	if req.Genre == nil || len(*req.Genre) == 0 {
		return nil, invalid(errors.New("genre is required"))
	}

	category, err := s.resolveCategory(*req.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(*req.Genre)
	if err != nil {
		return nil, err
	}

	title := models.Title{
		Name:       *req.Name,
		Year:       *req.Year,
		CategoryID: &category.ID,
		Genres:     genres,
	}
	if req.Description != nil {
		title.Description = *req.Description
	}

	if err := s.db.Create(&title).Error; err != nil {
		return nil, fmt.Errorf("failed to create title: %w", err)
	}

	return s.Get(title.ID)
}

func (s *TitleService) Update(id uuid.UUID, req *dto.TitleRequest) (*models.Title, error) {
	title, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, invalid(errors.New("name is required"))
		}
		updates["name"] = *req.Name
	}
	if req.Year != nil {
		if err := validation.Year(*req.Year); err != nil {
			return nil, invalid(err)
		}
		updates["year"] = *req.Year
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		category, err := s.resolveCategory(*req.Category)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = category.ID
	}

	if len(updates) > 0 {
		if err := s.db.Model(title).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update title: %w", err)
		}
	}

	if req.Genre != nil {
		genres, err := s.resolveGenres(*req.Genre)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(title).Association("Genres").Replace(genres); err != nil {
			return nil, fmt.Errorf("failed to update genres: %w", err)
		}
	}

	return s.Get(id)
}

// Delete removes a title with its reviews, their comments, and the genre
// join rows, all in one transaction.
func (s *TitleService) Delete(id uuid.UUID) error {
	title, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", title.ID)
		if err := tx.Where("review_id IN (?)", reviewIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", title.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", title.ID).Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Title{}, "id = ?", title.ID).Error
	})
}

func (s *TitleService) filtered(f *dto.TitleFilters) *gorm.DB {
	q := s.db.Model(&models.Title{})
	if f == nil {
		return q
	}
	if f.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", f.Category)
	}
	if f.Genre != "" {
		q = q.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", f.Genre)
	}
	if f.Name != "" {
		q = q.Where("titles.name LIKE ?", "%"+f.Name+"%")
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	return q
}

// Unknown slugs in the write representation are payload errors, not 404s.
func (s *TitleService) resolveCategory(slug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid(fmt.Errorf("unknown category %q", slug))
		}
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	return &category, nil
}

func (s *TitleService) resolveGenres(slugs []string) ([]models.Genre, error) {
	genres := make([]models.Genre, 0, len(slugs))
	for _, slug := range slugs {
		var genre models.Genre
		if err := s.db.Where("slug = ?", slug).First(&genre).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, invalid(fmt.Errorf("unknown genre %q", slug))
			}
			return nil, fmt.Errorf("failed to look up genre: %w", err)
		}
		genres = append(genres, genre)
	}
	return genres, nil
}

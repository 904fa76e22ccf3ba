package services

import (
	"errors"
	"fmt"

	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/models"
	"github.com/okozyrev/ratemark/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken        = errors.New("an entry with this slug already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
)

// DictionaryService manages the reference data: categories and genres.
type DictionaryService struct {
	db *gorm.DB
}

func NewDictionaryService(db *gorm.DB) *DictionaryService {
	return &DictionaryService{db: db}
}

func (s *DictionaryService) ListCategories(search string, page, limit int) ([]models.Category, int64, error) {
	var categories []models.Category
	total, err := s.list(&categories, &models.Category{}, search, page, limit)
	return categories, total, err
}

func (s *DictionaryService) ListGenres(search string, page, limit int) ([]models.Genre, int64, error) {
	var genres []models.Genre
	total, err := s.list(&genres, &models.Genre{}, search, page, limit)
	return genres, total, err
}

func (s *DictionaryService) list(dest interface{}, model interface{}, search string, page, limit int) (int64, error) {
	q := s.db.Model(model)
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	err := q.Order("name").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(dest).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list entries: %w", err)
	}

	return total, nil
}

func (s *DictionaryService) CreateCategory(req *dto.DictionaryRequest) (*models.Category, error) {
	if err := validateDictionary(req); err != nil {
		return nil, err
	}

	category := models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, translateSlugCollision(err)
	}
	return &category, nil
}

func (s *DictionaryService) CreateGenre(req *dto.DictionaryRequest) (*models.Genre, error) {
	if err := validateDictionary(req); err != nil {
		return nil, err
	}

	genre := models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.db.Create(&genre).Error; err != nil {
		return nil, translateSlugCollision(err)
	}
	return &genre, nil
}

// DeleteCategory clears the category reference on dependent titles and
// removes the category. Titles themselves survive.
func (s *DictionaryService) DeleteCategory(slug string) error {
	var category models.Category
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to look up category: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Title{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
}

// DeleteGenre removes the genre and its join rows; titles are untouched.
func (s *DictionaryService) DeleteGenre(slug string) error {
	var genre models.Genre
	if err := s.db.Where("slug = ?", slug).First(&genre).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return fmt.Errorf("failed to look up genre: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("genre_id = ?", genre.ID).Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}
		return tx.Delete(&genre).Error
	})
}

func validateDictionary(req *dto.DictionaryRequest) error {
	if err := validation.Required("name", req.Name); err != nil {
		return invalid(err)
	}
	if len(req.Name) > 256 {
		return invalid(errors.New("name must be at most 256 characters"))
	}
	if err := validation.Slug(req.Slug); err != nil {
		return invalid(err)
	}
	return nil
}

func translateSlugCollision(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugTaken
	}
	return fmt.Errorf("failed to create entry: %w", err)
}

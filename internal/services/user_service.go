package services

import (
	"errors"
	"fmt"

	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/models"
	"github.com/okozyrev/ratemark/internal/validation"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	err := s.db.Order("username").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func (s *UserService) Create(req *dto.CreateUserRequest) (*models.User, error) {
	if err := validation.Username(req.Username); err != nil {
		return nil, invalid(err)
	}
	if err := validation.Email(req.Email); err != nil {
		return nil, invalid(err)
	}
	if err := validateRole(req.Role); err != nil {
		return nil, invalid(err)
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, s.translateUserCollision(err, &user)
	}

	return &user, nil
}

// Update applies a partial update to the named user. Admin path: the role
// field is writable here.
func (s *UserService) Update(username string, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.apply(user, req, true)
}

// UpdateSelf is the /users/me path. Whatever role the payload carries,
// the stored role stays the actor's current one.
func (s *UserService) UpdateSelf(actor *models.User, req *dto.UpdateUserRequest) (*models.User, error) {
	return s.apply(actor, req, false)
}

func (s *UserService) apply(user *models.User, req *dto.UpdateUserRequest, allowRole bool) (*models.User, error) {
	currentRole := user.Role

	if req.Username != nil {
		if err := validation.Username(*req.Username); err != nil {
			return nil, invalid(err)
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		if err := validation.Email(*req.Email); err != nil {
			return nil, invalid(err)
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil && allowRole {
		if err := validateRole(*req.Role); err != nil {
			return nil, invalid(err)
		}
		user.Role = *req.Role
	}
	if !allowRole {
		user.Role = currentRole
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, s.translateUserCollision(err, user)
	}

	return user, nil
}

// Delete removes a user and everything they authored. Children go first
// inside one transaction so the result does not depend on driver-level
// cascade support.
func (s *UserService) Delete(username string) error {
	user, err := s.GetByUsername(username)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Model(&models.Review{}).Select("id").Where("author_id = ?", user.ID)
		if err := tx.Where("review_id IN (?)", reviewIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", user.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

func (s *UserService) translateUserCollision(err error, user *models.User) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var count int64
		s.db.Model(&models.User{}).
			Where("username = ? AND id <> ?", user.Username, user.ID).
			Count(&count)
		if count > 0 {
			return ErrUsernameTaken
		}
		return ErrEmailTaken
	}
	return fmt.Errorf("failed to save user: %w", err)
}

func validateRole(role string) error {
	switch role {
	case "", models.RoleUser, models.RoleModerator, models.RoleAdmin:
		return nil
	}
	return errors.New("role must be one of user, moderator, admin")
}

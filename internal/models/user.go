package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values stored in User.Role.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User is an account holder. Username and email are each unique on their
// own, which also keeps the (username, email) pair unique.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Username         string    `gorm:"size:150;not null;uniqueIndex:idx_users_username" json:"username"`
	Email            string    `gorm:"size:254;not null;uniqueIndex:idx_users_email" json:"email"`
	FirstName        string    `gorm:"size:150" json:"first_name"`
	LastName         string    `gorm:"size:150" json:"last_name"`
	Bio              string    `gorm:"type:text" json:"bio"`
	Role             string    `gorm:"size:20;not null;default:'user'" json:"role"`
	IsStaff          bool      `gorm:"default:false" json:"-"`
	ConfirmationCode string    `gorm:"size:50" json:"-"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role or the staff flag.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Title is a reviewable work. The category reference survives category
// deletion (nulled out); genre links live in the title_genres join table
// and go away with either side.
type Title struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"type:text;not null" json:"name"`
	Year        int        `gorm:"not null" json:"year"`
	Description string     `gorm:"type:text" json:"description"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	Category    *Category  `gorm:"constraint:OnDelete:SET NULL" json:"category"`
	Genres      []Genre    `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE" json:"genre"`

	// Filled by the aggregation query, never stored. Nil when the title
	// has no reviews.
	Rating *float64 `gorm:"->;-:migration" json:"rating"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (t *Title) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TitleGenre is the join row between titles and genres.
type TitleGenre struct {
	TitleID uuid.UUID `gorm:"type:uuid;primaryKey"`
	GenreID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups titles by kind (book, film, ...). Identified by slug.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Slug      string    `gorm:"size:50;not null;uniqueIndex:idx_categories_slug" json:"slug"`
	CreatedAt time.Time `json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Genre tags titles; attached many-to-many through title_genres.
type Genre struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Slug      string    `gorm:"size:50;not null;uniqueIndex:idx_genres_slug" json:"slug"`
	CreatedAt time.Time `json:"-"`
}

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products; subcategories point at a root via ParentID.
type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Slug      string     `gorm:"column:slug;not null;uniqueIndex:ux_categories_slug"`
	ImageURL  *string    `gorm:"column:image_url"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid;index:categories_parent_id_idx"`
	Children  []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/luxehome-backend/pkg/enums"
)

// Product is a catalog listing. Stock is the only column checkout mutates.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	Slug        string           `gorm:"column:slug;not null;uniqueIndex:ux_products_slug"`
	CategoryID  uuid.UUID        `gorm:"column:category_id;type:uuid;not null;index:products_category_id_idx"`
	Category    *Category        `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Description string           `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	OldPrice    *decimal.Decimal `gorm:"column:old_price;type:numeric(10,2)"`
	Material    enums.Material   `gorm:"column:material;type:varchar(20);not null;default:'other'"`
	Color       enums.Color      `gorm:"column:color;type:varchar(20);not null;default:'natural'"`
	Dimensions  string           `gorm:"column:dimensions;not null;default:''"`
	Weight      *decimal.Decimal `gorm:"column:weight;type:numeric(6,2)"`
	Stock       int              `gorm:"column:stock;not null;default:0"`
	IsFeatured  bool             `gorm:"column:is_featured;not null;default:false"`
	Images      []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// InStock reports whether at least one unit can be sold.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// DiscountPercent is the whole-number markdown from OldPrice, or 0.
func (p Product) DiscountPercent() int {
	if p.OldPrice == nil || !p.OldPrice.GreaterThan(p.Price) || p.OldPrice.IsZero() {
		return 0
	}
	off := p.OldPrice.Sub(p.Price).Div(*p.OldPrice).Mul(decimal.NewFromInt(100))
	return int(off.IntPart())
}

// PrimaryImage returns the flagged primary image, else the first by sort
// order, else "". Images must be preloaded.
func (p Product) PrimaryImage() string {
	var first *ProductImage
	for i := range p.Images {
		img := &p.Images[i]
		if img.IsPrimary {
			return img.URL
		}
		if first == nil || img.SortOrder < first.SortOrder {
			first = img
		}
	}
	if first == nil {
		return ""
	}
	return first.URL
}

// ProductImage is one gallery image of a product.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:product_images_product_id_idx"`
	URL       string    `gorm:"column:url;not null"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
}

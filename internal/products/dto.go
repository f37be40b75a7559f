package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
)

// ProductSummaryDTO is the card shown in grids and carousels.
type ProductSummaryDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Price           string    `json:"price"`
	OldPrice        *string   `json:"old_price,omitempty"`
	DiscountPercent int       `json:"discount_percent"`
	PrimaryImage    string    `json:"primary_image,omitempty"`
	Material        string    `json:"material"`
	Color           string    `json:"color"`
	Stock           int       `json:"stock"`
	InStock         bool      `json:"in_stock"`
	IsFeatured      bool      `json:"is_featured"`
}

// ProductImageDTO is one gallery entry.
type ProductImageDTO struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	IsPrimary bool      `json:"is_primary"`
	SortOrder int       `json:"sort_order"`
}

// CategoryRefDTO names the category a product belongs to.
type CategoryRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductDetailDTO is the product page payload.
type ProductDetailDTO struct {
	ProductSummaryDTO
	Description string              `json:"description"`
	Dimensions  string              `json:"dimensions"`
	Weight      *string             `json:"weight,omitempty"`
	Category    *CategoryRefDTO     `json:"category,omitempty"`
	Images      []ProductImageDTO   `json:"images"`
	Related     []ProductSummaryDTO `json:"related"`
	IsFavorite  bool                `json:"is_favorite"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CategoryDTO is a category node; only roots carry children.
type CategoryDTO struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Slug     string        `json:"slug"`
	ImageURL *string       `json:"image_url,omitempty"`
	Children []CategoryDTO `json:"children,omitempty"`
}

type BannerDTO struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Subtitle *string   `json:"subtitle,omitempty"`
	ImageURL string    `json:"image_url"`
	LinkURL  *string   `json:"link_url,omitempty"`
}

// HomeDTO aggregates the storefront landing page.
type HomeDTO struct {
	Banners     []BannerDTO         `json:"banners"`
	Categories  []CategoryDTO       `json:"categories"`
	Featured    []ProductSummaryDTO `json:"featured"`
	NewArrivals []ProductSummaryDTO `json:"new_arrivals"`
}

// Money renders a decimal amount with two fraction digits.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := Money(*d)
	return &s
}

// NewSummaryDTO builds the card view of p. Images should be preloaded.
func NewSummaryDTO(p models.Product) ProductSummaryDTO {
	return ProductSummaryDTO{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Price:           Money(p.Price),
		OldPrice:        moneyPtr(p.OldPrice),
		DiscountPercent: p.DiscountPercent(),
		PrimaryImage:    p.PrimaryImage(),
		Material:        p.Material.String(),
		Color:           p.Color.String(),
		Stock:           p.Stock,
		InStock:         p.InStock(),
		IsFeatured:      p.IsFeatured,
	}
}

func newSummaryDTOs(rows []models.Product) []ProductSummaryDTO {
	out := make([]ProductSummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewSummaryDTO(row))
	}
	return out
}

func newDetailDTO(p *models.Product, related []models.Product, isFavorite bool) *ProductDetailDTO {
	dto := &ProductDetailDTO{
		ProductSummaryDTO: NewSummaryDTO(*p),
		Description:       p.Description,
		Dimensions:        p.Dimensions,
		Weight:            moneyPtr(p.Weight),
		Images:            make([]ProductImageDTO, 0, len(p.Images)),
		Related:           newSummaryDTOs(related),
		IsFavorite:        isFavorite,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.Category != nil {
		dto.Category = &CategoryRefDTO{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug}
	}
	for _, img := range p.Images {
		dto.Images = append(dto.Images, ProductImageDTO{
			ID:        img.ID,
			URL:       img.URL,
			IsPrimary: img.IsPrimary,
			SortOrder: img.SortOrder,
		})
	}
	return dto
}

func newCategoryDTO(c models.Category) CategoryDTO {
	dto := CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug, ImageURL: c.ImageURL}
	for _, child := range c.Children {
		dto.Children = append(dto.Children, newCategoryDTO(child))
	}
	return dto
}

func newBannerDTO(b models.Banner) BannerDTO {
	return BannerDTO{ID: b.ID, Title: b.Title, Subtitle: b.Subtitle, ImageURL: b.ImageURL, LinkURL: b.LinkURL}
}

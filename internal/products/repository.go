package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/pagination"
)

// Repository is the catalog store backed by GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetByID loads the product without associations.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

// FindByIDs returns the subset of ids that still exist, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", orderImages).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// GetBySlug loads a product with its category and images.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", orderImages).
		First(&product, "slug = ?", slug).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product by slug")
	}
	return &product, nil
}

// Related lists in-stock products from the same category, excluding p.
func (r *Repository) Related(ctx context.Context, p *models.Product, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", orderImages).
		Where("category_id = ? AND id <> ? AND stock > 0", p.CategoryID, p.ID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// Featured lists in-stock featured products, newest first.
func (r *Repository) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", orderImages).
		Where("is_featured = ? AND stock > 0", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// NewArrivals lists the newest in-stock products.
func (r *Repository) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", orderImages).
		Where("stock > 0").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListQuery is a resolved catalog search.
type ListQuery struct {
	Filters ListFilters
	Page    pagination.PageRequest
}

// List returns one page of in-stock products plus the total match count.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Product, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.Product{}).Where("products.stock > 0")

	filter := query.Filters
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", pattern, pattern)
	}
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		qb = qb.Where(`products.category_id IN (
  SELECT c.id FROM categories c
  LEFT JOIN categories parent ON parent.id = c.parent_id
  WHERE c.slug = ? OR parent.slug = ?
)`, slug, slug)
	}
	if filter.MinPrice != nil {
		qb = qb.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		qb = qb.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.Material != nil {
		qb = qb.Where("products.material = ?", *filter.Material)
	}
	if filter.Color != nil {
		qb = qb.Where("products.color = ?", *filter.Color)
	}

	var total int64
	if err := qb.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page.Normalize()
	var rows []models.Product
	err := applySort(qb, filter.Sort).
		Preload("Images", orderImages).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applySort(qb *gorm.DB, sort enums.ProductSort) *gorm.DB {
	switch sort {
	case enums.ProductSortPriceAsc:
		qb = qb.Order("products.price ASC")
	case enums.ProductSortPriceDesc:
		qb = qb.Order("products.price DESC")
	case enums.ProductSortName:
		qb = qb.Order("products.name ASC")
	default:
		qb = qb.Order("products.created_at DESC")
	}
	return qb.Order("products.id ASC")
}

// DecrementStock removes qty units from the product only if enough remain.
// It reports CodeInsufficientStock when the guarded update matches no row.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"product_id": id, "requested": qty})
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock to complete the order").
			WithDetails(map[string]any{"product_id": id, "requested": qty})
	}
	return nil
}

// Update persists the admin-editable columns of p.
func (r *Repository) Update(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).
		Model(p).
		Select("price", "old_price", "stock", "is_featured", "updated_at").
		Updates(p).
		Error
}

// RootCategories lists top-level categories with their children, by name.
func (r *Repository) RootCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// ActiveBanners lists the banners shown on the home page.
func (r *Repository) ActiveBanners(ctx context.Context) ([]models.Banner, error) {
	var rows []models.Banner
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("is_primary DESC").Order("sort_order ASC")
}

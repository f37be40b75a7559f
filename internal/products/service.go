package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
)

const (
	relatedLimit = 4
	homeRowLimit = 8
)

// Service exposes catalog browsing and admin edits.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Detail(ctx context.Context, slug string, viewer *uuid.UUID) (*ProductDetailDTO, error)
	Home(ctx context.Context) (*HomeDTO, error)
	Categories(ctx context.Context) ([]CategoryDTO, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductSummaryDTO, error)
}

// UpdateInput holds optional admin mutations. ClearOldPrice removes the
// markdown and wins over OldPrice.
type UpdateInput struct {
	Price         *decimal.Decimal
	OldPrice      *decimal.Decimal
	ClearOldPrice bool
	Stock         *int
	IsFeatured    *bool
}

type favoriteChecker interface {
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type service struct {
	repo      *Repository
	favorites favoriteChecker
	logg      *logger.Logger
}

// NewService constructs the catalog service. favorites may be nil, in which
// case is_favorite is always false.
func NewService(repo *Repository, favorites favoriteChecker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, favorites: favorites, logg: logg}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	filters := input.Filters
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MinPrice.GreaterThan(*filters.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price cannot exceed max_price")
	}
	page := input.Page.Normalize()
	rows, total, err := s.repo.List(ctx, ListQuery{Filters: filters, Page: page})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ListResult{Items: newSummaryDTOs(rows), Page: page.Info(total)}, nil
}

func (s *service) Detail(ctx context.Context, slug string, viewer *uuid.UUID) (*ProductDetailDTO, error) {
	product, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	related, err := s.repo.Related(ctx, product, relatedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list related products")
	}

	isFavorite := false
	if viewer != nil && s.favorites != nil {
		isFavorite, err = s.favorites.IsFavorite(ctx, *viewer, product.ID)
		if err != nil {
			// the product page still renders without the heart state
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "product_id", product.ID.String()), "favorite lookup failed: "+err.Error())
			}
			isFavorite = false
		}
	}
	return newDetailDTO(product, related, isFavorite), nil
}

func (s *service) Home(ctx context.Context) (*HomeDTO, error) {
	banners, err := s.repo.ActiveBanners(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list banners")
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	featured, err := s.repo.Featured(ctx, homeRowLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}
	arrivals, err := s.repo.NewArrivals(ctx, homeRowLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list new arrivals")
	}

	home := &HomeDTO{
		Banners:     make([]BannerDTO, 0, len(banners)),
		Categories:  categories,
		Featured:    newSummaryDTOs(featured),
		NewArrivals: newSummaryDTOs(arrivals),
	}
	for _, b := range banners {
		home.Banners = append(home.Banners, newBannerDTO(b))
	}
	return home, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryDTO, error) {
	roots, err := s.repo.RootCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(roots))
	for _, root := range roots {
		out = append(out, newCategoryDTO(root))
	}
	return out, nil
}

func (s *service) AdminUpdate(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductSummaryDTO, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
		}
		product.Price = input.Price.Round(2)
	}
	switch {
	case input.ClearOldPrice:
		product.OldPrice = nil
	case input.OldPrice != nil:
		if input.OldPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "old_price cannot be negative")
		}
		rounded := input.OldPrice.Round(2)
		product.OldPrice = &rounded
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"product_id": product.ID.String(),
			"price":      Money(product.Price),
			"stock":      product.Stock,
		}), "product updated")
	}
	summary := NewSummaryDTO(*product)
	return &summary, nil
}

package favorites

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	product "github.com/angelmondragon/luxehome-backend/internal/products"
	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/pagination"
	"github.com/angelmondragon/luxehome-backend/pkg/types"
)

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the favorites rules.
type Service interface {
	Toggle(ctx context.Context, userID, productID uuid.UUID) (ToggleResult, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (types.Page[ItemDTO], error)
	IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type service struct {
	repo     *Repository
	products productLoader
}

// NewService builds a favorites service with the required dependencies.
func NewService(repo *Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("favorites repo is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repo is required")
	}
	return &service{repo: repo, products: products}, nil
}

// Toggle removes an existing like or adds a new one.
func (s *service) Toggle(ctx context.Context, userID, productID uuid.UUID) (ToggleResult, error) {
	if userID == uuid.Nil {
		return ToggleResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return ToggleResult{}, err
	}

	removed, err := s.repo.Remove(ctx, userID, productID)
	if err != nil {
		return ToggleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	if removed {
		return ToggleResult{Status: StatusRemoved}, nil
	}
	if err := s.repo.Add(ctx, userID, productID); err != nil {
		return ToggleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add favorite")
	}
	return ToggleResult{Status: StatusAdded}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (types.Page[ItemDTO], error) {
	rows, next, err := s.repo.List(ctx, userID, params)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return types.Page[ItemDTO]{}, err
		}
		return types.Page[ItemDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		if row.Product == nil {
			continue
		}
		items = append(items, ItemDTO{Product: product.NewSummaryDTO(*row.Product), CreatedAt: row.CreatedAt})
	}
	return types.Page[ItemDTO]{Items: items, NextCursor: next}, nil
}

func (s *service) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, userID, productID)
}

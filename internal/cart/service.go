package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
	"github.com/angelmondragon/luxehome-backend/pkg/metrics"
)

// ProductReader is the slice of the catalog the cart needs.
type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// View is a materialized cart ready for display or checkout.
type View struct {
	Items []Item
	Total decimal.Decimal
	Count int
}

// IsEmpty reports whether nothing in the cart resolved to a live product.
func (v View) IsEmpty() bool {
	return len(v.Items) == 0
}

// Resolve loads every product referenced by c through reader and
// materializes the cart. Count only includes resolved lines.
func Resolve(ctx context.Context, reader ProductReader, c Cart) (View, error) {
	if c.IsEmpty() {
		return View{Total: decimal.Zero}, nil
	}
	catalog, err := reader.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return View{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	view := View{Total: decimal.Zero}
	for item := range c.Materialize(catalog) {
		view.Items = append(view.Items, item)
		view.Total = view.Total.Add(item.Subtotal)
		view.Count += item.Quantity
	}
	return view, nil
}

type ServiceParams struct {
	Store    Store
	Products ProductReader
	MaxLines int
	Metrics  *metrics.Storefront
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service applies cart mutations for a session and writes the whole cart back.
type Service struct {
	store    Store
	products ProductReader
	maxLines int
	metrics  *metrics.Storefront
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    params.Store,
		products: params.Products,
		maxLines: params.MaxLines,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Add puts qty units of productID in the session cart and returns the new
// unit count. Quantities above stock are capped without error.
func (s *Service) Add(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (int, error) {
	if err := requireSession(sessionID); err != nil {
		return 0, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if s.maxLines > 0 && !c.Has(productID) && c.Len() >= s.maxLines {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "cart cannot hold more than %d different products", s.maxLines)
	}
	if err := c.Add(*product, qty, s.now()); err != nil {
		return 0, err
	}
	if err := s.save(ctx, sessionID, c); err != nil {
		return 0, err
	}
	s.metrics.CartMutation("add")
	return c.Count(), nil
}

// Update sets the quantity of an existing line. Zero or negative removes the
// line; an id not in the cart is ignored.
func (s *Service) Update(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (int, error) {
	if err := requireSession(sessionID); err != nil {
		return 0, err
	}
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if !c.Has(productID) {
		return c.Count(), nil
	}
	if qty <= 0 {
		c.Remove(productID)
	} else {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return 0, err
		}
		c.SetQuantity(*product, qty)
	}
	if err := s.save(ctx, sessionID, c); err != nil {
		return 0, err
	}
	s.metrics.CartMutation("update")
	return c.Count(), nil
}

// Remove drops productID from the cart. Absent ids are a no-op.
func (s *Service) Remove(ctx context.Context, sessionID string, productID uuid.UUID) (int, error) {
	if err := requireSession(sessionID); err != nil {
		return 0, err
	}
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if !c.Has(productID) {
		return c.Count(), nil
	}
	c.Remove(productID)
	if err := s.save(ctx, sessionID, c); err != nil {
		return 0, err
	}
	s.metrics.CartMutation("remove")
	return c.Count(), nil
}

// View materializes the session cart against the live catalog.
func (s *Service) View(ctx context.Context, sessionID string) (View, error) {
	if err := requireSession(sessionID); err != nil {
		return View{}, err
	}
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return Resolve(ctx, s.products, c)
}

// Count is the number of units stored in the cart, dangling lines included.
func (s *Service) Count(ctx context.Context, sessionID string) (int, error) {
	if strings.TrimSpace(sessionID) == "" {
		return 0, nil
	}
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

// Load returns the raw stored cart.
func (s *Service) Load(ctx context.Context, sessionID string) (Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return Cart{}, err
	}
	return s.load(ctx, sessionID)
}

// Clear empties the session cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.metrics.CartMutation("clear")
	return nil
}

func (s *Service) load(ctx context.Context, sessionID string) (Cart, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, sessionID string, c Cart) error {
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithSessionID(ctx, sessionID), map[string]any{
			"cart_lines": c.Len(),
			"cart_units": c.Count(),
		})
		s.logg.Debug(logCtx, "cart saved")
	}
	return nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}
	return nil
}

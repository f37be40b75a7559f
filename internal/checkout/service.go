package checkout

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/luxehome-backend/internal/cart"
	"github.com/angelmondragon/luxehome-backend/internal/notifications"
	"github.com/angelmondragon/luxehome-backend/internal/orders"
	product "github.com/angelmondragon/luxehome-backend/internal/products"
	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
	"github.com/angelmondragon/luxehome-backend/pkg/metrics"
	"github.com/angelmondragon/luxehome-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartSource interface {
	Load(ctx context.Context, sessionID string) (cart.Cart, error)
	View(ctx context.Context, sessionID string) (cart.View, error)
	Clear(ctx context.Context, sessionID string) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type sessionOrders interface {
	AddSessionOrder(ctx context.Context, sessionID, orderID string, ttl time.Duration) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// stockCatalog is the catalog as seen from inside the order transaction.
type stockCatalog interface {
	cart.ProductReader
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

// Input is a checkout submission.
type Input struct {
	SessionID string
	UserID    *uuid.UUID
	Customer  Customer
}

// Service runs the review and place-order steps of checkout.
type Service interface {
	Review(ctx context.Context, sessionID string, userID *uuid.UUID) (*Review, error)
	PlaceOrder(ctx context.Context, input Input) (*Result, error)
}

type ServiceParams struct {
	Tx         txRunner
	Cart       cartSource
	Products   *product.Repository
	Orders     *orders.Repository
	Users      userLoader
	Sessions   sessionOrders
	Outbox     outboxPublisher
	Notifier   notifications.OrderNotifier
	SessionTTL time.Duration
	Metrics    *metrics.Storefront
	Logger     *logger.Logger
}

type service struct {
	tx         txRunner
	cart       cartSource
	catalogFor func(tx *gorm.DB) stockCatalog
	orders     *orders.Repository
	users      userLoader
	sessions   sessionOrders
	outbox     outboxPublisher
	notifier   notifications.OrderNotifier
	sessionTTL time.Duration
	metrics    *metrics.Storefront
	logg       *logger.Logger
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("order notifier required")
	}
	products := params.Products
	return &service{
		tx:         params.Tx,
		cart:       params.Cart,
		catalogFor: func(tx *gorm.DB) stockCatalog { return products.WithTx(tx) },
		orders:     params.Orders,
		users:      params.Users,
		sessions:   params.Sessions,
		outbox:     params.Outbox,
		notifier:   params.Notifier,
		sessionTTL: params.SessionTTL,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// Review materializes the cart and pre-fills delivery details from the
// shopper's profile when logged in.
func (s *service) Review(ctx context.Context, sessionID string, userID *uuid.UUID) (*Review, error) {
	view, err := s.cart.View(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if view.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "your cart is empty")
	}

	review := &Review{
		Items: NewLineDTOs(view.Items),
		Total: product.Money(view.Total),
		Count: view.Count,
	}
	if userID != nil && s.users != nil {
		user, err := s.users.FindByID(ctx, *userID)
		switch {
		case err == nil:
			review.Customer = prefill(user)
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			s.warn(ctx, "checkout prefill failed", err)
		}
	}
	return review, nil
}

// PlaceOrder validates the delivery details and converts the session cart
// into an order. Order rows, stock decrements and the outbox event commit
// together; the cart is cleared and staff notified only after commit.
func (s *service) PlaceOrder(ctx context.Context, input Input) (*Result, error) {
	stored, err := s.cart.Load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if stored.IsEmpty() {
		s.metrics.Checkout(metrics.CheckoutEmptyCart)
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "your cart is empty")
	}

	customer := input.Customer.Normalize()
	if err := customer.Validate(); err != nil {
		s.metrics.Checkout(metrics.CheckoutInvalid)
		return nil, s.invalidCheckout(ctx, input.SessionID, customer, err)
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalog := s.catalogFor(tx)
		view, err := cart.Resolve(ctx, catalog, stored)
		if err != nil {
			return err
		}
		if view.IsEmpty() {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "your cart is empty")
		}

		order = newOrder(input.UserID, customer, view)
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		// Lock rows in id order so concurrent checkouts cannot deadlock.
		lines := slices.Clone(view.Items)
		slices.SortFunc(lines, func(a, b cart.Item) int {
			return cmp.Compare(a.Product.ID.String(), b.Product.ID.String())
		})
		for _, line := range lines {
			if err := catalog.DecrementStock(ctx, line.Product.ID, line.Quantity); err != nil {
				return err
			}
		}

		return s.outbox.Emit(ctx, tx, placedEvent(order))
	})
	if err != nil {
		s.metrics.Checkout(failureOutcome(err))
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
		}
		return nil, err
	}

	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithOrderID(s.logg.WithSessionID(ctx, input.SessionID), order.ID.String())
	}
	if err := s.cart.Clear(ctx, input.SessionID); err != nil {
		s.warn(logCtx, "checkout cart clear failed", err)
	}
	if s.sessions != nil {
		if err := s.sessions.AddSessionOrder(ctx, input.SessionID, order.ID.String(), s.sessionTTL); err != nil {
			s.warn(logCtx, "checkout session order record failed", err)
		}
	}
	notified := s.notifier.NotifyOrderPlaced(ctx, order)

	s.metrics.Checkout(metrics.CheckoutPlaced)
	s.metrics.OrderPlaced(order.TotalPrice)
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
			"total":    order.TotalPrice.StringFixed(2),
			"items":    len(order.Items),
			"notified": notified,
		}), "checkout.completed")
	}
	return &Result{OrderID: order.ID, Total: order.TotalPrice.StringFixed(2), Notified: notified}, nil
}

// invalidCheckout attaches the submitted details and the current cart to a
// field validation error so the client can redraw the review page.
func (s *service) invalidCheckout(ctx context.Context, sessionID string, customer Customer, err error) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	details := InvalidCheckout{}
	details.Fields, _ = typed.Details().(map[string]string)

	view, viewErr := s.cart.View(ctx, sessionID)
	if viewErr != nil {
		s.warn(ctx, "checkout review reload failed", viewErr)
	} else {
		details.Review = &Review{
			Items:    NewLineDTOs(view.Items),
			Total:    product.Money(view.Total),
			Count:    view.Count,
			Customer: customer,
		}
	}
	return pkgerrors.New(typed.Code(), typed.Message()).WithDetails(details)
}

func newOrder(userID *uuid.UUID, customer Customer, view cart.View) *models.Order {
	order := &models.Order{
		ID:         uuid.New(),
		UserID:     userID,
		FullName:   customer.FullName,
		Phone:      customer.Phone,
		Address:    customer.Address,
		City:       customer.City,
		Note:       customer.Note,
		TotalPrice: view.Total,
		Status:     enums.OrderStatusPending,
		Items:      make([]models.OrderItem, 0, len(view.Items)),
	}
	for _, item := range view.Items {
		productID := item.Product.ID
		order.Items = append(order.Items, models.OrderItem{
			OrderID:     order.ID,
			ProductID:   &productID,
			ProductName: item.Product.Name,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
	}
	return order
}

func placedEvent(order *models.Order) outbox.DomainEvent {
	items := make([]outbox.OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, outbox.OrderPlacedItem{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
	}
	var actor *outbox.ActorRef
	if order.UserID != nil {
		actor = &outbox.ActorRef{UserID: order.UserID, Role: enums.UserRoleCustomer.String()}
	}
	return outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: outbox.OrderPlacedEvent{
			OrderID: order.ID,
			UserID:  order.UserID,
			City:    order.City,
			Total:   order.TotalPrice.StringFixed(2),
			Items:   items,
		},
	}
}

func failureOutcome(err error) string {
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart):
		return metrics.CheckoutEmptyCart
	case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock):
		return metrics.CheckoutInsufficientStock
	default:
		return metrics.CheckoutError
	}
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
	"github.com/angelmondragon/luxehome-backend/pkg/metrics"
	"github.com/angelmondragon/luxehome-backend/pkg/outbox"
	"github.com/angelmondragon/luxehome-backend/pkg/pagination"
	"github.com/angelmondragon/luxehome-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SessionOrders answers whether a storefront session placed an order.
type SessionOrders interface {
	HasSessionOrder(ctx context.Context, sessionID, orderID string) (bool, error)
}

// Viewer is whoever asks to see an order. Anonymous shoppers only have a
// session id.
type Viewer struct {
	SessionID string
	UserID    *uuid.UUID
	Role      enums.UserRole
}

// Service exposes order projections and staff status updates.
type Service interface {
	Success(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error)
	History(ctx context.Context, userID uuid.UUID, params pagination.Params) (types.Page[OrderDTO], error)
	AdminList(ctx context.Context, filters ListFilters, params pagination.Params) (types.Page[OrderDTO], error)
	UpdateStatus(ctx context.Context, actor Viewer, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
}

type ServiceParams struct {
	Tx       txRunner
	Repo     *Repository
	Sessions SessionOrders
	Outbox   outboxPublisher
	Metrics  *metrics.Storefront
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	tx       txRunner
	repo     *Repository
	sessions SessionOrders
	outbox   outboxPublisher
	metrics  *metrics.Storefront
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session order store required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:       params.Tx,
		repo:     params.Repo,
		sessions: params.Sessions,
		outbox:   params.Outbox,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Success returns the confirmation view of an order. It is visible to the
// session that placed it, its owner and staff; everyone else gets not found.
func (s *service) Success(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, wrapRepoErr(err, "load order")
	}
	allowed, err := s.canView(ctx, viewer, order)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) canView(ctx context.Context, viewer Viewer, order *models.Order) (bool, error) {
	if viewer.Role == enums.UserRoleAdmin {
		return true, nil
	}
	if viewer.UserID != nil && order.UserID != nil && *viewer.UserID == *order.UserID {
		return true, nil
	}
	if viewer.SessionID == "" {
		return false, nil
	}
	placed, err := s.sessions.HasSessionOrder(ctx, viewer.SessionID, order.ID.String())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check session orders")
	}
	return placed, nil
}

// History lists the user's own orders, newest first.
func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params) (types.Page[OrderDTO], error) {
	if userID == uuid.Nil {
		return types.Page[OrderDTO]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	rows, next, err := s.repo.List(ctx, ListFilters{UserID: &userID}, params)
	if err != nil {
		return types.Page[OrderDTO]{}, wrapRepoErr(err, "list orders")
	}
	return types.Page[OrderDTO]{Items: fromModels(rows), NextCursor: next}, nil
}

// AdminList lists every order matching filters, newest first.
func (s *service) AdminList(ctx context.Context, filters ListFilters, params pagination.Params) (types.Page[OrderDTO], error) {
	filters.UserID = nil
	rows, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return types.Page[OrderDTO]{}, wrapRepoErr(err, "list orders")
	}
	return types.Page[OrderDTO]{Items: fromModels(rows), NextCursor: next}, nil
}

// UpdateStatus moves an order along its workflow and queues an
// order_status_changed event in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, actor Viewer, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %q", status)
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		from := order.Status
		if !from.CanTransitionTo(status) {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order cannot move from %s to %s", from, status).
				WithDetails(map[string]any{"from": from, "to": status})
		}
		ok, err := repo.UpdateStatus(ctx, orderID, from, status)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
		}

		changedAt := s.now().UTC()
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: outbox.OrderStatusChangedEvent{
				OrderID:   orderID,
				From:      from,
				To:        status,
				ChangedAt: changedAt,
			},
			OccurredAt: changedAt,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, wrapRepoErr(err, "update order status")
	}

	s.metrics.StatusChanged(status.String())
	if s.logg != nil {
		logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, orderID.String()), "status", status)
		s.logg.Info(logCtx, "order.status_changed")
	}
	dto := FromModel(*updated)
	return &dto, nil
}

func wrapRepoErr(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/luxehome-backend/api/middleware"
	"github.com/angelmondragon/luxehome-backend/api/responses"
	"github.com/angelmondragon/luxehome-backend/api/validators"
	"github.com/angelmondragon/luxehome-backend/internal/cart"
	"github.com/angelmondragon/luxehome-backend/internal/checkout"
	product "github.com/angelmondragon/luxehome-backend/internal/products"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
)

// CartService is the session cart surface used by the handlers.
type CartService interface {
	Add(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (int, error)
	Update(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (int, error)
	Remove(ctx context.Context, sessionID string, productID uuid.UUID) (int, error)
	View(ctx context.Context, sessionID string) (cart.View, error)
	Count(ctx context.Context, sessionID string) (int, error)
}

type cartResponse struct {
	Items []checkout.LineDTO `json:"items"`
	Total string             `json:"total"`
	Count int                `json:"count"`
}

func newCartResponse(view cart.View) cartResponse {
	return cartResponse{
		Items: checkout.NewLineDTOs(view.Items),
		Total: product.Money(view.Total),
		Count: view.Count,
	}
}

type cartCountResponse struct {
	Count int `json:"count"`
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  *int      `json:"quantity" validate:"omitempty,min=1,max=10000"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=10000"`
}

func CartView(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sid, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.View(r.Context(), sid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartCount feeds the navbar badge. It never creates a session.
func CartCount(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		count, err := svc.Count(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartCountResponse{Count: count})
	}
}

// CartAdd adds a product; quantity defaults to one and is capped at stock.
func CartAdd(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sid, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := 1
		if body.Quantity != nil {
			qty = *body.Quantity
		}

		count, err := svc.Add(r.Context(), sid, body.ProductID, qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartCountResponse{Count: count})
	}
}

// CartUpdate sets a line's quantity; zero or less removes it.
func CartUpdate(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sid, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.Update(r.Context(), sid, productID, *body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartCountResponse{Count: count})
	}
}

func CartRemove(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		sid, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.Remove(r.Context(), sid, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartCountResponse{Count: count})
	}
}

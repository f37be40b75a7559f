package controllers

import (
	"net/http"

	"github.com/angelmondragon/luxehome-backend/api/middleware"
	"github.com/angelmondragon/luxehome-backend/api/responses"
	"github.com/angelmondragon/luxehome-backend/api/validators"
	"github.com/angelmondragon/luxehome-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
)

// CheckoutReview returns the materialized cart with delivery fields
// pre-filled from the signed-in profile.
func CheckoutReview(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sid, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, _ := middleware.ActorFromContext(r.Context())

		review, err := svc.Review(r.Context(), sid, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}

// CheckoutPlace submits the cart as a cash-on-delivery order.
func CheckoutPlace(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		sid, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// PlaceOrder trims and validates the delivery fields.
		var body checkout.Customer
		if err := validators.DecodeJSON(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, _ := middleware.ActorFromContext(r.Context())

		result, err := svc.PlaceOrder(r.Context(), checkout.Input{
			SessionID: sid,
			UserID:    userID,
			Customer:  body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

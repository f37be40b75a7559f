package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/luxehome-backend/api/middleware"
	"github.com/angelmondragon/luxehome-backend/api/responses"
	"github.com/angelmondragon/luxehome-backend/api/validators"
	product "github.com/angelmondragon/luxehome-backend/internal/products"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/logger"
)

func CatalogHome(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		home, err := svc.Home(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, home)
	}
}

func CatalogCategories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// ProductList serves the filtered, paginated in-stock catalog.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseListInput(r *http.Request) (product.ListInput, error) {
	q := r.URL.Query()
	filters := product.ListFilters{
		Query:        validators.SanitizeString(q.Get("q"), 200),
		CategorySlug: validators.SanitizeString(q.Get("category"), 200),
		Sort:         enums.ParseProductSort(strings.TrimSpace(q.Get("sort"))),
	}

	var err error
	if filters.MinPrice, err = validators.ParseQueryDecimal(r, "min_price"); err != nil {
		return product.ListInput{}, err
	}
	if filters.MaxPrice, err = validators.ParseQueryDecimal(r, "max_price"); err != nil {
		return product.ListInput{}, err
	}
	if raw := strings.TrimSpace(q.Get("material")); raw != "" {
		material, err := enums.ParseMaterial(raw)
		if err != nil {
			return product.ListInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid material").WithDetails(map[string]any{"field": "material"})
		}
		filters.Material = &material
	}
	if raw := strings.TrimSpace(q.Get("color")); raw != "" {
		color, err := enums.ParseColor(raw)
		if err != nil {
			return product.ListInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid color").WithDetails(map[string]any{"field": "color"})
		}
		filters.Color = &color
	}

	page, err := validators.ParsePageRequest(r)
	if err != nil {
		return product.ListInput{}, err
	}
	return product.ListInput{Filters: filters, Page: page}, nil
}

func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}
		viewer, _ := middleware.ActorFromContext(r.Context())

		detail, err := svc.Detail(r.Context(), slug, viewer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type adminProductRequest struct {
	Price         *decimal.Decimal `json:"price"`
	OldPrice      *decimal.Decimal `json:"old_price"`
	ClearOldPrice bool             `json:"clear_old_price"`
	Stock         *int             `json:"stock" validate:"omitempty,min=0"`
	IsFeatured    *bool            `json:"is_featured"`
}

func (r adminProductRequest) toInput() (product.UpdateInput, error) {
	if r.Price != nil && !r.Price.IsPositive() {
		return product.UpdateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive").WithDetails(map[string]string{"price": "must be positive"})
	}
	if r.OldPrice != nil && !r.OldPrice.IsPositive() {
		return product.UpdateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "old_price must be positive").WithDetails(map[string]string{"old_price": "must be positive"})
	}
	return product.UpdateInput{
		Price:         r.Price,
		OldPrice:      r.OldPrice,
		ClearOldPrice: r.ClearOldPrice,
		Stock:         r.Stock,
		IsFeatured:    r.IsFeatured,
	}, nil
}

// AdminProductUpdate edits price, markdown, stock or the featured flag.
func AdminProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adminProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.AdminUpdate(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

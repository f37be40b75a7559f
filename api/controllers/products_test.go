package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	product "github.com/angelmondragon/luxehome-backend/internal/products"
	"github.com/angelmondragon/luxehome-backend/pkg/config"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
)

type stubCatalog struct {
	listFn   func(input product.ListInput) (*product.ListResult, error)
	detailFn func(slug string, viewer *uuid.UUID) (*product.ProductDetailDTO, error)
	updateFn func(id uuid.UUID, input product.UpdateInput) (*product.ProductSummaryDTO, error)
}

func (s stubCatalog) List(_ context.Context, input product.ListInput) (*product.ListResult, error) {
	return s.listFn(input)
}

func (s stubCatalog) Detail(_ context.Context, slug string, viewer *uuid.UUID) (*product.ProductDetailDTO, error) {
	return s.detailFn(slug, viewer)
}

func (s stubCatalog) Home(context.Context) (*product.HomeDTO, error) {
	return &product.HomeDTO{}, nil
}

func (s stubCatalog) Categories(context.Context) ([]product.CategoryDTO, error) {
	return []product.CategoryDTO{}, nil
}

func (s stubCatalog) AdminUpdate(_ context.Context, id uuid.UUID, input product.UpdateInput) (*product.ProductSummaryDTO, error) {
	return s.updateFn(id, input)
}

func TestProductListParsesFilters(t *testing.T) {
	svc := stubCatalog{listFn: func(input product.ListInput) (*product.ListResult, error) {
		f := input.Filters
		assert.Equal(t, "oak", f.Query)
		assert.Equal(t, "living-room", f.CategorySlug)
		require.NotNil(t, f.MinPrice)
		assert.Equal(t, "100", f.MinPrice.String())
		assert.Nil(t, f.MaxPrice)
		require.NotNil(t, f.Material)
		assert.Equal(t, enums.MaterialWood, *f.Material)
		assert.Nil(t, f.Color)
		assert.Equal(t, enums.ProductSortPriceAsc, f.Sort)
		assert.Equal(t, 2, input.Page.Page)
		return &product.ListResult{Items: []product.ProductSummaryDTO{}}, nil
	}}

	req := newRequest(http.MethodGet, "/products?q=oak&category=living-room&min_price=100&material=wood&sort=price_asc&page=2", "")
	resp := serve(ProductList(svc, testLogger()), req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestProductListRejectsUnknownColor(t *testing.T) {
	resp := serve(ProductList(stubCatalog{}, testLogger()), newRequest(http.MethodGet, "/products?color=ultraviolet", ""))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProductDetailPassesViewer(t *testing.T) {
	userID := uuid.New()
	svc := stubCatalog{detailFn: func(slug string, viewer *uuid.UUID) (*product.ProductDetailDTO, error) {
		assert.Equal(t, "oak-table", slug)
		require.NotNil(t, viewer)
		assert.Equal(t, userID, *viewer)
		return &product.ProductDetailDTO{}, nil
	}}
	req := withURLParam(withUser(newRequest(http.MethodGet, "/", ""), userID, enums.UserRoleCustomer), "slug", "oak-table")
	resp := serve(ProductDetail(svc, testLogger()), req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAdminProductUpdate(t *testing.T) {
	productID := uuid.New()
	svc := stubCatalog{updateFn: func(id uuid.UUID, input product.UpdateInput) (*product.ProductSummaryDTO, error) {
		assert.Equal(t, productID, id)
		require.NotNil(t, input.Price)
		assert.Equal(t, "399.99", input.Price.StringFixed(2))
		require.NotNil(t, input.Stock)
		assert.Equal(t, 7, *input.Stock)
		assert.True(t, input.ClearOldPrice)
		return &product.ProductSummaryDTO{ID: id, Price: "399.99"}, nil
	}}

	call := func(body string) int {
		req := withURLParam(newRequest(http.MethodPatch, "/", body), "productId", productID.String())
		return serve(AdminProductUpdate(svc, testLogger()), req).Code
	}
	assert.Equal(t, http.StatusOK, call(`{"price":"399.99","stock":7,"clear_old_price":true}`))
	assert.Equal(t, http.StatusBadRequest, call(`{"stock":-1}`))
	assert.Equal(t, http.StatusBadRequest, call(`{"price":"0"}`))
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	ok := serve(HealthReady(cfg, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}, testLogger()), newRequest(http.MethodGet, "/health/ready", ""))
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "test", ok.Header().Get("X-LuxeHome-Env"))

	down := serve(HealthReady(cfg, map[string]Pinger{"redis": stubPinger{err: errors.New("dial tcp: refused")}}, testLogger()), newRequest(http.MethodGet, "/health/ready", ""))
	assert.Equal(t, http.StatusServiceUnavailable, down.Code)
	assert.Equal(t, "redis", decodeError(t, down).Details.(map[string]any)["dependency"])
}

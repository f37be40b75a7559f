package product

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/luxehome-backend/pkg/db/dbtest"
	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
)

type stubFavorites struct {
	liked map[uuid.UUID]bool
	err   error
}

func (s stubFavorites) IsFavorite(_ context.Context, _ uuid.UUID, productID uuid.UUID) (bool, error) {
	return s.liked[productID], s.err
}

func TestDetailIncludesImagesRelatedAndFavorite(t *testing.T) {
	conn := dbtest.Open(t, "products_svc")
	cat := mustCreateCategory(t, conn, "Sofas", "sofas", nil)
	oldPrice := decimal.RequireFromString("500.00")
	sofa := mustCreateProduct(t, conn, cat, "Sofa", "449.99", func(p *models.Product) { p.OldPrice = &oldPrice })
	mustCreateProduct(t, conn, cat, "Loveseat", "299.00")
	require.NoError(t, conn.Create(&[]models.ProductImage{
		{ProductID: sofa.ID, URL: "https://img/second.jpg", SortOrder: 2},
		{ProductID: sofa.ID, URL: "https://img/primary.jpg", IsPrimary: true, SortOrder: 5},
	}).Error)

	svc, err := NewService(NewRepository(conn), stubFavorites{liked: map[uuid.UUID]bool{sofa.ID: true}}, nil)
	require.NoError(t, err)

	viewer := uuid.New()
	detail, err := svc.Detail(context.Background(), sofa.Slug, &viewer)
	require.NoError(t, err)
	assert.Equal(t, "449.99", detail.Price)
	assert.Equal(t, 10, detail.DiscountPercent)
	assert.Equal(t, "https://img/primary.jpg", detail.PrimaryImage)
	assert.Len(t, detail.Images, 2)
	assert.Len(t, detail.Related, 1)
	assert.True(t, detail.IsFavorite)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "sofas", detail.Category.Slug)

	anon, err := svc.Detail(context.Background(), sofa.Slug, nil)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorite)
}

func TestDetailSurvivesFavoriteLookupFailure(t *testing.T) {
	conn := dbtest.Open(t, "products_svc")
	cat := mustCreateCategory(t, conn, "Lamps", "lamps", nil)
	lamp := mustCreateProduct(t, conn, cat, "Lamp", "40.00")

	svc, err := NewService(NewRepository(conn), stubFavorites{err: errors.New("boom")}, nil)
	require.NoError(t, err)
	viewer := uuid.New()
	detail, err := svc.Detail(context.Background(), lamp.Slug, &viewer)
	require.NoError(t, err)
	assert.False(t, detail.IsFavorite)

	_, err = svc.Detail(context.Background(), "missing", nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListRejectsInvertedPriceRange(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t, "products_svc")), nil, nil)
	require.NoError(t, err)
	lo := decimal.RequireFromString("500")
	hi := decimal.RequireFromString("100")
	_, err = svc.List(context.Background(), ListInput{Filters: ListFilters{MinPrice: &lo, MaxPrice: &hi}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListPageInfo(t *testing.T) {
	conn := dbtest.Open(t, "products_svc")
	cat := mustCreateCategory(t, conn, "Chairs", "chairs", nil)
	for range 13 {
		mustCreateProduct(t, conn, cat, "Chair", "59.90")
	}
	svc, err := NewService(NewRepository(conn), nil, nil)
	require.NoError(t, err)

	res, err := svc.List(context.Background(), ListInput{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 12)
	assert.Equal(t, int64(13), res.Page.Total)
	assert.Equal(t, 2, res.Page.TotalPages)
	assert.True(t, res.Page.HasNext)
}

func TestHomeAggregatesSections(t *testing.T) {
	conn := dbtest.Open(t, "products_svc")
	living := mustCreateCategory(t, conn, "Living Room", "living-room", nil)
	mustCreateCategory(t, conn, "Sofas", "sofas", living)
	mustCreateCategory(t, conn, "Armchairs", "armchairs", living)
	mustCreateProduct(t, conn, living, "Sofa", "449.99", featured())
	require.NoError(t, conn.Create(&[]models.Banner{
		{Title: "Second", ImageURL: "b2.jpg", IsActive: true, SortOrder: 2},
		{Title: "First", ImageURL: "b1.jpg", IsActive: true, SortOrder: 1},
	}).Error)
	hidden := models.Banner{Title: "Hidden", ImageURL: "b3.jpg", IsActive: true}
	require.NoError(t, conn.Create(&hidden).Error)
	require.NoError(t, conn.Model(&hidden).Update("is_active", false).Error)

	svc, err := NewService(NewRepository(conn), nil, nil)
	require.NoError(t, err)
	home, err := svc.Home(context.Background())
	require.NoError(t, err)

	require.Len(t, home.Banners, 2)
	assert.Equal(t, "First", home.Banners[0].Title)
	require.Len(t, home.Categories, 1)
	require.Len(t, home.Categories[0].Children, 2)
	assert.Equal(t, "armchairs", home.Categories[0].Children[0].Slug)
	assert.Len(t, home.Featured, 1)
	assert.Len(t, home.NewArrivals, 1)
}

func TestAdminUpdate(t *testing.T) {
	conn := dbtest.Open(t, "products_svc")
	cat := mustCreateCategory(t, conn, "Desks", "desks", nil)
	desk := mustCreateProduct(t, conn, cat, "Desk", "300.00")
	svc, err := NewService(NewRepository(conn), nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	price := decimal.RequireFromString("250.00")
	old := decimal.RequireFromString("300.00")
	stock := 0
	flag := true
	out, err := svc.AdminUpdate(ctx, desk.ID, UpdateInput{Price: &price, OldPrice: &old, Stock: &stock, IsFeatured: &flag})
	require.NoError(t, err)
	assert.Equal(t, "250.00", out.Price)
	assert.Equal(t, 16, out.DiscountPercent)
	assert.False(t, out.InStock)
	assert.True(t, out.IsFeatured)

	var stored models.Product
	require.NoError(t, conn.First(&stored, "id = ?", desk.ID).Error)
	assert.Equal(t, 0, stored.Stock)
	assert.True(t, stored.IsFeatured)

	negative := -1
	_, err = svc.AdminUpdate(ctx, desk.ID, UpdateInput{Stock: &negative})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.AdminUpdate(ctx, uuid.New(), UpdateInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

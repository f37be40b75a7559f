package product

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/luxehome-backend/pkg/db/dbtest"
	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/pagination"
)

var baseTime = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func mustCreateCategory(t *testing.T, tx *gorm.DB, name, slug string, parent *models.Category) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: slug}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	if err := tx.Create(c).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

type productOpt func(*models.Product)

func withStock(n int) productOpt { return func(p *models.Product) { p.Stock = n } }

func withMaterial(m enums.Material) productOpt { return func(p *models.Product) { p.Material = m } }

func featured() productOpt { return func(p *models.Product) { p.IsFeatured = true } }

func createdAt(offset time.Duration) productOpt {
	return func(p *models.Product) { p.CreatedAt = baseTime.Add(offset) }
}

func mustCreateProduct(t *testing.T, tx *gorm.DB, category *models.Category, name, price string, opts ...productOpt) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Slug:        "p-" + uuid.NewString()[:8],
		CategoryID:  category.ID,
		Description: name + " for the living room",
		Price:       decimal.RequireFromString(price),
		Material:    enums.MaterialWood,
		Color:       enums.ColorNatural,
		Stock:       5,
		CreatedAt:   baseTime,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := tx.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, "products"))
	_, err := repo.GetByID(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindByIDsSkipsMissing(t *testing.T) {
	conn := dbtest.Open(t, "products")
	repo := NewRepository(conn)
	cat := mustCreateCategory(t, conn, "Sofas", "sofas", nil)
	sofa := mustCreateProduct(t, conn, cat, "Sofa", "449.99")

	found, err := repo.FindByIDs(context.Background(), []uuid.UUID{sofa.ID, uuid.New()})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 product, got %d", len(found))
	}
	if !found[sofa.ID].Price.Equal(decimal.RequireFromString("449.99")) {
		t.Fatalf("unexpected price %s", found[sofa.ID].Price)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	conn := dbtest.Open(t, "products")
	repo := NewRepository(conn)
	ctx := context.Background()

	living := mustCreateCategory(t, conn, "Living Room", "living-room", nil)
	sofas := mustCreateCategory(t, conn, "Sofas", "sofas", living)
	office := mustCreateCategory(t, conn, "Office", "office", nil)

	mustCreateProduct(t, conn, sofas, "Velvet Sofa", "899.00", withMaterial(enums.MaterialFabric), createdAt(time.Hour))
	mustCreateProduct(t, conn, living, "Oak Coffee Table", "249.50", createdAt(2*time.Hour))
	mustCreateProduct(t, conn, office, "Oak Desk", "399.00", createdAt(3*time.Hour))
	mustCreateProduct(t, conn, sofas, "Sold Out Sofa", "10.00", withStock(0))

	rows, total, err := repo.List(ctx, ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("expected 3 in-stock products, got total=%d rows=%d", total, len(rows))
	}
	if rows[0].Name != "Oak Desk" {
		t.Fatalf("expected newest first, got %s", rows[0].Name)
	}

	rows, _, err = repo.List(ctx, ListQuery{Filters: ListFilters{CategorySlug: "living-room", Sort: enums.ProductSortPriceAsc}})
	if err != nil {
		t.Fatalf("list by parent category: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "Oak Coffee Table" {
		t.Fatalf("parent slug should include subcategories, got %+v", names(rows))
	}

	rows, _, err = repo.List(ctx, ListQuery{Filters: ListFilters{Query: "OAK", Sort: enums.ProductSortName}})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := names(rows); len(got) != 2 || got[0] != "Oak Coffee Table" || got[1] != "Oak Desk" {
		t.Fatalf("unexpected search result %v", got)
	}

	minPrice := decimal.RequireFromString("300")
	fabric := enums.MaterialFabric
	rows, _, err = repo.List(ctx, ListQuery{Filters: ListFilters{MinPrice: &minPrice, Material: &fabric}})
	if err != nil {
		t.Fatalf("price and material filter: %v", err)
	}
	if got := names(rows); len(got) != 1 || got[0] != "Velvet Sofa" {
		t.Fatalf("unexpected filtered result %v", got)
	}

	rows, total, err = repo.List(ctx, ListQuery{Page: pagination.PageRequest{Page: 2, PageSize: 2}})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if total != 3 || len(rows) != 1 {
		t.Fatalf("expected last page with 1 row, got total=%d rows=%d", total, len(rows))
	}
}

func TestDecrementStockIsGuarded(t *testing.T) {
	conn := dbtest.Open(t, "products")
	repo := NewRepository(conn)
	ctx := context.Background()
	cat := mustCreateCategory(t, conn, "Chairs", "chairs", nil)
	chair := mustCreateProduct(t, conn, cat, "Chair", "59.90", withStock(2))

	if err := repo.DecrementStock(ctx, chair.ID, 2); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	err := repo.DecrementStock(ctx, chair.ID, 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if !pkgerrors.Retryable(err) {
		t.Fatal("insufficient stock should be retryable")
	}

	reloaded, err := repo.GetByID(ctx, chair.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", reloaded.Stock)
	}
}

func TestDecrementStockRejectsNonPositiveQuantity(t *testing.T) {
	conn := dbtest.Open(t, "products")
	repo := NewRepository(conn)
	ctx := context.Background()
	cat := mustCreateCategory(t, conn, "Chairs", "chairs", nil)
	chair := mustCreateProduct(t, conn, cat, "Chair", "59.90", withStock(3))

	for _, qty := range []int{0, -1, math.MinInt} {
		err := repo.DecrementStock(ctx, chair.ID, qty)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("qty %d: expected validation error, got %v", qty, err)
		}
	}

	reloaded, err := repo.GetByID(ctx, chair.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 3 {
		t.Fatalf("expected stock untouched at 3, got %d", reloaded.Stock)
	}
}

func TestRelatedAndHomeRows(t *testing.T) {
	conn := dbtest.Open(t, "products")
	repo := NewRepository(conn)
	ctx := context.Background()
	cat := mustCreateCategory(t, conn, "Beds", "beds", nil)
	other := mustCreateCategory(t, conn, "Lamps", "lamps", nil)

	king := mustCreateProduct(t, conn, cat, "King Bed", "1200.00", featured())
	for i := range 5 {
		mustCreateProduct(t, conn, cat, "Bed "+string(rune('A'+i)), "500.00", createdAt(time.Duration(i)*time.Minute))
	}
	mustCreateProduct(t, conn, cat, "Empty Bed", "500.00", withStock(0), featured())
	mustCreateProduct(t, conn, other, "Lamp", "40.00")

	related, err := repo.Related(ctx, king, relatedLimit)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(related) != relatedLimit {
		t.Fatalf("expected %d related, got %d", relatedLimit, len(related))
	}
	for _, p := range related {
		if p.ID == king.ID || p.CategoryID != cat.ID || p.Stock == 0 {
			t.Fatalf("unexpected related product %s", p.Name)
		}
	}

	feat, err := repo.Featured(ctx, homeRowLimit)
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	if len(feat) != 1 || feat[0].ID != king.ID {
		t.Fatalf("expected only the in-stock featured product, got %v", names(feat))
	}
}

func names(rows []models.Product) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

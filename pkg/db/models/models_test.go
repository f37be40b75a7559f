package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestProductDiscountPercent(t *testing.T) {
	old := decimal.RequireFromString("1599.99")
	p := Product{Price: decimal.RequireFromString("1299.99"), OldPrice: &old}
	if got := p.DiscountPercent(); got != 18 {
		t.Fatalf("expected 18%% off, got %d", got)
	}

	lower := decimal.RequireFromString("10.00")
	p.OldPrice = &lower
	if got := p.DiscountPercent(); got != 0 {
		t.Fatalf("old price below price should not discount, got %d", got)
	}

	p.OldPrice = nil
	if got := p.DiscountPercent(); got != 0 {
		t.Fatalf("nil old price should not discount, got %d", got)
	}
}

func TestProductPrimaryImage(t *testing.T) {
	p := Product{Images: []ProductImage{
		{URL: "b.jpg", SortOrder: 2},
		{URL: "a.jpg", SortOrder: 1},
	}}
	if got := p.PrimaryImage(); got != "a.jpg" {
		t.Fatalf("expected lowest sort order image, got %q", got)
	}
	p.Images = append(p.Images, ProductImage{URL: "hero.jpg", IsPrimary: true, SortOrder: 9})
	if got := p.PrimaryImage(); got != "hero.jpg" {
		t.Fatalf("expected flagged primary image, got %q", got)
	}
	if got := (Product{}).PrimaryImage(); got != "" {
		t.Fatalf("expected empty image, got %q", got)
	}
}

func TestOrderItemsTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Price: decimal.RequireFromString("449.99"), Quantity: 3},
		{Price: decimal.RequireFromString("0.10"), Quantity: 3},
	}}
	if want := decimal.RequireFromString("1350.27"); !o.ItemsTotal().Equal(want) {
		t.Fatalf("expected %s, got %s", want, o.ItemsTotal())
	}
}

func TestUserFullNameFallsBackToEmail(t *testing.T) {
	u := User{Email: "ana@example.com"}
	if got := u.FullName(); got != "ana" {
		t.Fatalf("expected email local part, got %q", got)
	}
	u.FirstName, u.LastName = "Ana", "Lopez"
	if got := u.FullName(); got != "Ana Lopez" {
		t.Fatalf("unexpected full name %q", got)
	}
}

func TestEnsureID(t *testing.T) {
	o := &Order{}
	if err := o.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if o.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}
	fixed := uuid.New()
	o.ID = fixed
	_ = o.BeforeCreate(nil)
	if o.ID != fixed {
		t.Fatal("existing id must be kept")
	}
}

package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
	if !OrderStatusDelivered.IsTerminal() || !OrderStatusCancelled.IsTerminal() {
		t.Fatal("delivered and cancelled must be terminal")
	}
	if OrderStatusPending.IsTerminal() {
		t.Fatal("pending is not terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := ParseOrderStatus("shipped"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOrderStatus("lost"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseProductSortDefaultsToNewest(t *testing.T) {
	if got := ParseProductSort(""); got != ProductSortNewest {
		t.Fatalf("expected newest, got %s", got)
	}
	if got := ParseProductSort("bogus"); got != ProductSortNewest {
		t.Fatalf("expected newest for unknown sort, got %s", got)
	}
	if got := ParseProductSort("price_desc"); got != ProductSortPriceDesc {
		t.Fatalf("expected price_desc, got %s", got)
	}
}

func TestMaterialAndColor(t *testing.T) {
	if _, err := ParseMaterial("rattan"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Material("bamboo").IsValid() {
		t.Fatal("bamboo is not a catalog material")
	}
	if _, err := ParseColor("natural"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseColor("purple"); err == nil {
		t.Fatal("expected error for unknown color")
	}
}

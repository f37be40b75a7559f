package favorites

import (
	"time"

	product "github.com/angelmondragon/luxehome-backend/internal/products"
)

// ToggleStatus is the state after a toggle.
type ToggleStatus string

const (
	StatusAdded   ToggleStatus = "added"
	StatusRemoved ToggleStatus = "removed"
)

// ToggleResult is returned from the toggle endpoint.
type ToggleResult struct {
	Status ToggleStatus `json:"status"`
}

// ItemDTO wraps the product summary included in a favorites row.
type ItemDTO struct {
	Product   product.ProductSummaryDTO `json:"product"`
	CreatedAt time.Time                 `json:"created_at"`
}

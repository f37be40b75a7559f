package checkout

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/luxehome-backend/internal/cart"
	product "github.com/angelmondragon/luxehome-backend/internal/products"
)

// LineDTO is one materialized cart line on the review screen.
type LineDTO struct {
	Product   product.ProductSummaryDTO `json:"product"`
	Quantity  int                       `json:"quantity"`
	UnitPrice string                    `json:"unit_price"`
	Subtotal  string                    `json:"subtotal"`
}

// Review is what the shopper confirms before placing the order.
type Review struct {
	Items    []LineDTO `json:"items"`
	Total    string    `json:"total"`
	Count    int       `json:"count"`
	Customer Customer  `json:"customer"`
}

// InvalidCheckout is the error detail for missing delivery fields. Review
// carries the cart and submitted details so the form can be shown again.
type InvalidCheckout struct {
	Fields map[string]string `json:"fields"`
	Review *Review           `json:"review,omitempty"`
}

// Result identifies the placed order.
type Result struct {
	OrderID  uuid.UUID `json:"order_id"`
	Total    string    `json:"total"`
	Notified bool      `json:"notified"`
}

// NewLineDTOs maps a materialized cart for display.
func NewLineDTOs(items []cart.Item) []LineDTO {
	out := make([]LineDTO, 0, len(items))
	for _, item := range items {
		out = append(out, LineDTO{
			Product:   product.NewSummaryDTO(item.Product),
			Quantity:  item.Quantity,
			UnitPrice: product.Money(item.Price),
			Subtotal:  product.Money(item.Subtotal),
		})
	}
	return out
}

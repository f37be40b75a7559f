package outbox

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/luxehome-backend/pkg/enums"
)

// OrderPlacedItem is one snapshotted line of a placed order.
type OrderPlacedItem struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	Price     string     `json:"price"`
}

// OrderPlacedEvent is emitted in the checkout transaction.
type OrderPlacedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	UserID  *uuid.UUID        `json:"user_id,omitempty"`
	City    string            `json:"city"`
	Total   string            `json:"total"`
	Items   []OrderPlacedItem `json:"items"`
}

// OrderStatusChangedEvent is emitted when staff move an order along.
type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	From      enums.OrderStatus `json:"from"`
	To        enums.OrderStatus `json:"to"`
	ChangedAt time.Time         `json:"changed_at"`
}

package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/luxehome-backend/pkg/db/models"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
)

// ItemDTO is one snapshotted order line.
type ItemDTO struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name"`
	Price       string     `json:"price"`
	Quantity    int        `json:"quantity"`
	Subtotal    string     `json:"subtotal"`
}

// OrderDTO is the order confirmation and history row.
type OrderDTO struct {
	ID         uuid.UUID         `json:"id"`
	FullName   string            `json:"full_name"`
	Phone      string            `json:"phone"`
	Address    string            `json:"address"`
	City       string            `json:"city"`
	Note       string            `json:"note,omitempty"`
	TotalPrice string            `json:"total_price"`
	Status     enums.OrderStatus `json:"status"`
	Items      []ItemDTO         `json:"items"`
	ItemCount  int               `json:"item_count"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// FromModel maps a persisted order with its items.
func FromModel(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID:         o.ID,
		FullName:   o.FullName,
		Phone:      o.Phone,
		Address:    o.Address,
		City:       o.City,
		Note:       o.Note,
		TotalPrice: o.TotalPrice.StringFixed(2),
		Status:     o.Status,
		Items:      make([]ItemDTO, 0, len(o.Items)),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price.StringFixed(2),
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal().StringFixed(2),
		})
		dto.ItemCount += item.Quantity
	}
	return dto
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

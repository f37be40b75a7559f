package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/luxehome-backend/pkg/enums"
)

// Order is a placed cash-on-delivery order. Customer fields and TotalPrice are
// frozen at checkout; only Status changes afterwards.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID     *uuid.UUID        `gorm:"column:user_id;type:uuid;index:orders_user_id_created_at_idx,priority:1"`
	FullName   string            `gorm:"column:full_name;not null"`
	Phone      string            `gorm:"column:phone;not null"`
	Address    string            `gorm:"column:address;not null"`
	City       string            `gorm:"column:city;not null;index:orders_city_idx"`
	Note       string            `gorm:"column:note;not null;default:''"`
	TotalPrice decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`
	Status     enums.OrderStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index:orders_status_idx"`
	Items      []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime;index:orders_user_id_created_at_idx,priority:2"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemsTotal recomputes the total from the loaded items.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// OrderItem snapshots one purchased line. ProductID is a weak reference and
// becomes NULL if the product is later deleted.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	ProductID   *uuid.UUID      `gorm:"column:product_id;type:uuid;index:order_items_product_id_idx"`
	ProductName string          `gorm:"column:product_name;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
}

// Subtotal is Price × Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

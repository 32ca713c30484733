package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foodgo/foodgo-backend/pkg/enums"
)

// Order is an immutable checkout snapshot. Totals and the delivery
// address text are copied from the cart at creation and never
// recomputed from the items.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status      enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	AddressText *string           `gorm:"column:address_text"`
	Subtotal    decimal.Decimal   `gorm:"column:subtotal;type:numeric(10,2);not null"`
	DeliveryFee decimal.Decimal   `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	Total       decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment     *Payment          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

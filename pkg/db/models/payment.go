package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foodgo/foodgo-backend/pkg/enums"
)

// Payment is the single payment attempt attached to an order. Once it
// leaves the created state it is terminal.
type Payment struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Status    enums.PaymentStatus `gorm:"column:status;not null;default:'created'"`
	Method    enums.PaymentMethod `gorm:"column:method;not null;default:'card'"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Reference *string             `gorm:"column:reference;type:varchar(64)"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foodgo/foodgo-backend/pkg/db/models"
	"github.com/foodgo/foodgo-backend/pkg/enums"
)

// OrderItemDTO is a frozen line item on an order.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PaymentDTO is the single payment attempt attached to an order.
type PaymentDTO struct {
	ID        uuid.UUID           `json:"id"`
	Status    enums.PaymentStatus `json:"status"`
	Method    enums.PaymentMethod `json:"method"`
	Amount    decimal.Decimal     `json:"amount"`
	Reference *string             `json:"reference,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// OrderDTO is an order with its snapshot totals, items, and payment.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	Status      enums.OrderStatus `json:"status"`
	AddressText *string           `json:"address_text,omitempty"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	DeliveryFee decimal.Decimal   `json:"delivery_fee"`
	Total       decimal.Decimal   `json:"total"`
	Items       []OrderItemDTO    `json:"items"`
	Payment     *PaymentDTO       `json:"payment,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ConfirmPaymentRequest resolves an order's payment attempt.
type ConfirmPaymentRequest struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	Method    string    `json:"method,omitempty"`
	Success   bool      `json:"success"`
	Reference *string   `json:"reference,omitempty" validate:"omitempty,max=64"`
}

// FromModel maps an order row and its loaded relations to a DTO.
func FromModel(o *models.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}

	dto := &OrderDTO{
		ID:          o.ID,
		Status:      o.Status,
		AddressText: o.AddressText,
		Subtotal:    o.Subtotal,
		DeliveryFee: o.DeliveryFee,
		Total:       o.Total,
		Items:       items,
		CreatedAt:   o.CreatedAt,
	}
	if o.Payment != nil {
		dto.Payment = &PaymentDTO{
			ID:        o.Payment.ID,
			Status:    o.Payment.Status,
			Method:    o.Payment.Method,
			Amount:    o.Payment.Amount,
			Reference: o.Payment.Reference,
			CreatedAt: o.Payment.CreatedAt,
		}
	}
	return dto
}

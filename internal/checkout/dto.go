package checkout

import "github.com/shopspring/decimal"

// CreateOrderRequest converts the active cart into an order.
type CreateOrderRequest struct {
	Email       string           `json:"email" validate:"required,email"`
	AddressText *string          `json:"address_text,omitempty"`
	DeliveryFee *decimal.Decimal `json:"delivery_fee,omitempty"`
}

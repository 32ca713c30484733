package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foodgo/foodgo-backend/pkg/db/models"
)

// CartItemDTO is a line item with its captured snapshot.
type CartItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartDTO is the active cart with line items and running subtotal.
type CartDTO struct {
	ID       uuid.UUID       `json:"id"`
	Items    []CartItemDTO   `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// AddItemRequest puts a product in the active cart.
type AddItemRequest struct {
	Email     string    `json:"email" validate:"required,email"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// UpdateItemRequest changes the quantity of an existing line.
type UpdateItemRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

func cartFromModel(c *models.Cart) *CartDTO {
	items := make([]CartItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	return &CartDTO{ID: c.ID, Items: items, Subtotal: c.Subtotal()}
}

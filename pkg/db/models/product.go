package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a menu item sold by exactly one restaurant.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID uuid.UUID       `gorm:"column:restaurant_id;type:uuid;not null;index"`
	Title        string          `gorm:"column:title;not null"`
	Subtitle     *string         `gorm:"column:subtitle"`
	Description  *string         `gorm:"column:description"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(8,2);not null"`
	ImageURL     *string         `gorm:"column:image_url"`
	IsAvailable  bool            `gorm:"column:is_available;not null;default:true"`
	IsVeg        bool            `gorm:"column:is_veg;not null;default:false"`
	IsSpicy      bool            `gorm:"column:is_spicy;not null;default:false"`
	Categories   []Category      `gorm:"many2many:product_categories"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

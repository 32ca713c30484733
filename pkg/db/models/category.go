package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups restaurants and products for browsing. The links are
// many-to-many through restaurant_categories and product_categories.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Icon      *string   `gorm:"column:icon"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

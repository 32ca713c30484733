package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Restaurant is a vendor listing positioned by fixed coordinates.
type Restaurant struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Tags         pq.StringArray `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	Rating       float64        `gorm:"column:rating;type:numeric(3,1);not null;default:0"`
	ETAMin       int            `gorm:"column:eta_min;not null;default:20"`
	ETAMax       int            `gorm:"column:eta_max;not null;default:40"`
	DeliveryFree bool           `gorm:"column:delivery_free;not null;default:false"`
	IsOpen       bool           `gorm:"column:is_open;not null;default:true"`
	Latitude     float64        `gorm:"column:latitude;type:numeric(9,6);not null"`
	Longitude    float64        `gorm:"column:longitude;type:numeric(9,6);not null"`
	ImageURL     *string        `gorm:"column:image_url"`
	Categories   []Category     `gorm:"many2many:restaurant_categories"`
	Products     []Product      `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

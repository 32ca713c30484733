package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodgo/foodgo-backend/pkg/enums"
)

// UserAddress is a saved delivery address. At most one row per user is
// primary, enforced by the user_addresses_one_primary partial index.
type UserAddress struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Label     enums.AddressLabel `gorm:"column:label;not null;default:'Other'"`
	Address   string             `gorm:"column:address;not null"`
	Latitude  *float64           `gorm:"column:latitude;type:numeric(9,6)"`
	Longitude *float64           `gorm:"column:longitude;type:numeric(9,6)"`
	IsPrimary bool               `gorm:"column:is_primary;not null;default:false"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (a UserAddress) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

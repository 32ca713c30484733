package models

import (
	"time"

	"github.com/google/uuid"
)

// UserLocation mirrors the device's last reported coordinates. One row
// per user, overwritten on every update.
type UserLocation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Latitude  float64   `gorm:"column:latitude;type:numeric(9,6);not null"`
	Longitude float64   `gorm:"column:longitude;type:numeric(9,6);not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

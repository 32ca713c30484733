package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodgo/foodgo-backend/pkg/enums"
)

// OTPCode is a single-use verification code issued for signup or
// password reset. A code stays redeemable while it is unused, has
// fewer failed attempts than the cap, and has not expired.
type OTPCode struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Code      string           `gorm:"column:code;not null"`
	Purpose   enums.OTPPurpose `gorm:"column:purpose;not null"`
	Attempts  int              `gorm:"column:attempts;not null;default:0"`
	IsUsed    bool             `gorm:"column:is_used;not null;default:false"`
	ExpiresAt time.Time        `gorm:"column:expires_at;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// Redeemable reports whether the code can still be checked at the
// given instant under the supplied attempt cap.
func (o OTPCode) Redeemable(now time.Time, maxAttempts int) bool {
	return !o.IsUsed && o.Attempts < maxAttempts && !now.After(o.ExpiresAt)
}

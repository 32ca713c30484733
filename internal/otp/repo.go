package otp

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgo/foodgo-backend/pkg/db/models"
	"github.com/foodgo/foodgo-backend/pkg/enums"
)

// Repository exposes OTP persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an OTP repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repo to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create persists a freshly issued code.
func (r *Repository) Create(ctx context.Context, code *models.OTPCode) (*models.OTPCode, error) {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return nil, err
	}
	return code, nil
}

// FindNewestUnused returns the most recent unused code for the
// user/purpose pair. Verification always targets the latest issue so
// re-requesting a code invalidates older ones in practice.
func (r *Repository) FindNewestUnused(ctx context.Context, userID uuid.UUID, purpose enums.OTPPurpose) (*models.OTPCode, error) {
	var code models.OTPCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND is_used = ?", userID, purpose, false).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// IncrementAttempts bumps the failed-attempt counter.
func (r *Repository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.OTPCode{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// MarkUsed consumes the code so it cannot be redeemed again.
func (r *Repository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.OTPCode{}).
		Where("id = ?", id).
		UpdateColumn("is_used", true).Error
}

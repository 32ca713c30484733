package location

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgo/foodgo-backend/pkg/db/models"
)

// Repository exposes location and address persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a location repo bound to the provided GORM DB.
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

// FindLocation returns the user's single location row.
func (r *Repository) FindLocation(ctx context.Context, userID uuid.UUID) (*models.UserLocation, error) {
	var loc models.UserLocation
	if err := r.db.WithContext(ctx).First(&loc, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// UpsertLocation overwrites or creates the user's location row.
func (r *Repository) UpsertLocation(ctx context.Context, userID uuid.UUID, lat, lon float64) (*models.UserLocation, error) {
	loc := models.UserLocation{UserID: userID, Latitude: lat, Longitude: lon}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"latitude", "longitude", "updated_at"}),
		}).
		Create(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListAddresses returns the user's addresses, primary first, newest next.
func (r *Repository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	var addresses []models.UserAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// FindAddress loads one address scoped to the owner.
func (r *Repository) FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	var address models.UserAddress
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// CountAddresses returns how many addresses the user has saved.
func (r *Repository) CountAddresses(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// CreateAddress inserts a new address row.
func (r *Repository) CreateAddress(ctx context.Context, address *models.UserAddress) (*models.UserAddress, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// UpdateAddress writes the provided column values on the owner's row.
func (r *Repository) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Updates(updates).Error
}

// DeleteAddress removes the owner's address row.
func (r *Repository) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.UserAddress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearPrimary unsets is_primary on every address the user owns.
// Must run before promoting a new primary so the partial unique index
// is never violated mid-transaction.
func (r *Repository) ClearPrimary(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("user_id = ? AND is_primary", userID).
		UpdateColumn("is_primary", false).Error
}

// SetPrimary promotes one address to primary.
func (r *Repository) SetPrimary(ctx context.Context, userID, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		UpdateColumn("is_primary", true).Error
}

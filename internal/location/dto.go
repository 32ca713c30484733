package location

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodgo/foodgo-backend/pkg/db/models"
	"github.com/foodgo/foodgo-backend/pkg/enums"
)

// LocationDTO is the transport shape of the user's current coordinates.
type LocationDTO struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertLocationRequest overwrites the user's location, optionally
// saving the point as an address.
type UpsertLocationRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Latitude    float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"required,min=-180,max=180"`
	SaveAddress bool    `json:"save_address"`
}

// AddressDTO is the transport shape of a saved address.
type AddressDTO struct {
	ID        uuid.UUID          `json:"id"`
	Label     enums.AddressLabel `json:"label"`
	Address   string             `json:"address"`
	Latitude  *float64           `json:"latitude,omitempty"`
	Longitude *float64           `json:"longitude,omitempty"`
	IsPrimary bool               `json:"is_primary"`
	CreatedAt time.Time          `json:"created_at"`
}

// CreateAddressRequest adds a saved address.
type CreateAddressRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Label       *string  `json:"label,omitempty"`
	Address     string   `json:"address" validate:"required"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	MakePrimary bool     `json:"make_primary"`
}

// UpdateAddressRequest mutates a saved address.
type UpdateAddressRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Label       *string  `json:"label,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	MakePrimary *bool    `json:"make_primary,omitempty"`
}

func locationFromModel(loc *models.UserLocation) *LocationDTO {
	if loc == nil {
		return nil
	}
	return &LocationDTO{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		UpdatedAt: loc.UpdatedAt,
	}
}

func addressFromModel(a *models.UserAddress) *AddressDTO {
	if a == nil {
		return nil
	}
	return &AddressDTO{
		ID:        a.ID,
		Label:     a.Label,
		Address:   a.Address,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		IsPrimary: a.IsPrimary,
		CreatedAt: a.CreatedAt,
	}
}

func addressesFromModels(list []models.UserAddress) []AddressDTO {
	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, *addressFromModel(&list[i]))
	}
	return out
}

package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgo/foodgo-backend/internal/users"
	"github.com/foodgo/foodgo-backend/pkg/db"
	"github.com/foodgo/foodgo-backend/pkg/db/models"
	"github.com/foodgo/foodgo-backend/pkg/enums"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
	"github.com/foodgo/foodgo-backend/pkg/geo"
)

// addressReuseRadiusMeters is how close a new point must be to an
// existing saved address before it is reused instead of duplicated.
const addressReuseRadiusMeters = 50.0

// Service resolves and mutates user locations and saved addresses.
type Service interface {
	Resolve(ctx context.Context, email string) (*LocationDTO, error)
	Upsert(ctx context.Context, req UpsertLocationRequest) (*LocationDTO, error)
	ListAddresses(ctx context.Context, email string) ([]AddressDTO, error)
	GetAddress(ctx context.Context, email string, addressID uuid.UUID) (*AddressDTO, error)
	CreateAddress(ctx context.Context, req CreateAddressRequest) (*AddressDTO, error)
	UpdateAddress(ctx context.Context, addressID uuid.UUID, req UpdateAddressRequest) (*AddressDTO, error)
	DeleteAddress(ctx context.Context, email string, addressID uuid.UUID) error
}

type service struct {
	db    *db.Client
	users *users.Repository
	repo  *Repository
}

// ServiceParams bundles the dependencies required to build a location service.
type ServiceParams struct {
	DB       *db.Client
	UserRepo *users.Repository
	Repo     *Repository
}

// NewService constructs a location service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("location repository is required")
	}
	return &service{db: params.DB, users: params.UserRepo, repo: params.Repo}, nil
}

// Resolve returns the user's explicit location, or falls back to the
// primary (else first-created) address with coordinates, mirroring it
// into the location row for future calls.
func (s *service) Resolve(ctx context.Context, email string) (*LocationDTO, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	loc, err := s.repo.FindLocation(ctx, user.ID)
	if err == nil {
		return locationFromModel(loc), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup location")
	}

	addresses, err := s.repo.ListAddresses(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	fallback := pickLocatable(addresses)
	if fallback == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no location on record")
	}

	mirrored, err := s.repo.UpsertLocation(ctx, user.ID, *fallback.Latitude, *fallback.Longitude)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mirror location")
	}
	return locationFromModel(mirrored), nil
}

// Upsert overwrites the location row. With SaveAddress set, a saved
// address within 50 m of the point is promoted to primary; otherwise a
// new primary address is created from the raw coordinates.
func (s *service) Upsert(ctx context.Context, req UpsertLocationRequest) (*LocationDTO, error) {
	user, err := s.lookupUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	var out *models.UserLocation
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loc, err := repo.UpsertLocation(ctx, user.ID, req.Latitude, req.Longitude)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert location")
		}
		out = loc

		if !req.SaveAddress {
			return nil
		}
		return s.saveAddressForPoint(ctx, repo, user.ID, req.Latitude, req.Longitude)
	})
	if err != nil {
		return nil, err
	}
	return locationFromModel(out), nil
}

func (s *service) saveAddressForPoint(ctx context.Context, repo *Repository, userID uuid.UUID, lat, lon float64) error {
	addresses, err := repo.ListAddresses(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}

	for i := range addresses {
		a := &addresses[i]
		if !a.HasCoordinates() {
			continue
		}
		if geo.DistanceMeters(lat, lon, *a.Latitude, *a.Longitude) <= addressReuseRadiusMeters {
			if a.IsPrimary {
				return nil
			}
			if err := repo.ClearPrimary(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear primary")
			}
			if err := repo.SetPrimary(ctx, userID, a.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote address")
			}
			return nil
		}
	}

	label := enums.AddressLabelOther
	if len(addresses) == 0 {
		label = enums.AddressLabelHome
	}
	if err := repo.ClearPrimary(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear primary")
	}
	_, err = repo.CreateAddress(ctx, &models.UserAddress{
		UserID:    userID,
		Label:     label,
		Address:   fmt.Sprintf("%.6f, %.6f", lat, lon),
		Latitude:  &lat,
		Longitude: &lon,
		IsPrimary: true,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	return nil
}

func (s *service) ListAddresses(ctx context.Context, email string) ([]AddressDTO, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}
	addresses, err := s.repo.ListAddresses(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	return addressesFromModels(addresses), nil
}

func (s *service) GetAddress(ctx context.Context, email string, addressID uuid.UUID) (*AddressDTO, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}
	address, err := s.repo.FindAddress(ctx, user.ID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup address")
	}
	return addressFromModel(address), nil
}

func (s *service) CreateAddress(ctx context.Context, req CreateAddressRequest) (*AddressDTO, error) {
	user, err := s.lookupUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	label := enums.AddressLabelOther
	if req.Label != nil {
		parsed, err := enums.ParseAddressLabel(*req.Label)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		label = parsed
	}

	var created *models.UserAddress
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountAddresses(ctx, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count addresses")
		}

		// The first address becomes Home and primary unless told otherwise.
		isPrimary := req.MakePrimary || count == 0
		if count == 0 && req.Label == nil {
			label = enums.AddressLabelHome
		}

		if isPrimary {
			if err := repo.ClearPrimary(ctx, user.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear primary")
			}
		}

		created, err = repo.CreateAddress(ctx, &models.UserAddress{
			UserID:    user.ID,
			Label:     label,
			Address:   req.Address,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			IsPrimary: isPrimary,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return addressFromModel(created), nil
}

func (s *service) UpdateAddress(ctx context.Context, addressID uuid.UUID, req UpdateAddressRequest) (*AddressDTO, error) {
	user, err := s.lookupUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	var updated *models.UserAddress
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindAddress(ctx, user.ID, addressID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup address")
		}

		updates := map[string]any{}
		if req.Label != nil {
			parsed, err := enums.ParseAddressLabel(*req.Label)
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
			}
			updates["label"] = parsed
		}
		if req.Address != nil {
			updates["address"] = *req.Address
		}
		if req.Latitude != nil {
			updates["latitude"] = *req.Latitude
		}
		if req.Longitude != nil {
			updates["longitude"] = *req.Longitude
		}

		if len(updates) > 0 {
			if err := repo.UpdateAddress(ctx, user.ID, addressID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update address")
			}
		}

		if req.MakePrimary != nil && *req.MakePrimary {
			if err := repo.ClearPrimary(ctx, user.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear primary")
			}
			if err := repo.SetPrimary(ctx, user.ID, addressID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote address")
			}
		}

		address, err := repo.FindAddress(ctx, user.ID, addressID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload address")
		}
		updated = address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return addressFromModel(updated), nil
}

func (s *service) DeleteAddress(ctx context.Context, email string, addressID uuid.UUID) error {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAddress(ctx, user.ID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	return nil
}

func (s *service) lookupUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}

// pickLocatable returns the primary address with coordinates, else the
// first-created one.
func pickLocatable(addresses []models.UserAddress) *models.UserAddress {
	var oldest *models.UserAddress
	for i := range addresses {
		a := &addresses[i]
		if !a.HasCoordinates() {
			continue
		}
		if a.IsPrimary {
			return a
		}
		if oldest == nil || a.CreatedAt.Before(oldest.CreatedAt) {
			oldest = a
		}
	}
	return oldest
}

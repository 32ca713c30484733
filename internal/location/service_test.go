package location

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodgo/foodgo-backend/internal/users"
	"github.com/foodgo/foodgo-backend/pkg/db"
	"github.com/foodgo/foodgo-backend/pkg/db/models"
	"github.com/foodgo/foodgo-backend/pkg/enums"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
)

func setupLocationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS user_locations (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS user_addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  label TEXT NOT NULL DEFAULT 'Other',
  address TEXT NOT NULL,
  latitude REAL,
  longitude REAL,
  is_primary INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		require.NoError(t, gdb.Exec(ddl).Error)
	}
	return gdb
}

func newLocationTestService(t *testing.T, gdb *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:       &db.Client{DB: gdb},
		UserRepo: users.NewRepository(gdb),
		Repo:     NewRepository(gdb),
	})
	require.NoError(t, err)
	return svc
}

func seedLocationUser(t *testing.T, gdb *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FullName:     "Location Tester",
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func TestUpsertThenResolve(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)
	ctx := context.Background()

	loc, err := svc.Upsert(ctx, UpsertLocationRequest{
		Email:     user.Email,
		Latitude:  19.4326,
		Longitude: -99.1332,
	})
	require.NoError(t, err)
	require.InDelta(t, 19.4326, loc.Latitude, 1e-9)
	require.InDelta(t, -99.1332, loc.Longitude, 1e-9)

	resolved, err := svc.Resolve(ctx, user.Email)
	require.NoError(t, err)
	require.InDelta(t, 19.4326, resolved.Latitude, 1e-9)

	// A second upsert overwrites the single row.
	_, err = svc.Upsert(ctx, UpsertLocationRequest{
		Email:     user.Email,
		Latitude:  19.4400,
		Longitude: -99.1400,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, gdb.Model(&models.UserLocation{}).
		Where("user_id = ?", user.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	resolved, err = svc.Resolve(ctx, user.Email)
	require.NoError(t, err)
	require.InDelta(t, 19.4400, resolved.Latitude, 1e-9)
}

func TestResolveFallsBackToPrimaryAddress(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)
	ctx := context.Background()

	lat, lon := 19.3910, -99.2837
	require.NoError(t, gdb.Create(&models.UserAddress{
		ID:        uuid.New(),
		UserID:    user.ID,
		Label:     enums.AddressLabelHome,
		Address:   "Av. Santa Fe 100",
		Latitude:  &lat,
		Longitude: &lon,
		IsPrimary: true,
	}).Error)

	resolved, err := svc.Resolve(ctx, user.Email)
	require.NoError(t, err)
	require.InDelta(t, lat, resolved.Latitude, 1e-9)
	require.InDelta(t, lon, resolved.Longitude, 1e-9)

	// The fallback is mirrored into the location row.
	var count int64
	require.NoError(t, gdb.Model(&models.UserLocation{}).
		Where("user_id = ?", user.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestResolveNothingOnRecord(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)

	_, err := svc.Resolve(context.Background(), user.Email)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpsertSaveAddressCreatesPrimaryHome(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)

	_, err := svc.Upsert(context.Background(), UpsertLocationRequest{
		Email:       user.Email,
		Latitude:    19.4326,
		Longitude:   -99.1332,
		SaveAddress: true,
	})
	require.NoError(t, err)

	var addresses []models.UserAddress
	require.NoError(t, gdb.Where("user_id = ?", user.ID).Find(&addresses).Error)
	require.Len(t, addresses, 1)
	require.Equal(t, enums.AddressLabelHome, addresses[0].Label)
	require.True(t, addresses[0].IsPrimary)
	require.True(t, addresses[0].HasCoordinates())
}

func TestUpsertSaveAddressPromotesNearby(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)

	// Roughly 20 m north of the reported point.
	lat, lon := 19.43278, -99.1332
	require.NoError(t, gdb.Create(&models.UserAddress{
		ID:        uuid.New(),
		UserID:    user.ID,
		Label:     enums.AddressLabelWork,
		Address:   "Oficina",
		Latitude:  &lat,
		Longitude: &lon,
		IsPrimary: false,
	}).Error)

	_, err := svc.Upsert(context.Background(), UpsertLocationRequest{
		Email:       user.Email,
		Latitude:    19.4326,
		Longitude:   -99.1332,
		SaveAddress: true,
	})
	require.NoError(t, err)

	var addresses []models.UserAddress
	require.NoError(t, gdb.Where("user_id = ?", user.ID).Find(&addresses).Error)
	require.Len(t, addresses, 1)
	require.True(t, addresses[0].IsPrimary)
	require.Equal(t, enums.AddressLabelWork, addresses[0].Label)
}

func TestCreateAddressFirstBecomesPrimaryHome(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)
	ctx := context.Background()

	first, err := svc.CreateAddress(ctx, CreateAddressRequest{
		Email:   user.Email,
		Address: "Calle Uno 1",
	})
	require.NoError(t, err)
	require.Equal(t, enums.AddressLabelHome, first.Label)
	require.True(t, first.IsPrimary)

	second, err := svc.CreateAddress(ctx, CreateAddressRequest{
		Email:   user.Email,
		Address: "Calle Dos 2",
	})
	require.NoError(t, err)
	require.Equal(t, enums.AddressLabelOther, second.Label)
	require.False(t, second.IsPrimary)

	// Forcing primary demotes the first one.
	third, err := svc.CreateAddress(ctx, CreateAddressRequest{
		Email:       user.Email,
		Address:     "Calle Tres 3",
		MakePrimary: true,
	})
	require.NoError(t, err)
	require.True(t, third.IsPrimary)

	var primaries int64
	require.NoError(t, gdb.Model(&models.UserAddress{}).
		Where("user_id = ? AND is_primary = ?", user.ID, true).
		Count(&primaries).Error)
	require.EqualValues(t, 1, primaries)
}

func TestCreateAddressBadLabel(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)
	label := "Castle"

	_, err := svc.CreateAddress(context.Background(), CreateAddressRequest{
		Email:   user.Email,
		Address: "Somewhere",
		Label:   &label,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateAddressPromoteAndMutate(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)
	ctx := context.Background()

	home, err := svc.CreateAddress(ctx, CreateAddressRequest{Email: user.Email, Address: "Casa"})
	require.NoError(t, err)
	office, err := svc.CreateAddress(ctx, CreateAddressRequest{Email: user.Email, Address: "Oficina"})
	require.NoError(t, err)

	label := "Work"
	newText := "Oficina Nueva"
	makePrimary := true
	updated, err := svc.UpdateAddress(ctx, office.ID, UpdateAddressRequest{
		Email:       user.Email,
		Label:       &label,
		Address:     &newText,
		MakePrimary: &makePrimary,
	})
	require.NoError(t, err)
	require.Equal(t, enums.AddressLabelWork, updated.Label)
	require.Equal(t, newText, updated.Address)
	require.True(t, updated.IsPrimary)

	reloaded, err := svc.GetAddress(ctx, user.Email, home.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsPrimary)
}

func TestUpdateAddressNotFound(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)

	_, err := svc.UpdateAddress(context.Background(), uuid.New(), UpdateAddressRequest{Email: user.Email})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteAddress(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	user := seedLocationUser(t, gdb)
	ctx := context.Background()

	created, err := svc.CreateAddress(ctx, CreateAddressRequest{Email: user.Email, Address: "Temporal"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAddress(ctx, user.Email, created.ID))

	err = svc.DeleteAddress(ctx, user.Email, created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetAddressScopedToUser(t *testing.T) {
	gdb := setupLocationTestDB(t)
	svc := newLocationTestService(t, gdb)
	owner := seedLocationUser(t, gdb)
	other := seedLocationUser(t, gdb)
	ctx := context.Background()

	created, err := svc.CreateAddress(ctx, CreateAddressRequest{Email: owner.Email, Address: "Privada"})
	require.NoError(t, err)

	_, err = svc.GetAddress(ctx, other.Email, created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

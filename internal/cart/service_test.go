package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodgo/foodgo-backend/internal/catalog"
	"github.com/foodgo/foodgo-backend/internal/users"
	"github.com/foodgo/foodgo-backend/pkg/db"
	"github.com/foodgo/foodgo-backend/pkg/db/models"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openCartTestDB(t, "file::memory:?cache=shared")
}

func openCartTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	// The carts_one_active_per_user partial index is postgres-only;
	// merge tests seed the duplicates it would normally prevent.
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
		`CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  restaurant_id TEXT NOT NULL,
  title TEXT NOT NULL,
  subtitle TEXT,
  description TEXT,
  price TEXT NOT NULL,
  image_url TEXT,
  is_available INTEGER NOT NULL DEFAULT 1,
  is_veg INTEGER NOT NULL DEFAULT 0,
  is_spicy INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		require.NoError(t, gdb.Exec(ddl).Error)
	}
	return gdb
}

func newCartTestService(t *testing.T, gdb *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:          &db.Client{DB: gdb},
		UserRepo:    users.NewRepository(gdb),
		Repo:        NewRepository(gdb),
		CatalogRepo: catalog.NewRepository(gdb),
	})
	require.NoError(t, err)
	return svc
}

func seedCartUser(t *testing.T, gdb *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FullName:     "Cart Tester",
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func seedCartProduct(t *testing.T, gdb *gorm.DB, title string, price string, available bool) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		Title:        title,
		Price:        decimal.RequireFromString(price),
		IsAvailable:  available,
	}
	require.NoError(t, gdb.Create(product).Error)
	return product
}

func TestGetCreatesSingleActiveCart(t *testing.T) {
	gdb := setupCartTestDB(t)
	svc := newCartTestService(t, gdb)
	user := seedCartUser(t, gdb)
	ctx := context.Background()

	first, err := svc.Get(ctx, user.Email)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first.ID)
	require.Empty(t, first.Items)
	require.True(t, first.Subtotal.IsZero())

	second, err := svc.Get(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, gdb.Model(&models.Cart{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGetUnknownUser(t *testing.T) {
	gdb := setupCartTestDB(t)
	svc := newCartTestService(t, gdb)

	_, err := svc.Get(context.Background(), "nobody@example.com")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestAddItemSnapshotsTitleAndPrice(t *testing.T) {
	gdb := setupCartTestDB(t)
	svc := newCartTestService(t, gdb)
	user := seedCartUser(t, gdb)
	product := seedCartProduct(t, gdb, "Tacos al Pastor", "89.50", true)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, AddItemRequest{Email: user.Email, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, "Tacos al Pastor", cart.Items[0].Title)
	require.Equal(t, 2, cart.Items[0].Quantity)
	require.True(t, cart.Items[0].UnitPrice.Equal(decimal.RequireFromString("89.50")))
	require.True(t, cart.Subtotal.Equal(decimal.RequireFromString("179.00")))

	// Catalog edits after the add must not rewrite the snapshot.
	require.NoError(t, gdb.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{"title": "Renamed", "price": "120.00"}).Error)

	cart, err = svc.AddItem(ctx, AddItemRequest{Email: user.Email, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, "Tacos al Pastor", cart.Items[0].Title)
	require.Equal(t, 3, cart.Items[0].Quantity)
	require.True(t, cart.Items[0].UnitPrice.Equal(decimal.RequireFromString("89.50")))
}

func TestAddItemUnavailableProduct(t *testing.T) {
	gdb := setupCartTestDB(t)
	svc := newCartTestService(t, gdb)
	user := seedCartUser(t, gdb)
	product := seedCartProduct(t, gdb, "Sold Out Special", "50.00", false)

	_, err := svc.AddItem(context.Background(), AddItemRequest{
		Email:     user.Email,
		ProductID: product.ID,
		Quantity:  1,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateItemQuantity(t *testing.T) {
	gdb := setupCartTestDB(t)
	svc := newCartTestService(t, gdb)
	user := seedCartUser(t, gdb)
	product := seedCartProduct(t, gdb, "Quesadilla", "45.00", true)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, AddItemRequest{Email: user.Email, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	cart, err = svc.UpdateItem(ctx, cart.Items[0].ID, UpdateItemRequest{Email: user.Email, Quantity: 5})
	require.NoError(t, err)
	require.Equal(t, 5, cart.Items[0].Quantity)
	require.True(t, cart.Subtotal.Equal(decimal.RequireFromString("225.00")))

	_, err = svc.UpdateItem(ctx, uuid.New(), UpdateItemRequest{Email: user.Email, Quantity: 2})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRemoveItem(t *testing.T) {
	gdb := setupCartTestDB(t)
	svc := newCartTestService(t, gdb)
	user := seedCartUser(t, gdb)
	tacos := seedCartProduct(t, gdb, "Tacos", "30.00", true)
	agua := seedCartProduct(t, gdb, "Agua Fresca", "25.00", true)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, AddItemRequest{Email: user.Email, ProductID: tacos.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, AddItemRequest{Email: user.Email, ProductID: agua.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	removeID := cart.Items[0].ID
	cart, err = svc.RemoveItem(ctx, user.Email, removeID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	_, err = svc.RemoveItem(ctx, user.Email, removeID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestClearKeepsCart(t *testing.T) {
	gdb := setupCartTestDB(t)
	svc := newCartTestService(t, gdb)
	user := seedCartUser(t, gdb)
	product := seedCartProduct(t, gdb, "Torta", "60.00", true)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, AddItemRequest{Email: user.Email, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	cartID := cart.ID

	cleared, err := svc.Clear(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, cartID, cleared.ID)
	require.Empty(t, cleared.Items)
	require.True(t, cleared.Subtotal.IsZero())
}

// The lost-insert recovery needs the partial unique index, and that
// index would reject the duplicate carts the merge test seeds, so this
// test runs against its own database.
func TestGetAdoptsWinnerAfterLostInsertRace(t *testing.T) {
	gdb := openCartTestDB(t, "file:cart_lost_insert_race?mode=memory&cache=shared")
	require.NoError(t, gdb.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS carts_one_active_per_user ON carts (user_id) WHERE is_active = 1`,
	).Error)

	svc := newCartTestService(t, gdb)
	user := seedCartUser(t, gdb)
	ctx := context.Background()

	// Slip a competing active cart in after the empty locked read but
	// before the insert, so the insert hits the unique index the way a
	// losing concurrent request does. The row lands before the insert's
	// savepoint, mirroring a winner committed by another transaction.
	winnerID := uuid.New()
	injected := false
	err := gdb.Callback().Query().After("gorm:query").Register("cart_test_lose_insert_race", func(tx *gorm.DB) {
		if injected || tx.Statement == nil || tx.Statement.Table != "carts" {
			return
		}
		injected = true
		now := time.Now().UTC()
		if execErr := tx.Session(&gorm.Session{NewDB: true}).Exec(
			`INSERT INTO carts (id, user_id, is_active, created_at, updated_at) VALUES (?, ?, 1, ?, ?)`,
			winnerID, user.ID, now, now,
		).Error; execErr != nil {
			t.Errorf("seed competing cart: %v", execErr)
		}
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, gdb.Callback().Query().Remove("cart_test_lose_insert_race"))
	}()

	cart, err := svc.Get(ctx, user.Email)
	require.NoError(t, err)
	require.True(t, injected)
	require.Equal(t, winnerID, cart.ID)

	var active int64
	require.NoError(t, gdb.Model(&models.Cart{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&active).Error)
	require.EqualValues(t, 1, active)
}

func TestDuplicateActiveCartsMergeIntoNewest(t *testing.T) {
	gdb := setupCartTestDB(t)
	svc := newCartTestService(t, gdb)
	user := seedCartUser(t, gdb)
	ctx := context.Background()

	productA := uuid.New()
	productB := uuid.New()
	now := time.Now().UTC()

	winner := &models.Cart{ID: uuid.New(), UserID: user.ID, IsActive: true, CreatedAt: now, UpdatedAt: now}
	loser := &models.Cart{ID: uuid.New(), UserID: user.ID, IsActive: true, CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)}
	require.NoError(t, gdb.Create(winner).Error)
	require.NoError(t, gdb.Create(loser).Error)

	price := decimal.RequireFromString("10.00")
	require.NoError(t, gdb.Create(&models.CartItem{
		ID: uuid.New(), CartID: winner.ID, ProductID: productA, Title: "Shared", Quantity: 1, UnitPrice: price,
	}).Error)
	require.NoError(t, gdb.Create(&models.CartItem{
		ID: uuid.New(), CartID: loser.ID, ProductID: productA, Title: "Shared", Quantity: 2, UnitPrice: price,
	}).Error)
	require.NoError(t, gdb.Create(&models.CartItem{
		ID: uuid.New(), CartID: loser.ID, ProductID: productB, Title: "Only In Loser", Quantity: 1, UnitPrice: price,
	}).Error)

	cart, err := svc.Get(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, winner.ID, cart.ID)
	require.Len(t, cart.Items, 2)

	byProduct := map[uuid.UUID]CartItemDTO{}
	for _, item := range cart.Items {
		byProduct[item.ProductID] = item
	}
	require.Equal(t, 3, byProduct[productA].Quantity)
	require.Equal(t, 1, byProduct[productB].Quantity)

	var active int64
	require.NoError(t, gdb.Model(&models.Cart{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&active).Error)
	require.EqualValues(t, 1, active)
}

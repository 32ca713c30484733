package checkout

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

	"github.com/foodgo/foodgo-backend/internal/cart"
	"github.com/foodgo/foodgo-backend/internal/orders"
	"github.com/foodgo/foodgo-backend/internal/users"
	"github.com/foodgo/foodgo-backend/pkg/config"
	"github.com/foodgo/foodgo-backend/pkg/db"
	"github.com/foodgo/foodgo-backend/pkg/db/models"
	"github.com/foodgo/foodgo-backend/pkg/enums"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
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
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  address_text TEXT,
  subtotal TEXT NOT NULL,
  delivery_fee TEXT NOT NULL DEFAULT '0',
  total TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'created',
  method TEXT NOT NULL DEFAULT 'card',
  amount TEXT NOT NULL,
  reference TEXT,
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

func newCheckoutTestService(t *testing.T, gdb *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:        &db.Client{DB: gdb},
		UserRepo:  users.NewRepository(gdb),
		CartRepo:  cart.NewRepository(gdb),
		OrderRepo: orders.NewRepository(gdb),
		Config:    config.CheckoutConfig{DefaultPaymentMethod: "card"},
	})
	require.NoError(t, err)
	return svc
}

func seedCheckoutUser(t *testing.T, gdb *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FullName:     "Checkout Tester",
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func seedActiveCart(t *testing.T, gdb *gorm.DB, userID uuid.UUID, items ...models.CartItem) *models.Cart {
	t.Helper()
	c := &models.Cart{ID: uuid.New(), UserID: userID, IsActive: true}
	require.NoError(t, gdb.Create(c).Error)
	for i := range items {
		items[i].ID = uuid.New()
		items[i].CartID = c.ID
		require.NoError(t, gdb.Create(&items[i]).Error)
	}
	return c
}

func TestCreateOrderSnapshotsCart(t *testing.T) {
	gdb := setupCheckoutTestDB(t)
	svc := newCheckoutTestService(t, gdb)
	user := seedCheckoutUser(t, gdb)
	ctx := context.Background()

	oldCart := seedActiveCart(t, gdb, user.ID,
		models.CartItem{ProductID: uuid.New(), Title: "Tacos", Quantity: 3, UnitPrice: decimal.RequireFromString("30.00")},
		models.CartItem{ProductID: uuid.New(), Title: "Agua Fresca", Quantity: 1, UnitPrice: decimal.RequireFromString("25.00")},
	)

	address := "Av. Reforma 222, CDMX"
	fee := decimal.RequireFromString("15.00")
	order, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Email:       user.Email,
		AddressText: &address,
		DeliveryFee: &fee,
	})
	require.NoError(t, err)

	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.NotNil(t, order.AddressText)
	require.Equal(t, address, *order.AddressText)
	require.True(t, order.Subtotal.Equal(decimal.RequireFromString("115.00")))
	require.True(t, order.DeliveryFee.Equal(fee))
	require.True(t, order.Total.Equal(decimal.RequireFromString("130.00")))
	require.Len(t, order.Items, 2)

	require.NotNil(t, order.Payment)
	require.Equal(t, enums.PaymentStatusCreated, order.Payment.Status)
	require.Equal(t, enums.PaymentMethodCard, order.Payment.Method)
	require.True(t, order.Payment.Amount.Equal(order.Total))

	// The checked-out cart is retired and a fresh empty one takes over.
	var old models.Cart
	require.NoError(t, gdb.First(&old, "id = ?", oldCart.ID).Error)
	require.False(t, old.IsActive)

	var active []models.Cart
	require.NoError(t, gdb.Where("user_id = ? AND is_active = ?", user.ID, true).Find(&active).Error)
	require.Len(t, active, 1)
	require.NotEqual(t, oldCart.ID, active[0].ID)

	var itemCount int64
	require.NoError(t, gdb.Model(&models.CartItem{}).
		Where("cart_id = ?", active[0].ID).
		Count(&itemCount).Error)
	require.EqualValues(t, 0, itemCount)
}

func TestOrderItemsKeepSnapshotAfterProductChanges(t *testing.T) {
	gdb := setupCheckoutTestDB(t)
	svc := newCheckoutTestService(t, gdb)
	user := seedCheckoutUser(t, gdb)
	ctx := context.Background()

	product := &models.Product{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		Title:        "Enchiladas Verdes",
		Price:        decimal.RequireFromString("80.00"),
		IsAvailable:  true,
	}
	require.NoError(t, gdb.Create(product).Error)

	seedActiveCart(t, gdb, user.ID,
		models.CartItem{ProductID: product.ID, Title: product.Title, Quantity: 2, UnitPrice: product.Price},
	)

	order, err := svc.CreateOrder(ctx, CreateOrderRequest{Email: user.Email})
	require.NoError(t, err)
	require.True(t, order.Total.Equal(decimal.RequireFromString("160.00")))

	// Catalog edits after checkout must not rewrite the order history.
	require.NoError(t, gdb.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{"title": "Renamed", "price": "150.00"}).Error)

	var stored []models.OrderItem
	require.NoError(t, gdb.Where("order_id = ?", order.ID).Find(&stored).Error)
	require.Len(t, stored, 1)
	require.Equal(t, "Enchiladas Verdes", stored[0].Title)
	require.True(t, stored[0].UnitPrice.Equal(decimal.RequireFromString("80.00")))
	require.True(t, stored[0].Subtotal.Equal(decimal.RequireFromString("160.00")))
}

func TestCreateOrderNoActiveCart(t *testing.T) {
	gdb := setupCheckoutTestDB(t)
	svc := newCheckoutTestService(t, gdb)
	user := seedCheckoutUser(t, gdb)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{Email: user.Email})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateOrderEmptyCart(t *testing.T) {
	gdb := setupCheckoutTestDB(t)
	svc := newCheckoutTestService(t, gdb)
	user := seedCheckoutUser(t, gdb)
	seedActiveCart(t, gdb, user.ID)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{Email: user.Email})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())

	// A rejected checkout must leave the cart active.
	var active int64
	require.NoError(t, gdb.Model(&models.Cart{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).
		Count(&active).Error)
	require.EqualValues(t, 1, active)
}

func TestCreateOrderNegativeFee(t *testing.T) {
	gdb := setupCheckoutTestDB(t)
	svc := newCheckoutTestService(t, gdb)
	user := seedCheckoutUser(t, gdb)
	fee := decimal.RequireFromString("-1")

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{Email: user.Email, DeliveryFee: &fee})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateOrderUnknownUser(t *testing.T) {
	gdb := setupCheckoutTestDB(t)
	svc := newCheckoutTestService(t, gdb)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{Email: "nobody@example.com"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateOrderDeactivatesEveryActiveCart(t *testing.T) {
	gdb := setupCheckoutTestDB(t)
	svc := newCheckoutTestService(t, gdb)
	user := seedCheckoutUser(t, gdb)
	ctx := context.Background()

	// Race leftovers: two active carts, only the newest has items.
	stale := seedActiveCart(t, gdb, user.ID)
	require.NoError(t, gdb.Model(&models.Cart{}).
		Where("id = ?", stale.ID).
		Update("updated_at", stale.CreatedAt.Add(-time.Hour)).Error)
	seedActiveCart(t, gdb, user.ID,
		models.CartItem{ProductID: uuid.New(), Title: "Pozole", Quantity: 1, UnitPrice: decimal.RequireFromString("95.00")},
	)

	order, err := svc.CreateOrder(ctx, CreateOrderRequest{Email: user.Email})
	require.NoError(t, err)
	require.True(t, order.Total.Equal(decimal.RequireFromString("95.00")))

	var active []models.Cart
	require.NoError(t, gdb.Where("user_id = ? AND is_active = ?", user.ID, true).Find(&active).Error)
	require.Len(t, active, 1)
	require.NotEqual(t, stale.ID, active[0].ID)
}

package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
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

// Service turns the active cart into an immutable order.
type Service interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*orders.OrderDTO, error)
}

type service struct {
	db            *db.Client
	users         *users.Repository
	carts         *cart.Repository
	orders        *orders.Repository
	defaultMethod enums.PaymentMethod
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	DB        *db.Client
	UserRepo  *users.Repository
	CartRepo  *cart.Repository
	OrderRepo *orders.Repository
	Config    config.CheckoutConfig
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}

	method := enums.PaymentMethodCard
	if params.Config.DefaultPaymentMethod != "" {
		parsed, err := enums.ParsePaymentMethod(params.Config.DefaultPaymentMethod)
		if err != nil {
			return nil, fmt.Errorf("default payment method: %w", err)
		}
		method = parsed
	}

	return &service{
		db:            params.DB,
		users:         params.UserRepo,
		carts:         params.CartRepo,
		orders:        params.OrderRepo,
		defaultMethod: method,
	}, nil
}

// CreateOrder snapshots the active cart into an order, its items, and a
// created payment, then swaps in a fresh empty cart. Everything runs in
// one transaction; a failure anywhere leaves the cart untouched.
func (s *service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*orders.OrderDTO, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	deliveryFee := decimal.Zero
	if req.DeliveryFee != nil {
		if req.DeliveryFee.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee must not be negative")
		}
		deliveryFee = *req.DeliveryFee
	}

	var order *models.Order
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		active, err := cartRepo.ListActiveLocked(ctx, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock active cart")
		}
		if len(active) == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "no active cart")
		}
		current := &active[0]

		items, err := cartRepo.ListItems(ctx, current.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart is empty")
		}

		subtotal := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			lineSubtotal := item.Subtotal()
			subtotal = subtotal.Add(lineSubtotal)
			orderItems = append(orderItems, models.OrderItem{
				ProductID: item.ProductID,
				Title:     item.Title,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  lineSubtotal,
			})
		}
		total := subtotal.Add(deliveryFee)

		order = &models.Order{
			UserID:      user.ID,
			Status:      enums.OrderStatusPending,
			AddressText: req.AddressText,
			Subtotal:    subtotal,
			DeliveryFee: deliveryFee,
			Total:       total,
		}
		payment := &models.Payment{
			Status: enums.PaymentStatusCreated,
			Method: s.defaultMethod,
			Amount: total,
		}
		if err := orders.CreatePendingWithPayment(ctx, orderRepo, order, orderItems, payment); err != nil {
			return err
		}

		// Deactivate every active cart, not just the one checked out,
		// so the fresh insert cannot trip carts_one_active_per_user.
		for i := range active {
			if err := cartRepo.Deactivate(ctx, active[i].ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate cart")
			}
		}
		if _, err := cartRepo.Create(ctx, &models.Cart{UserID: user.ID, IsActive: true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create fresh cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return orders.FromModel(created), nil
}

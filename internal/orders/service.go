package orders

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
)

// Service reads order history and resolves payment attempts.
type Service interface {
	ListByUser(ctx context.Context, email string) ([]OrderDTO, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (*OrderDTO, error)
}

type service struct {
	db    *db.Client
	users *users.Repository
	repo  *Repository
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	DB       *db.Client
	UserRepo *users.Repository
	Repo     *Repository
}

// NewService constructs an orders service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	return &service{db: params.DB, users: params.UserRepo, repo: params.Repo}, nil
}

func (s *service) ListByUser(ctx context.Context, email string) ([]OrderDTO, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	rows, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}
	return FromModel(order), nil
}

// ConfirmPayment resolves the order's payment attempt exactly once. A
// failed attempt leaves the order pending so the caller can retry with
// a fresh confirmation; re-confirming an already resolved payment is
// rejected without mutating anything.
func (s *service) ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (*OrderDTO, error) {
	method := enums.PaymentMethod("")
	if req.Method != "" {
		parsed, err := enums.ParsePaymentMethod(req.Method)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
		}
		method = parsed
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDLocked(ctx, req.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
		}
		if order.Payment == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order has no payment")
		}
		if order.Payment.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment already resolved")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending")
		}

		updates := map[string]any{}
		if req.Success {
			updates["status"] = enums.PaymentStatusSuccess
		} else {
			updates["status"] = enums.PaymentStatusFailed
		}
		if method != "" {
			updates["method"] = method
		}
		if req.Reference != nil {
			updates["reference"] = *req.Reference
		}
		if err := repo.UpdatePayment(ctx, order.Payment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment")
		}

		// Failure keeps the order pending so a retry stays possible.
		if req.Success {
			if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, req.OrderID)
}

// CreatePendingWithPayment writes the order, its items, and the created
// payment inside the caller's transaction. Used by checkout.
func CreatePendingWithPayment(ctx context.Context, repo *Repository, order *models.Order, items []models.OrderItem, payment *models.Payment) error {
	if _, err := repo.Create(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := repo.CreateItems(ctx, items); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order items")
	}
	payment.OrderID = order.ID
	if _, err := repo.CreatePayment(ctx, payment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
	}
	return nil
}

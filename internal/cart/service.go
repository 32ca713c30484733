package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgo/foodgo-backend/internal/catalog"
	"github.com/foodgo/foodgo-backend/internal/users"
	"github.com/foodgo/foodgo-backend/pkg/db"
	"github.com/foodgo/foodgo-backend/pkg/db/models"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
)

// Service manages the single active cart each user shops with.
type Service interface {
	Get(ctx context.Context, email string) (*CartDTO, error)
	AddItem(ctx context.Context, req AddItemRequest) (*CartDTO, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, req UpdateItemRequest) (*CartDTO, error)
	RemoveItem(ctx context.Context, email string, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, email string) (*CartDTO, error)
}

type service struct {
	db      *db.Client
	users   *users.Repository
	repo    *Repository
	catalog *catalog.Repository
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	DB          *db.Client
	UserRepo    *users.Repository
	Repo        *Repository
	CatalogRepo *catalog.Repository
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.CatalogRepo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{
		db:      params.DB,
		users:   params.UserRepo,
		repo:    params.Repo,
		catalog: params.CatalogRepo,
	}, nil
}

// Get returns the user's active cart, creating an empty one when none
// exists yet.
func (s *service) Get(ctx context.Context, email string) (*CartDTO, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var cart *models.Cart
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		cart, err = s.getOrCreateActive(ctx, s.repo.WithTx(tx), user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cartFromModel(cart), nil
}

func (s *service) AddItem(ctx context.Context, req AddItemRequest) (*CartDTO, error) {
	user, err := s.lookupUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	var cart *models.Cart
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err = s.getOrCreateActive(ctx, repo, user.ID)
		if err != nil {
			return err
		}

		product, err := s.catalog.WithTx(tx).FindAvailableProduct(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not available")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
		}

		existing, err := repo.FindItemByProduct(ctx, cart.ID, product.ID)
		switch {
		case err == nil:
			if err := repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+req.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment quantity")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				Title:     product.Title,
				Quantity:  req.Quantity,
				UnitPrice: product.Price,
			}
			if _, err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
		}

		if err := repo.Touch(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "touch cart")
		}
		return s.reload(ctx, repo, cart)
	})
	if err != nil {
		return nil, err
	}
	return cartFromModel(cart), nil
}

func (s *service) UpdateItem(ctx context.Context, itemID uuid.UUID, req UpdateItemRequest) (*CartDTO, error) {
	user, err := s.lookupUser(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	var cart *models.Cart
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err = s.getOrCreateActive(ctx, repo, user.ID)
		if err != nil {
			return err
		}

		item, err := repo.FindItemInCart(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
		}
		if err := repo.UpdateItemQuantity(ctx, item.ID, req.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update quantity")
		}
		return s.reload(ctx, repo, cart)
	})
	if err != nil {
		return nil, err
	}
	return cartFromModel(cart), nil
}

func (s *service) RemoveItem(ctx context.Context, email string, itemID uuid.UUID) (*CartDTO, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var cart *models.Cart
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err = s.getOrCreateActive(ctx, repo, user.ID)
		if err != nil {
			return err
		}

		if _, err := repo.FindItemInCart(ctx, cart.ID, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
		}
		if err := repo.DeleteItem(ctx, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove item")
		}
		return s.reload(ctx, repo, cart)
	})
	if err != nil {
		return nil, err
	}
	return cartFromModel(cart), nil
}

func (s *service) Clear(ctx context.Context, email string) (*CartDTO, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var cart *models.Cart
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err = s.getOrCreateActive(ctx, repo, user.ID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		cart.Items = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cartFromModel(cart), nil
}

// getOrCreateActive resolves the user's single active cart inside the
// caller's transaction. Duplicate active carts left by a race are
// merged into the most recently touched one; item quantities for the
// same product add up, and the losing carts are deactivated.
func (s *service) getOrCreateActive(ctx context.Context, repo *Repository, userID uuid.UUID) (*models.Cart, error) {
	for attempt := 0; ; attempt++ {
		carts, err := repo.ListActiveLocked(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list active carts")
		}

		if len(carts) == 0 {
			created, err := repo.CreateGuarded(ctx, &models.Cart{UserID: userID, IsActive: true})
			if err == nil {
				return created, nil
			}
			if attempt == 0 && db.IsUniqueViolation(err, "carts_one_active_per_user") {
				// Lost the insert race; the savepoint rollback keeps the
				// transaction usable and the winner's row is visible on
				// the next locked read.
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
		}

		winner := &carts[0]
		for i := 1; i < len(carts); i++ {
			if err := s.mergeInto(ctx, repo, winner, &carts[i]); err != nil {
				return nil, err
			}
		}

		items, err := repo.ListItems(ctx, winner.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load items")
		}
		winner.Items = items
		return winner, nil
	}
}

func (s *service) mergeInto(ctx context.Context, repo *Repository, winner, loser *models.Cart) error {
	items, err := repo.ListItems(ctx, loser.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load items")
	}
	for _, item := range items {
		existing, err := repo.FindItemByProduct(ctx, winner.ID, item.ProductID)
		switch {
		case err == nil:
			if err := repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge quantity")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			moved := &models.CartItem{
				CartID:    winner.ID,
				ProductID: item.ProductID,
				Title:     item.Title,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
			if _, err := repo.CreateItem(ctx, moved); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
		}
	}
	if err := repo.Deactivate(ctx, loser.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate cart")
	}
	return nil
}

func (s *service) reload(ctx context.Context, repo *Repository, cart *models.Cart) error {
	items, err := repo.ListItems(ctx, cart.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load items")
	}
	cart.Items = items
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

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/foodgo/foodgo-backend/pkg/config"
	"github.com/foodgo/foodgo-backend/pkg/db"
	"github.com/foodgo/foodgo-backend/pkg/db/models"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
)

// Service exposes catalog reads, writes, and the home feed.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]RestaurantDTO, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error)
	CreateRestaurant(ctx context.Context, req CreateRestaurantRequest) (*RestaurantDTO, error)
	UpdateRestaurant(ctx context.Context, id uuid.UUID, req UpdateRestaurantRequest) (*RestaurantDTO, error)
	DeleteRestaurant(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, filter ProductFilter) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	Feed(ctx context.Context, lat, lon *float64, radiusKm float64, maxResults int) (*FeedResponse, error)
}

type service struct {
	db      *db.Client
	repo    *Repository
	feedCfg config.FeedConfig
}

// ServiceParams bundles the dependencies required to build a catalog service.
type ServiceParams struct {
	DB         *db.Client
	Repo       *Repository
	FeedConfig config.FeedConfig
}

// NewService constructs a catalog service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{db: params.DB, repo: params.Repo, feedCfg: params.FeedConfig}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return categoriesFromModels(categories), nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "category")
	}
	dto := categoryFromModel(category)
	return &dto, nil
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryDTO, error) {
	category, err := s.repo.CreateCategory(ctx, &models.Category{Name: req.Name, Icon: req.Icon})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	dto := categoryFromModel(category)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryDTO, error) {
	if _, err := s.repo.FindCategory(ctx, id); err != nil {
		return nil, notFoundOrInternal(err, "category")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateCategory(ctx, id, updates); err != nil {
			if db.IsUniqueViolation(err, "") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
		}
	}
	return s.GetCategory(ctx, id)
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return notFoundOrInternal(err, "category")
	}
	return nil
}

func (s *service) ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]RestaurantDTO, error) {
	restaurants, err := s.repo.ListRestaurants(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list restaurants")
	}
	out := make([]RestaurantDTO, 0, len(restaurants))
	for i := range restaurants {
		out = append(out, restaurantFromModel(&restaurants[i]))
	}
	return out, nil
}

func (s *service) GetRestaurant(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error) {
	restaurant, err := s.repo.FindRestaurant(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "restaurant")
	}
	dto := restaurantFromModel(restaurant)
	return &dto, nil
}

func (s *service) CreateRestaurant(ctx context.Context, req CreateRestaurantRequest) (*RestaurantDTO, error) {
	categories, err := s.resolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	restaurant := &models.Restaurant{
		Name:         req.Name,
		Tags:         pq.StringArray(req.Tags),
		DeliveryFree: req.DeliveryFree,
		IsOpen:       true,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ImageURL:     req.ImageURL,
		Categories:   categories,
	}
	if restaurant.Tags == nil {
		restaurant.Tags = pq.StringArray{}
	}
	if req.Rating != nil {
		restaurant.Rating = *req.Rating
	}
	if req.ETAMin != nil {
		restaurant.ETAMin = *req.ETAMin
	}
	if req.ETAMax != nil {
		restaurant.ETAMax = *req.ETAMax
	}
	if req.IsOpen != nil {
		restaurant.IsOpen = *req.IsOpen
	}

	created, err := s.repo.CreateRestaurant(ctx, restaurant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create restaurant")
	}
	dto := restaurantFromModel(created)
	return &dto, nil
}

func (s *service) UpdateRestaurant(ctx context.Context, id uuid.UUID, req UpdateRestaurantRequest) (*RestaurantDTO, error) {
	restaurant, err := s.repo.FindRestaurant(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "restaurant")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(*req.Tags)
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.ETAMin != nil {
		updates["eta_min"] = *req.ETAMin
	}
	if req.ETAMax != nil {
		updates["eta_max"] = *req.ETAMax
	}
	if req.DeliveryFree != nil {
		updates["delivery_free"] = *req.DeliveryFree
	}
	if req.IsOpen != nil {
		updates["is_open"] = *req.IsOpen
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateRestaurant(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update restaurant")
		}
	}
	if req.CategoryIDs != nil {
		categories, err := s.resolveCategories(ctx, *req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceRestaurantCategories(ctx, restaurant, categories); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace categories")
		}
	}
	return s.GetRestaurant(ctx, id)
}

func (s *service) DeleteRestaurant(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteRestaurant(ctx, id); err != nil {
		return notFoundOrInternal(err, "restaurant")
	}
	return nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]ProductDTO, error) {
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return productsFromModels(products), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "product")
	}
	dto := productFromModel(product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if _, err := s.repo.FindRestaurant(ctx, req.RestaurantID); err != nil {
		return nil, notFoundOrInternal(err, "restaurant")
	}
	categories, err := s.resolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		RestaurantID: req.RestaurantID,
		Title:        req.Title,
		Subtitle:     req.Subtitle,
		Description:  req.Description,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		IsAvailable:  true,
		IsVeg:        req.IsVeg,
		IsSpicy:      req.IsSpicy,
		Categories:   categories,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	dto := productFromModel(created)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "product")
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Subtitle != nil {
		updates["subtitle"] = *req.Subtitle
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		updates["price"] = *req.Price
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.IsVeg != nil {
		updates["is_veg"] = *req.IsVeg
	}
	if req.IsSpicy != nil {
		updates["is_spicy"] = *req.IsSpicy
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
		}
	}
	if req.CategoryIDs != nil {
		categories, err := s.resolveCategories(ctx, *req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceProductCategories(ctx, product, categories); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace categories")
		}
	}
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return notFoundOrInternal(err, "product")
	}
	return nil
}

func (s *service) resolveCategories(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	categories, err := s.repo.FindCategoriesByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load categories")
	}
	if len(categories) != len(ids) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category id")
	}
	return categories, nil
}

func notFoundOrInternal(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup "+entity)
}

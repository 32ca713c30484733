package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgo/foodgo-backend/pkg/db/models"
)

// Repository exposes catalog persistence for categories, restaurants,
// and products.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
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

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindCategory loads one category by id.
func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory writes the provided column values.
func (r *Repository) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteCategory removes a category; join rows cascade.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RestaurantFilter narrows restaurant listings.
type RestaurantFilter struct {
	CategoryID   *uuid.UUID
	CategoryName string
	Search       string
	OpenOnly     bool
}

// ListRestaurants returns restaurants matching the filter, categories
// preloaded, in insertion order.
func (r *Repository) ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]models.Restaurant, error) {
	q := r.db.WithContext(ctx).Model(&models.Restaurant{}).Preload("Categories")

	if filter.OpenOnly {
		q = q.Where("restaurants.is_open")
	}
	if filter.CategoryID != nil || filter.CategoryName != "" {
		q = q.Joins("JOIN restaurant_categories rc ON rc.restaurant_id = restaurants.id").
			Joins("JOIN categories c ON c.id = rc.category_id")
		if filter.CategoryID != nil {
			q = q.Where("c.id = ?", *filter.CategoryID)
		}
		if filter.CategoryName != "" {
			q = q.Where("lower(c.name) = ?", strings.ToLower(filter.CategoryName))
		}
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("lower(restaurants.name) LIKE ?", pattern)
	}

	var restaurants []models.Restaurant
	if err := q.Order("restaurants.created_at ASC").Distinct("restaurants.*").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

// ListOpenInBounds returns open restaurants inside the lat/lon window,
// categories preloaded. Exact radius filtering happens in the service.
func (r *Repository) ListOpenInBounds(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("is_open").
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLon, maxLon).
		Find(&restaurants).Error
	if err != nil {
		return nil, err
	}
	return restaurants, nil
}

// FindRestaurant loads one restaurant with categories and products.
func (r *Repository) FindRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Products").
		First(&restaurant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// CreateRestaurant inserts a restaurant with its category links.
func (r *Repository) CreateRestaurant(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error) {
	if err := r.db.WithContext(ctx).Create(restaurant).Error; err != nil {
		return nil, err
	}
	return restaurant, nil
}

// UpdateRestaurant writes the provided column values.
func (r *Repository) UpdateRestaurant(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Restaurant{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ReplaceRestaurantCategories swaps the category links.
func (r *Repository) ReplaceRestaurantCategories(ctx context.Context, restaurant *models.Restaurant, categories []models.Category) error {
	return r.db.WithContext(ctx).Model(restaurant).Association("Categories").Replace(categories)
}

// DeleteRestaurant removes a restaurant; products and join rows cascade.
func (r *Repository) DeleteRestaurant(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Restaurant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	RestaurantID  *uuid.UUID
	CategoryID    *uuid.UUID
	CategoryName  string
	Search        string
	AvailableOnly bool
}

// ListProducts returns products matching the filter, categories preloaded.
func (r *Repository) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Categories")

	if filter.RestaurantID != nil {
		q = q.Where("products.restaurant_id = ?", *filter.RestaurantID)
	}
	if filter.AvailableOnly {
		q = q.Where("products.is_available")
	}
	if filter.CategoryID != nil || filter.CategoryName != "" {
		q = q.Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Joins("JOIN categories c ON c.id = pc.category_id")
		if filter.CategoryID != nil {
			q = q.Where("c.id = ?", *filter.CategoryID)
		}
		if filter.CategoryName != "" {
			q = q.Where("lower(c.name) = ?", strings.ToLower(filter.CategoryName))
		}
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Joins("JOIN restaurants rest ON rest.id = products.restaurant_id").
			Where(
				"lower(products.title) LIKE ? OR lower(coalesce(products.subtitle, '')) LIKE ? OR lower(coalesce(products.description, '')) LIKE ? OR lower(rest.name) LIKE ?",
				pattern, pattern, pattern, pattern,
			)
	}

	var products []models.Product
	if err := q.Order("products.created_at ASC").Distinct("products.*").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindProduct loads one product with its categories.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAvailableProduct loads a product only if it can be added to a cart.
func (r *Repository) FindAvailableProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_available", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a product with its category links.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct writes the provided column values.
func (r *Repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ReplaceProductCategories swaps the category links.
func (r *Repository) ReplaceProductCategories(ctx context.Context, product *models.Product, categories []models.Category) error {
	return r.db.WithContext(ctx).Model(product).Association("Categories").Replace(categories)
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindCategoriesByIDs loads the referenced categories, erroring is left
// to the caller when the count differs.
func (r *Repository) FindCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

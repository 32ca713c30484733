package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foodgo/foodgo-backend/pkg/db/models"
)

// CategoryDTO is the transport shape of a category.
type CategoryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Icon *string   `json:"icon,omitempty"`
}

// RestaurantDTO is the transport shape of a restaurant listing.
// DistanceKm is only populated by the feed.
type RestaurantDTO struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Tags         []string      `json:"tags"`
	Rating       float64       `json:"rating"`
	ETAMin       int           `json:"eta_min"`
	ETAMax       int           `json:"eta_max"`
	DeliveryFree bool          `json:"delivery_free"`
	IsOpen       bool          `json:"is_open"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	ImageURL     *string       `json:"image_url,omitempty"`
	Categories   []CategoryDTO `json:"categories"`
	DistanceKm   *float64      `json:"distance_km,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ProductDTO is the transport shape of a menu item.
type ProductDTO struct {
	ID           uuid.UUID       `json:"id"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	Title        string          `json:"title"`
	Subtitle     *string         `json:"subtitle,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     *string         `json:"image_url,omitempty"`
	IsAvailable  bool            `json:"is_available"`
	IsVeg        bool            `json:"is_veg"`
	IsSpicy      bool            `json:"is_spicy"`
	Categories   []CategoryDTO   `json:"categories"`
	CreatedAt    time.Time       `json:"created_at"`
}

// FeedResponse is the home feed payload.
type FeedResponse struct {
	Categories  []CategoryDTO   `json:"categories"`
	Restaurants []RestaurantDTO `json:"restaurants"`
}

// CreateCategoryRequest adds a category.
type CreateCategoryRequest struct {
	Name string  `json:"name" validate:"required"`
	Icon *string `json:"icon,omitempty"`
}

// UpdateCategoryRequest mutates a category.
type UpdateCategoryRequest struct {
	Name *string `json:"name,omitempty"`
	Icon *string `json:"icon,omitempty"`
}

// CreateRestaurantRequest adds a restaurant listing.
type CreateRestaurantRequest struct {
	Name         string      `json:"name" validate:"required"`
	Tags         []string    `json:"tags,omitempty"`
	Rating       *float64    `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	ETAMin       *int        `json:"eta_min,omitempty" validate:"omitempty,min=0"`
	ETAMax       *int        `json:"eta_max,omitempty" validate:"omitempty,min=0"`
	DeliveryFree bool        `json:"delivery_free"`
	IsOpen       *bool       `json:"is_open,omitempty"`
	Latitude     float64     `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude    float64     `json:"longitude" validate:"required,min=-180,max=180"`
	ImageURL     *string     `json:"image_url,omitempty"`
	CategoryIDs  []uuid.UUID `json:"category_ids,omitempty"`
}

// UpdateRestaurantRequest mutates a restaurant listing.
type UpdateRestaurantRequest struct {
	Name         *string      `json:"name,omitempty"`
	Tags         *[]string    `json:"tags,omitempty"`
	Rating       *float64     `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	ETAMin       *int         `json:"eta_min,omitempty" validate:"omitempty,min=0"`
	ETAMax       *int         `json:"eta_max,omitempty" validate:"omitempty,min=0"`
	DeliveryFree *bool        `json:"delivery_free,omitempty"`
	IsOpen       *bool        `json:"is_open,omitempty"`
	Latitude     *float64     `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64     `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	ImageURL     *string      `json:"image_url,omitempty"`
	CategoryIDs  *[]uuid.UUID `json:"category_ids,omitempty"`
}

// CreateProductRequest adds a menu item.
type CreateProductRequest struct {
	RestaurantID uuid.UUID       `json:"restaurant_id" validate:"required"`
	Title        string          `json:"title" validate:"required"`
	Subtitle     *string         `json:"subtitle,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	ImageURL     *string         `json:"image_url,omitempty"`
	IsAvailable  *bool           `json:"is_available,omitempty"`
	IsVeg        bool            `json:"is_veg"`
	IsSpicy      bool            `json:"is_spicy"`
	CategoryIDs  []uuid.UUID     `json:"category_ids,omitempty"`
}

// UpdateProductRequest mutates a menu item.
type UpdateProductRequest struct {
	Title       *string          `json:"title,omitempty"`
	Subtitle    *string          `json:"subtitle,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
	IsVeg       *bool            `json:"is_veg,omitempty"`
	IsSpicy     *bool            `json:"is_spicy,omitempty"`
	CategoryIDs *[]uuid.UUID     `json:"category_ids,omitempty"`
}

func categoryFromModel(c *models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Icon: c.Icon}
}

func categoriesFromModels(list []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(list))
	for i := range list {
		out = append(out, categoryFromModel(&list[i]))
	}
	return out
}

func restaurantFromModel(r *models.Restaurant) RestaurantDTO {
	return RestaurantDTO{
		ID:           r.ID,
		Name:         r.Name,
		Tags:         append([]string(nil), r.Tags...),
		Rating:       r.Rating,
		ETAMin:       r.ETAMin,
		ETAMax:       r.ETAMax,
		DeliveryFree: r.DeliveryFree,
		IsOpen:       r.IsOpen,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		ImageURL:     r.ImageURL,
		Categories:   categoriesFromModels(r.Categories),
		CreatedAt:    r.CreatedAt,
	}
}

func productFromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		RestaurantID: p.RestaurantID,
		Title:        p.Title,
		Subtitle:     p.Subtitle,
		Description:  p.Description,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		IsAvailable:  p.IsAvailable,
		IsVeg:        p.IsVeg,
		IsSpicy:      p.IsSpicy,
		Categories:   categoriesFromModels(p.Categories),
		CreatedAt:    p.CreatedAt,
	}
}

func productsFromModels(list []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, productFromModel(&list[i]))
	}
	return out
}

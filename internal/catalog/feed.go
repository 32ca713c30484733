package catalog

import (
	"context"
	"sort"

	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
	"github.com/foodgo/foodgo-backend/pkg/geo"
)

// Feed returns open restaurants near the point, or every open
// restaurant when no coordinates are available.
//
// With coordinates: candidates come from a bounding box of
// ±radiusKm/111° around the point, are filtered to exact Haversine
// distance ≤ radiusKm, sorted by distance ascending then rating
// descending, and truncated to maxResults. Returned categories are the
// union of categories on the returned restaurants. Without
// coordinates: insertion-ordered open restaurants up to maxResults and
// all categories.
func (s *service) Feed(ctx context.Context, lat, lon *float64, radiusKm float64, maxResults int) (*FeedResponse, error) {
	if radiusKm <= 0 {
		radiusKm = s.feedCfg.MaxRadiusKm
	}
	if maxResults <= 0 {
		maxResults = s.feedCfg.MaxRestaurants
	}

	if lat == nil || lon == nil {
		return s.feedWithoutPoint(ctx, maxResults)
	}
	return s.feedAroundPoint(ctx, *lat, *lon, radiusKm, maxResults)
}

func (s *service) feedWithoutPoint(ctx context.Context, maxResults int) (*FeedResponse, error) {
	restaurants, err := s.repo.ListRestaurants(ctx, RestaurantFilter{OpenOnly: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list restaurants")
	}
	if len(restaurants) > maxResults {
		restaurants = restaurants[:maxResults]
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}

	out := make([]RestaurantDTO, 0, len(restaurants))
	for i := range restaurants {
		out = append(out, restaurantFromModel(&restaurants[i]))
	}
	return &FeedResponse{
		Categories:  categoriesFromModels(categories),
		Restaurants: out,
	}, nil
}

func (s *service) feedAroundPoint(ctx context.Context, lat, lon, radiusKm float64, maxResults int) (*FeedResponse, error) {
	minLat, maxLat, minLon, maxLon := geo.BoundingBox(lat, lon, radiusKm)
	candidates, err := s.repo.ListOpenInBounds(ctx, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list restaurants in bounds")
	}

	type scored struct {
		dto      RestaurantDTO
		distance float64
	}
	nearby := make([]scored, 0, len(candidates))
	for i := range candidates {
		r := &candidates[i]
		distance := geo.DistanceKm(lat, lon, r.Latitude, r.Longitude)
		if distance > radiusKm {
			continue
		}
		dto := restaurantFromModel(r)
		d := distance
		dto.DistanceKm = &d
		nearby = append(nearby, scored{dto: dto, distance: distance})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].distance != nearby[j].distance {
			return nearby[i].distance < nearby[j].distance
		}
		return nearby[i].dto.Rating > nearby[j].dto.Rating
	})
	if len(nearby) > maxResults {
		nearby = nearby[:maxResults]
	}

	restaurants := make([]RestaurantDTO, 0, len(nearby))
	seen := map[string]bool{}
	categories := make([]CategoryDTO, 0)
	for _, entry := range nearby {
		restaurants = append(restaurants, entry.dto)
		for _, c := range entry.dto.Categories {
			key := c.ID.String()
			if !seen[key] {
				seen[key] = true
				categories = append(categories, c)
			}
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	return &FeedResponse{Categories: categories, Restaurants: restaurants}, nil
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/foodgo/foodgo-backend/api/responses"
	"github.com/foodgo/foodgo-backend/api/validators"
	catalogsvc "github.com/foodgo/foodgo-backend/internal/catalog"
	locationsvc "github.com/foodgo/foodgo-backend/internal/location"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
	"github.com/foodgo/foodgo-backend/pkg/logger"
)

// HomeFeed returns nearby open restaurants plus a category strip.
// Coordinates come from the query when given, otherwise from the
// caller's saved location; with neither, the feed degrades to every
// open restaurant and all categories.
func HomeFeed(catalog catalogsvc.Service, location locationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, err := validators.ParseQueryFloat(r, "lat")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lon, err := validators.ParseQueryFloat(r, "lon")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		radius, err := validators.ParseQueryFloat(r, "radius_km")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if lat == nil || lon == nil {
			if email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email"))); email != "" {
				loc, err := location.Resolve(r.Context(), email)
				switch {
				case err == nil:
					lat, lon = &loc.Latitude, &loc.Longitude
				case isNotFound(err):
					// Fall through to the coordinate-free feed.
				default:
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
		}

		radiusKm := 0.0
		if radius != nil {
			if *radius <= 0 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "radius_km must be positive"))
				return
			}
			radiusKm = *radius
		}

		out, err := catalog.Feed(r.Context(), lat, lon, radiusKm, 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func isNotFound(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeNotFound
}

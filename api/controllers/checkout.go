package controllers

import (
	"net/http"

	"github.com/foodgo/foodgo-backend/api/responses"
	"github.com/foodgo/foodgo-backend/api/validators"
	checkoutsvc "github.com/foodgo/foodgo-backend/internal/checkout"
	"github.com/foodgo/foodgo-backend/pkg/logger"
)

// Checkout converts the active cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutsvc.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.CreateOrder(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

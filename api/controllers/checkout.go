package controllers

import (
	"net/http"

	"github.com/angelmondragon/farmfresh-backend/api/middleware"
	"github.com/angelmondragon/farmfresh-backend/api/responses"
	"github.com/angelmondragon/farmfresh-backend/api/validators"
	"github.com/angelmondragon/farmfresh-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/types"
)

// checkoutAddress leaves presence checks to the order service.
type checkoutAddress struct {
	Street     string `json:"street" validate:"max=200"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
}

type checkoutRequest struct {
	DeliveryAddress checkoutAddress `json:"delivery_address"`
	Notes           string          `json:"notes,omitempty" validate:"max=500"`
}

// Checkout turns the caller's cart into an order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), orders.CheckoutInput{
			UserID:    middleware.UserIDFromContext(r.Context()),
			ProfileID: middleware.CartProfileFromContext(r.Context()),
			DeliveryAddress: types.Address{
				Street:     body.DeliveryAddress.Street,
				City:       body.DeliveryAddress.City,
				PostalCode: body.DeliveryAddress.PostalCode,
			},
			Notes: validators.SanitizeString(body.Notes, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

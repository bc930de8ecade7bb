package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmfresh-backend/api/middleware"
	"github.com/angelmondragon/farmfresh-backend/api/responses"
	"github.com/angelmondragon/farmfresh-backend/api/validators"
	"github.com/angelmondragon/farmfresh-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  *int   `json:"quantity,omitempty" validate:"omitempty,min=1,max=99"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=99"`
}

type cartResponse struct {
	Items       []cart.LineItem `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Summary     cart.Summary    `json:"summary"`
}

func newCartResponse(c *cart.Cart, deliveryFee decimal.Decimal) cartResponse {
	if c == nil {
		c = cart.New()
	}
	items := c.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return cartResponse{
		Items:       items,
		TotalItems:  c.TotalItems,
		TotalAmount: c.TotalAmount,
		Summary:     cart.Summarize(c, deliveryFee),
	}
}

func cartProfile(r *http.Request) (string, error) {
	profile := middleware.CartProfileFromContext(r.Context())
	if profile == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session or login required").
			WithDetails(map[string]any{"header": middleware.CartSessionHeader})
	}
	return profile, nil
}

func CartGet(svc cart.Service, deliveryFee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := cartProfile(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Get(r.Context(), profile)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c, deliveryFee))
	}
}

// CartAddItem adds a product to the cart; quantity defaults to one.
func CartAddItem(svc cart.Service, deliveryFee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := cartProfile(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := 1
		if body.Quantity != nil {
			qty = *body.Quantity
		}

		c, err := svc.AddItem(r.Context(), profile, strings.TrimSpace(body.ProductID), qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(c, deliveryFee))
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(svc cart.Service, deliveryFee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := cartProfile(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		c, err := svc.SetQuantity(r.Context(), profile, productID, *body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c, deliveryFee))
	}
}

func CartRemoveItem(svc cart.Service, deliveryFee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := cartProfile(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		c, err := svc.RemoveItem(r.Context(), profile, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c, deliveryFee))
	}
}

func CartClear(svc cart.Service, deliveryFee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := cartProfile(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), profile); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cart.New(), deliveryFee))
	}
}

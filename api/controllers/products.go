package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/farmfresh-backend/api/responses"
	"github.com/angelmondragon/farmfresh-backend/api/validators"
	product "github.com/angelmondragon/farmfresh-backend/internal/products"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
)

const maxSearchLength = 100

// ProductsList serves the filtered, sorted and paginated catalog.
func ProductsList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseListProductsInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseListProductsInput(r *http.Request) (product.ListProductsInput, error) {
	var input product.ListProductsInput

	page, err := validators.ParsePagination(r)
	if err != nil {
		return input, err
	}
	input.Pagination = page

	q := r.URL.Query()
	f := product.ListFilters{
		Category: validators.SanitizeString(q.Get("category"), 64),
		FarmerID: validators.SanitizeString(q.Get("farmer_id"), 64),
		Query:    validators.SanitizeString(q.Get("q"), maxSearchLength),
	}

	if f.InStock, err = validators.ParseQueryBool(r, "in_stock"); err != nil {
		return input, err
	}
	if f.Organic, err = validators.ParseQueryBool(r, "organic"); err != nil {
		return input, err
	}
	if f.PriceMin, err = validators.ParseQueryDecimal(r, "min_price"); err != nil {
		return input, err
	}
	if f.PriceMax, err = validators.ParseQueryDecimal(r, "max_price"); err != nil {
		return input, err
	}
	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price")
	}
	if f.MinRating, err = validators.ParseQueryFloat(r, "min_rating", 0, 5); err != nil {
		return input, err
	}
	if f.Sort, err = product.ParseSortOrder(q.Get("sort")); err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").
			WithDetails(map[string]any{"field": "sort"})
	}

	input.Filters = f
	return input, nil
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		p, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}

func ProductCategories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func ProductsFeatured(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Featured(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func ProductsSeasonal(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Seasonal(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

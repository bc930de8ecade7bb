package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/farmfresh-backend/api/responses"
	"github.com/angelmondragon/farmfresh-backend/api/validators"
	"github.com/angelmondragon/farmfresh-backend/internal/farmers"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
)

func FarmersList(svc farmers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filters := farmers.ListFilters{
			Location:  validators.SanitizeString(q.Get("location"), 64),
			Specialty: validators.SanitizeString(q.Get("specialty"), 64),
		}
		list, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func FarmerGet(svc farmers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmer, err := svc.Get(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, farmer)
	}
}

// FarmerProducts lists the catalog entries grown by one farmer.
func FarmerProducts(svc farmers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Products(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

package controllers

import (
	"net/http"

	"github.com/sunshinecoast4wd/booking-engine/api/responses"
	"github.com/sunshinecoast4wd/booking-engine/api/validators"
	"github.com/sunshinecoast4wd/booking-engine/internal/catalog"
	"github.com/sunshinecoast4wd/booking-engine/internal/compat"
	"github.com/sunshinecoast4wd/booking-engine/internal/flow"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
)

func CatalogListing(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := svc.Listing(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

func CatalogTours(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tours, err := svc.Tours(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"tours": tours})
	}
}

// CatalogAddOns lists catalog add-ons, restricted to one tour's applicable
// set when a tour query parameter is present.
func CatalogAddOns(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addons, err := svc.AddOns(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if tour := validators.SanitizeString(r.URL.Query().Get("tour"), 120); tour != "" {
			if _, err := svc.TourByHandle(r.Context(), tour); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			addons = compat.FilterForTour(addons, tour)
		}
		responses.WriteSuccess(w, map[string]any{"addons": addons})
	}
}

// CategorySteps renders the ordered wizard steps for a tour without touching
// session state, so storefront pages can show the stepper before a cart
// exists.
func CategorySteps(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tour := validators.SanitizeString(r.URL.Query().Get("tour"), 120)
		if tour == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "tour query parameter is required"))
			return
		}
		if _, err := svc.TourByHandle(r.Context(), tour); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addons, err := svc.AddOns(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"steps": flow.BuildSteps(addons, tour)})
	}
}

// CatalogRefresh forces a backend fetch, bypassing the cache. Meant for
// operational use after catalog edits.
func CatalogRefresh(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Refresh(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "refreshed"})
	}
}

package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sunshinecoast4wd/booking-engine/api/middleware"
	"github.com/sunshinecoast4wd/booking-engine/api/responses"
	"github.com/sunshinecoast4wd/booking-engine/api/validators"
	"github.com/sunshinecoast4wd/booking-engine/internal/booking"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
)

type setTourRequest struct {
	TourHandle   string `json:"tour_handle" validate:"required"`
	StartDate    string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Participants int    `json:"participants,omitempty" validate:"omitempty,min=1,max=99"`
}

type setParticipantsRequest struct {
	Participants int `json:"participants" validate:"required,min=1,max=99"`
}

type addAddOnRequest struct {
	AddOnID  string `json:"addon_id" validate:"required"`
	Quantity int    `json:"quantity,omitempty" validate:"omitempty,min=1,max=99"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0,max=99"`
}

func CartFetch(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := svc.Cart(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartSetTour(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setTourRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := booking.SetTourInput{
			TourHandle:   validators.SanitizeString(req.TourHandle, 120),
			Participants: req.Participants,
		}
		if req.StartDate != "" {
			start, err := time.Parse(time.DateOnly, req.StartDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "start_date must be YYYY-MM-DD"))
				return
			}
			input.StartDate = &start
		}

		result, err := svc.SetTour(r.Context(), middleware.SessionIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartSetParticipants(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setParticipantsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cart, err := svc.SetParticipants(r.Context(), middleware.SessionIDFromContext(r.Context()), req.Participants)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartAddAddOn(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addAddOnRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		cart, err := svc.AddAddOn(r.Context(), middleware.SessionIDFromContext(r.Context()), booking.AddAddOnInput{
			AddOnID:  validators.SanitizeString(req.AddOnID, 120),
			Quantity: quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartUpdateAddOn sets a line quantity; zero removes the line.
func CartUpdateAddOn(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addonID := chi.URLParam(r, "addonId")
		cart, err := svc.UpdateAddOnQuantity(r.Context(), middleware.SessionIDFromContext(r.Context()), addonID, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartRemoveAddOn(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addonID := chi.URLParam(r, "addonId")
		cart, err := svc.RemoveAddOn(r.Context(), middleware.SessionIDFromContext(r.Context()), addonID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartClear(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearCart(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

package controllers

import (
	"net/http"

	"github.com/sunshinecoast4wd/booking-engine/api/middleware"
	"github.com/sunshinecoast4wd/booking-engine/api/responses"
	"github.com/sunshinecoast4wd/booking-engine/api/validators"
	"github.com/sunshinecoast4wd/booking-engine/internal/booking"
	"github.com/sunshinecoast4wd/booking-engine/internal/catalog"
	"github.com/sunshinecoast4wd/booking-engine/internal/compat"
	"github.com/sunshinecoast4wd/booking-engine/internal/recommend"
	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

type goToStepRequest struct {
	Step int `json:"step" validate:"min=0"`
}

func FlowSteps(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Steps(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func FlowNext(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return flowTransition(logg, func(r *http.Request) (*booking.FlowView, error) {
		return svc.NextStep(r.Context(), middleware.SessionIDFromContext(r.Context()))
	})
}

func FlowSkip(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return flowTransition(logg, func(r *http.Request) (*booking.FlowView, error) {
		return svc.SkipStep(r.Context(), middleware.SessionIDFromContext(r.Context()))
	})
}

func FlowPrevious(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return flowTransition(logg, func(r *http.Request) (*booking.FlowView, error) {
		return svc.PreviousStep(r.Context(), middleware.SessionIDFromContext(r.Context()))
	})
}

func FlowGoTo(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req goToStepRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GoToStep(r.Context(), middleware.SessionIDFromContext(r.Context()), req.Step)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func FlowReset(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return flowTransition(logg, func(r *http.Request) (*booking.FlowView, error) {
		return svc.ResetFlow(r.Context(), middleware.SessionIDFromContext(r.Context()))
	})
}

func flowTransition(logg *logger.Logger, apply func(*http.Request) (*booking.FlowView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := apply(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Recommendations scores add-ons for the session's cart. With a tour query
// parameter it ranks against that tour instead, optionally overriding
// lodging and drive_mode, so product pages can recommend before a cart
// exists.
func Recommendations(catalogSvc catalog.Service, svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var recs []types.RecommendedAddOn
		if tour := validators.SanitizeString(r.URL.Query().Get("tour"), 120); tour != "" {
			recs, err = statelessRecommendations(r, catalogSvc, tour)
		} else {
			recs, err = svc.Recommendations(r.Context(), middleware.SessionIDFromContext(r.Context()))
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(recs) > limit {
			recs = recs[:limit]
		}
		responses.WriteSuccess(w, map[string]any{"recommendations": recs})
	}
}

func statelessRecommendations(r *http.Request, catalogSvc catalog.Service, tour string) ([]types.RecommendedAddOn, error) {
	t, err := catalogSvc.TourByHandle(r.Context(), tour)
	if err != nil {
		return nil, err
	}
	participants, err := validators.ParseQueryInt(r, "participants", 1, 1, 99)
	if err != nil {
		return nil, err
	}

	bctx := types.BookingContext{
		DurationDays: t.DurationDays,
		Participants: participants,
		Lodging:      t.Lodging,
		DriveMode:    t.DriveMode,
	}
	if v := r.URL.Query().Get("lodging"); v != "" {
		parsed, err := enums.ParseLodging(v)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid lodging")
		}
		bctx.Lodging = parsed
	}
	if v := r.URL.Query().Get("drive_mode"); v != "" {
		parsed, err := enums.ParseDriveMode(v)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid drive_mode")
		}
		bctx.DriveMode = parsed
	}

	addons, err := catalogSvc.AddOns(r.Context())
	if err != nil {
		return nil, err
	}
	return recommend.Recommend(compat.FilterForTour(addons, t.Handle), bctx), nil
}

package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunshinecoast4wd/booking-engine/internal/booking"
	"github.com/sunshinecoast4wd/booking-engine/internal/catalog"
	"github.com/sunshinecoast4wd/booking-engine/pkg/config"
	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/storage"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

type stubCatalog struct {
	listing catalog.Listing
}

func (s *stubCatalog) Listing(ctx context.Context) (*catalog.Listing, error) {
	return &s.listing, nil
}

func (s *stubCatalog) AddOns(ctx context.Context) ([]types.AddOn, error) {
	return s.listing.AddOns, nil
}

func (s *stubCatalog) Tours(ctx context.Context) ([]types.Tour, error) {
	return s.listing.Tours, nil
}

func (s *stubCatalog) TourByHandle(ctx context.Context, handle string) (*types.Tour, error) {
	for _, tour := range s.listing.Tours {
		if tour.Handle == handle {
			t := tour
			return &t, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tour not found")
}

func (s *stubCatalog) Refresh(ctx context.Context) error { return nil }

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "router-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	catalogService := &stubCatalog{listing: catalog.Listing{
		Tours: []types.Tour{{
			ID:             "tour_noosa",
			Handle:         "1d-noosa",
			Title:          "Noosa Day Trip",
			BasePriceMinor: 18900,
			CurrencyCode:   "AUD",
			DurationDays:   1,
		}},
		AddOns: []types.AddOn{{
			ID:             "picnic",
			Handle:         "addon-picnic",
			Title:          "Picnic Hamper",
			Category:       "Food & Beverage",
			PricingUnit:    enums.PricingUnitPerBooking,
			BasePriceMinor: 8500,
			CurrencyCode:   "AUD",
			Available:      true,
			Metadata:       &types.AddOnMetadata{ApplicableTours: []string{"*"}, QuantityAllowed: true},
		}},
	}}

	bookingService, err := booking.NewService(booking.ServiceParams{
		Catalog:    catalogService,
		Snapshots:  storage.NewMemorySnapshots(),
		Logger:     logg,
		SyncInline: true,
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(cfg, logg, nil, nil, nil, catalogService, bookingService)
}

func doJSON(t *testing.T, handler http.Handler, method, path, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set("X-Booking-Session", session)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthLive(t *testing.T) {
	t.Parallel()
	rec := doJSON(t, testRouter(t), http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Booking-Env"))
}

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/catalog/tours", "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Data struct {
			Tours []types.Tour `json:"tours"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data.Tours, 1)
	assert.Equal(t, "1d-noosa", payload.Data.Tours[0].Handle)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/catalog/addons", "sess-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionHeaderMintedWhenMissing(t *testing.T) {
	t.Parallel()
	rec := doJSON(t, testRouter(t), http.MethodGet, "/api/v1/cart/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Booking-Session"))
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/tour", "sess-1",
		`{"tour_handle":"1d-noosa","participants":2,"start_date":"2026-10-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/addons", "sess-1",
		`{"addon_id":"picnic","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Data booking.CartView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data.Lines, 1)
	assert.Equal(t, 2, payload.Data.Lines[0].Quantity)
	assert.Equal(t, int64(2*18900+2*8500), payload.Data.Totals.TotalMinor)

	// Sessions are isolated: a second session sees an empty cart.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart/", "sess-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Empty(t, payload.Data.Lines)

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/cart/addons/picnic", "sess-1", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Empty(t, payload.Data.Lines)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/cart/", "sess-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidationErrorsSurfaceAs400(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/tour", "sess-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/tour", "sess-1",
		`{"tour_handle":"1d-noosa","start_date":"01/10/2026"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/tour", "sess-1",
		`{"tour_handle":"9d-atlantis"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlowEndpoints(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/tour", "sess-1", `{"tour_handle":"1d-noosa"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/flow/steps", "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Data booking.FlowView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data.Steps, 1)
	assert.Equal(t, "Food & Beverage", payload.Data.Steps[0].CategoryName)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/flow/next", "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.Data.OnSummary)

	// Advancing past the summary is a state conflict.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/flow/next", "sess-1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/flow/goto", "sess-1", `{"step":0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecommendationsEndpoint(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/tour", "sess-1", `{"tour_handle":"1d-noosa","participants":4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/recommendations", "sess-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCategoryStepsEndpoint(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/catalog/category-steps?tour=1d-noosa", "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Data struct {
			Steps []types.CategoryStep `json:"steps"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data.Steps, 1)
	assert.Equal(t, "Food & Beverage", payload.Data.Steps[0].CategoryName)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/catalog/category-steps", "sess-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/catalog/category-steps?tour=9d-atlantis", "sess-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatelessRecommendations(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	// No cart needed when a tour is named directly.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/recommendations?tour=1d-noosa&participants=4", "sess-fresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/recommendations?tour=1d-noosa&lodging=nonsense", "sess-fresh", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/recommendations?tour=9d-atlantis", "sess-fresh", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlowResetEndpoint(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/tour", "sess-1", `{"tour_handle":"1d-noosa"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/flow/next", "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/flow/reset", "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Data booking.FlowView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.False(t, payload.Data.OnSummary)
	require.NotNil(t, payload.Data.Current)
	assert.Equal(t, 0, payload.Data.Current.Index)
}

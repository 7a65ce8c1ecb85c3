package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunshinecoast4wd/booking-engine/internal/catalog"
	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/storage"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

type fakeCatalog struct {
	listing catalog.Listing
	err     error
}

func (f *fakeCatalog) Listing(ctx context.Context) (*catalog.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.listing, nil
}

func (f *fakeCatalog) AddOns(ctx context.Context) ([]types.AddOn, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listing.AddOns, nil
}

func (f *fakeCatalog) Tours(ctx context.Context) ([]types.Tour, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listing.Tours, nil
}

func (f *fakeCatalog) TourByHandle(ctx context.Context, handle string) (*types.Tour, error) {
	for _, tour := range f.listing.Tours {
		if tour.Handle == handle {
			t := tour
			return &t, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tour not found")
}

func (f *fakeCatalog) Refresh(ctx context.Context) error {
	return f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "booking-test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

func testAddOn(id, category string, price int64, unit enums.PricingUnit, tours ...string) types.AddOn {
	return types.AddOn{
		ID:             id,
		Handle:         "addon-" + id,
		VariantID:      "var_" + id,
		Title:          id,
		Category:       category,
		PricingUnit:    unit,
		BasePriceMinor: price,
		CurrencyCode:   "AUD",
		Available:      true,
		Metadata:       &types.AddOnMetadata{ApplicableTours: tours, QuantityAllowed: true},
	}
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{listing: catalog.Listing{
		Tours: []types.Tour{
			{
				ID:              "tour_fraser",
				Handle:          "3d-fraser-rainbow",
				VariantID:       "var_fraser",
				Title:           "Fraser Island and Rainbow Beach",
				BasePriceMinor:  54900,
				CurrencyCode:    "AUD",
				DurationDays:    3,
				MaxParticipants: 6,
				Lodging:         enums.LodgingCamping,
				DriveMode:       enums.DriveModeSelfDrive,
			},
			{
				ID:             "tour_noosa",
				Handle:         "1d-noosa",
				VariantID:      "var_noosa",
				Title:          "Noosa Day Trip",
				BasePriceMinor: 18900,
				CurrencyCode:   "AUD",
				DurationDays:   1,
				DriveMode:      enums.DriveModeGuided,
			},
		},
		AddOns: []types.AddOn{
			testAddOn("bbq", "Food & Beverage", 18000, enums.PricingUnitPerDay, "*"),
			testAddOn("picnic", "Food & Beverage", 8500, enums.PricingUnitPerBooking, "*"),
			testAddOn("gopro", "Photography", 6000, enums.PricingUnitPerDay, "*"),
			testAddOn("fraser-permit", "Activities", 4500, enums.PricingUnitPerBooking, "3d-fraser-rainbow"),
		},
	}}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Catalog:    testCatalog(),
		Snapshots:  storage.NewMemorySnapshots(),
		Logger:     testLogger(),
		SyncInline: true,
	})
	require.NoError(t, err)
	return svc
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewService(ServiceParams{Snapshots: storage.NewMemorySnapshots(), Logger: testLogger()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = NewService(ServiceParams{Catalog: testCatalog(), Logger: testLogger()})
	require.Error(t, err)

	_, err = NewService(ServiceParams{Catalog: testCatalog(), Snapshots: storage.NewMemorySnapshots()})
	require.Error(t, err)
}

func TestSetTourBuildsCartAndFlow(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	start := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	result, err := svc.SetTour(ctx, "sess-1", SetTourInput{
		TourHandle:   "3d-fraser-rainbow",
		StartDate:    &start,
		Participants: 4,
	})
	require.NoError(t, err)

	require.NotNil(t, result.Cart.Tour)
	assert.Equal(t, "3d-fraser-rainbow", result.Cart.Tour.Handle)
	assert.Equal(t, 4, result.Cart.Participants)
	require.NotNil(t, result.Cart.TourStartDate)
	assert.Equal(t, "2026-09-12", *result.Cart.TourStartDate)
	assert.Empty(t, result.Removed)

	// 4 participants over 3 days at $549 per person.
	assert.Equal(t, int64(4*54900), result.Cart.Totals.TourTotalMinor)
	assert.Equal(t, "$2196.00", result.Cart.Totals.TourTotalDisplay)

	// Every compatible category becomes a step, starting at the first.
	require.Len(t, result.Flow.Steps, 3)
	assert.Equal(t, "Food & Beverage", result.Flow.Steps[0].CategoryName)
	assert.Equal(t, "Photography", result.Flow.Steps[1].CategoryName)
	assert.Equal(t, "Activities", result.Flow.Steps[2].CategoryName)
	require.NotNil(t, result.Flow.Current)
	assert.Equal(t, 0, result.Flow.Current.Index)
	assert.True(t, result.Flow.IsFirstStep)
}

func TestSetTourUnknownHandle(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.SetTour(context.Background(), "sess-1", SetTourInput{TourHandle: "9d-atlantis"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestAddAddOnComputesTotalsAndMarksStep(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetTour(ctx, "sess-1", SetTourInput{TourHandle: "3d-fraser-rainbow", Participants: 2})
	require.NoError(t, err)

	cart, err := svc.AddAddOn(ctx, "sess-1", AddAddOnInput{AddOnID: "bbq", Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)

	// Per-day pricing over a 3 day tour.
	assert.Equal(t, int64(54000), cart.Lines[0].LineTotalMinor)
	assert.Equal(t, "$540.00", cart.Lines[0].LineTotalDisplay)
	assert.Equal(t, "$180.00/day", cart.Lines[0].UnitPriceDisplay)
	assert.Equal(t, int64(2*54900+54000), cart.Totals.TotalMinor)

	// Choosing from a category counts as engaging with its step.
	view, err := svc.Steps(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, view.Current)
	assert.True(t, view.Current.Completed)
	assert.False(t, view.Current.Skipped)
}

func TestAddAddOnUnknownID(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetTour(ctx, "sess-1", SetTourInput{TourHandle: "1d-noosa"})
	require.NoError(t, err)

	_, err = svc.AddAddOn(ctx, "sess-1", AddAddOnInput{AddOnID: "jetski", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestTourChangeDropsIncompatibleSelections(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetTour(ctx, "sess-1", SetTourInput{TourHandle: "3d-fraser-rainbow"})
	require.NoError(t, err)
	_, err = svc.AddAddOn(ctx, "sess-1", AddAddOnInput{AddOnID: "fraser-permit", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddAddOn(ctx, "sess-1", AddAddOnInput{AddOnID: "picnic", Quantity: 1})
	require.NoError(t, err)

	result, err := svc.SetTour(ctx, "sess-1", SetTourInput{TourHandle: "1d-noosa"})
	require.NoError(t, err)

	require.Len(t, result.Removed, 1)
	assert.Equal(t, "fraser-permit", result.Removed[0].AddOn.ID)
	require.Len(t, result.Cart.Lines, 1)
	assert.Equal(t, "picnic", result.Cart.Lines[0].AddOn.ID)

	// The Activities category only had the permit; the wizard shrinks.
	require.Len(t, result.Flow.Steps, 2)
	assert.Equal(t, "Food & Beverage", result.Flow.Steps[0].CategoryName)
	assert.Equal(t, "Photography", result.Flow.Steps[1].CategoryName)
	assert.Equal(t, int64(18900+8500), result.Cart.Totals.TotalMinor)
}

func TestFlowTransitionsPersistAcrossCalls(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetTour(ctx, "sess-1", SetTourInput{TourHandle: "3d-fraser-rainbow"})
	require.NoError(t, err)

	view, err := svc.NextStep(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, view.Current)
	assert.Equal(t, 1, view.Current.Index)

	view, err = svc.SkipStep(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Current.Index)

	// Each call rebuilds the session from snapshots.
	view, err = svc.Steps(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Current.Index)

	view, err = svc.NextStep(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, view.OnSummary)
	assert.Equal(t, 100, view.Progress)

	_, err = svc.NextStep(ctx, "sess-1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	view, err = svc.PreviousStep(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Current.Index)

	view, err = svc.GoToStep(ctx, "sess-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Current.Index)
}

func TestSessionsAreIsolated(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetTour(ctx, "sess-a", SetTourInput{TourHandle: "3d-fraser-rainbow"})
	require.NoError(t, err)

	cart, err := svc.Cart(ctx, "sess-b")
	require.NoError(t, err)
	assert.Nil(t, cart.Tour)
	assert.Empty(t, cart.Lines)
}

func TestClearCartResetsCartAndFlow(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetTour(ctx, "sess-1", SetTourInput{TourHandle: "3d-fraser-rainbow"})
	require.NoError(t, err)
	_, err = svc.AddAddOn(ctx, "sess-1", AddAddOnInput{AddOnID: "bbq", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.NextStep(ctx, "sess-1")
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "sess-1"))

	cart, err := svc.Cart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, cart.Tour)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 1, cart.Participants)
	assert.Equal(t, int64(0), cart.Totals.TotalMinor)

	view, err := svc.Steps(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, view.Current)
	assert.Equal(t, 0, view.Current.Index)
	assert.False(t, view.Current.Completed)
}

func TestRecommendationsRequireTour(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	recs, err := svc.Recommendations(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendationsExcludeIncompatible(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetTour(ctx, "sess-1", SetTourInput{TourHandle: "1d-noosa", Participants: 2})
	require.NoError(t, err)

	recs, err := svc.Recommendations(ctx, "sess-1")
	require.NoError(t, err)
	for _, rec := range recs {
		assert.NotEqual(t, "fraser-permit", rec.AddOn.ID)
	}
}

func TestQuantityUpdateAndRemove(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetTour(ctx, "sess-1", SetTourInput{TourHandle: "1d-noosa"})
	require.NoError(t, err)
	_, err = svc.AddAddOn(ctx, "sess-1", AddAddOnInput{AddOnID: "picnic", Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.UpdateAddOnQuantity(ctx, "sess-1", "picnic", 3)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)

	cart, err = svc.UpdateAddOnQuantity(ctx, "sess-1", "picnic", 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	_, err = svc.AddAddOn(ctx, "sess-1", AddAddOnInput{AddOnID: "gopro", Quantity: 1})
	require.NoError(t, err)
	cart, err = svc.RemoveAddOn(ctx, "sess-1", "gopro")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestResetFlowKeepsCart(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetTour(ctx, "sess-1", SetTourInput{TourHandle: "3d-fraser-rainbow"})
	require.NoError(t, err)
	_, err = svc.AddAddOn(ctx, "sess-1", AddAddOnInput{AddOnID: "picnic", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.NextStep(ctx, "sess-1")
	require.NoError(t, err)
	_, err = svc.SkipStep(ctx, "sess-1")
	require.NoError(t, err)

	view, err := svc.ResetFlow(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, view.Current)
	assert.Equal(t, 0, view.Current.Index)
	assert.False(t, view.Current.Completed)
	assert.False(t, view.OnSummary)

	cart, err := svc.Cart(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, cart.Tour)
	assert.Len(t, cart.Lines, 1)
}

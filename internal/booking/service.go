// Package booking is the orchestration layer of the storefront engine. It
// wires the catalog, the session cart and the category wizard together so
// the API surface deals in whole views instead of raw engine state.
package booking

import (
	"context"
	"time"

	"github.com/sunshinecoast4wd/booking-engine/internal/cartstore"
	"github.com/sunshinecoast4wd/booking-engine/internal/catalog"
	"github.com/sunshinecoast4wd/booking-engine/internal/compat"
	"github.com/sunshinecoast4wd/booking-engine/internal/flow"
	"github.com/sunshinecoast4wd/booking-engine/internal/recommend"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/metrics"
	"github.com/sunshinecoast4wd/booking-engine/pkg/storage"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

// Service exposes the storefront booking operations. Every call is scoped to
// a booking session; session state lives in the snapshot slots, so the
// service itself is stateless and shared.
type Service interface {
	Cart(ctx context.Context, sessionID string) (*CartView, error)
	SetTour(ctx context.Context, sessionID string, input SetTourInput) (*TourChangeResult, error)
	SetParticipants(ctx context.Context, sessionID string, participants int) (*CartView, error)
	AddAddOn(ctx context.Context, sessionID string, input AddAddOnInput) (*CartView, error)
	RemoveAddOn(ctx context.Context, sessionID, addonID string) (*CartView, error)
	UpdateAddOnQuantity(ctx context.Context, sessionID, addonID string, quantity int) (*CartView, error)
	ClearCart(ctx context.Context, sessionID string) error

	Steps(ctx context.Context, sessionID string) (*FlowView, error)
	NextStep(ctx context.Context, sessionID string) (*FlowView, error)
	SkipStep(ctx context.Context, sessionID string) (*FlowView, error)
	PreviousStep(ctx context.Context, sessionID string) (*FlowView, error)
	GoToStep(ctx context.Context, sessionID string, step int) (*FlowView, error)
	ResetFlow(ctx context.Context, sessionID string) (*FlowView, error)

	Recommendations(ctx context.Context, sessionID string) ([]types.RecommendedAddOn, error)
}

// SetTourInput selects the booked tour by handle.
type SetTourInput struct {
	TourHandle   string
	StartDate    *time.Time
	Participants int
}

// AddAddOnInput selects a catalog add-on into the cart.
type AddAddOnInput struct {
	AddOnID  string
	Quantity int
}

// ServiceParams groups booking service dependencies. Remote is optional;
// without it carts stay local-only.
type ServiceParams struct {
	Catalog   catalog.Service
	Snapshots storage.Snapshots
	Remote    cartstore.RemoteClient
	Logger    *logger.Logger
	Metrics   *metrics.EngineMetrics

	// SyncInline runs remote mirroring on the request goroutine; used in
	// tests.
	SyncInline bool
}

type service struct {
	catalog    catalog.Service
	snapshots  storage.Snapshots
	remote     cartstore.RemoteClient
	logg       *logger.Logger
	metrics    *metrics.EngineMetrics
	syncInline bool
}

// NewService builds the booking service.
func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog service is required")
	}
	if params.Snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		catalog:    params.Catalog,
		snapshots:  params.Snapshots,
		remote:     params.Remote,
		logg:       params.Logger,
		metrics:    params.Metrics,
		syncInline: params.SyncInline,
	}, nil
}

// session materializes the per-session engine pieces from their snapshots.
type session struct {
	store      *cartstore.Store
	controller *flow.Controller
	addons     []types.AddOn
	steps      []types.CategoryStep
	state      *flow.State
}

func (s *service) openSession(ctx context.Context, sessionID string) (*session, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	store, err := cartstore.NewStore(cartstore.StoreParams{
		Snapshots: s.snapshots,
		Logger:    s.logg,
		Metrics:   s.metrics,
		Remote:    s.remote,
		SessionID: sessionID,
		AsyncSync: !s.syncInline,
	})
	if err != nil {
		return nil, err
	}
	cart := store.Resume(ctx)

	addons, err := s.catalog.AddOns(ctx)
	if err != nil {
		return nil, err
	}

	tourHandle := ""
	if cart.Tour != nil {
		tourHandle = cart.Tour.Handle
	}
	steps := flow.BuildSteps(addons, tourHandle)

	controller, err := flow.NewController(flow.ControllerParams{
		Snapshots: s.snapshots,
		Logger:    s.logg,
		Metrics:   s.metrics,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, err
	}
	state := controller.Resume(ctx, len(steps))

	return &session{
		store:      store,
		controller: controller,
		addons:     addons,
		steps:      steps,
		state:      state,
	}, nil
}

// rebuildSteps recomputes the step sequence after the tour changed and
// clamps the wizard back into range.
func (sess *session) rebuildSteps(ctx context.Context, tourHandle string) error {
	sess.steps = flow.BuildSteps(sess.addons, tourHandle)
	if err := sess.controller.Resize(ctx, len(sess.steps)); err != nil {
		return err
	}
	sess.state = sess.controller.State()
	return nil
}

func (sess *session) stepIndexForCategory(category string) int {
	for i, step := range sess.steps {
		if step.CategoryName == category {
			return i
		}
	}
	return -1
}

func (s *service) Cart(ctx context.Context, sessionID string) (*CartView, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return newCartView(sess.store.State()), nil
}

func (s *service) SetTour(ctx context.Context, sessionID string, input SetTourInput) (*TourChangeResult, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tour, err := s.catalog.TourByHandle(ctx, input.TourHandle)
	if err != nil {
		return nil, err
	}

	removed := sess.store.SetTour(ctx, *tour, input.StartDate)
	if input.Participants > 0 {
		sess.store.SetParticipants(ctx, input.Participants)
	}
	if err := sess.rebuildSteps(ctx, tour.Handle); err != nil {
		return nil, err
	}

	return &TourChangeResult{
		Cart:    *newCartView(sess.store.State()),
		Removed: removed,
		Flow:    *newFlowView(sess.steps, sess.state),
	}, nil
}

func (s *service) SetParticipants(ctx context.Context, sessionID string, participants int) (*CartView, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.store.SetParticipants(ctx, participants)
	return newCartView(sess.store.State()), nil
}

func (s *service) AddAddOn(ctx context.Context, sessionID string, input AddAddOnInput) (*CartView, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	addon, err := findAddOn(sess.addons, input.AddOnID)
	if err != nil {
		return nil, err
	}
	sess.store.AddAddOn(ctx, addon, input.Quantity)

	// Selecting an add-on counts as engaging with its category step, which
	// flips an earlier skip mark into completion.
	if idx := sess.stepIndexForCategory(addon.Category); idx >= 0 {
		if err := sess.controller.MarkStepEngaged(ctx, idx); err != nil {
			s.logg.Error(ctx, "marking step engaged", err)
		}
	}
	return newCartView(sess.store.State()), nil
}

func (s *service) RemoveAddOn(ctx context.Context, sessionID, addonID string) (*CartView, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.store.RemoveAddOn(ctx, addonID)
	return newCartView(sess.store.State()), nil
}

func (s *service) UpdateAddOnQuantity(ctx context.Context, sessionID, addonID string, quantity int) (*CartView, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.store.UpdateAddOnQuantity(ctx, addonID, quantity)
	return newCartView(sess.store.State()), nil
}

func (s *service) ClearCart(ctx context.Context, sessionID string) error {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.store.ClearCart(ctx)
	sess.controller.Reset(ctx, len(flow.BuildSteps(sess.addons, "")))
	return nil
}

func (s *service) Steps(ctx context.Context, sessionID string) (*FlowView, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return newFlowView(sess.steps, sess.state), nil
}

func (s *service) NextStep(ctx context.Context, sessionID string) (*FlowView, error) {
	return s.transition(ctx, sessionID, func(sess *session) error {
		return sess.controller.Next(ctx)
	})
}

func (s *service) SkipStep(ctx context.Context, sessionID string) (*FlowView, error) {
	return s.transition(ctx, sessionID, func(sess *session) error {
		return sess.controller.Skip(ctx)
	})
}

func (s *service) PreviousStep(ctx context.Context, sessionID string) (*FlowView, error) {
	return s.transition(ctx, sessionID, func(sess *session) error {
		return sess.controller.Previous(ctx)
	})
}

func (s *service) GoToStep(ctx context.Context, sessionID string, step int) (*FlowView, error) {
	return s.transition(ctx, sessionID, func(sess *session) error {
		return sess.controller.GoTo(ctx, step)
	})
}

// ResetFlow restarts wizard navigation at the first step without touching
// cart contents.
func (s *service) ResetFlow(ctx context.Context, sessionID string) (*FlowView, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.controller.Reset(ctx, len(sess.steps))
	sess.state = sess.controller.State()
	return newFlowView(sess.steps, sess.state), nil
}

func (s *service) transition(ctx context.Context, sessionID string, apply func(*session) error) (*FlowView, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := apply(sess); err != nil {
		return nil, err
	}
	sess.state = sess.controller.State()
	return newFlowView(sess.steps, sess.state), nil
}

func (s *service) Recommendations(ctx context.Context, sessionID string) ([]types.RecommendedAddOn, error) {
	sess, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart := sess.store.State()
	if cart.Tour == nil {
		return []types.RecommendedAddOn{}, nil
	}
	applicable := compat.FilterForTour(sess.addons, cart.Tour.Handle)
	return recommend.Recommend(applicable, cart.Context()), nil
}

func findAddOn(addons []types.AddOn, addonID string) (types.AddOn, error) {
	if addonID == "" {
		return types.AddOn{}, pkgerrors.New(pkgerrors.CodeValidation, "addon id is required")
	}
	for _, addon := range addons {
		if addon.ID == addonID {
			return addon, nil
		}
	}
	return types.AddOn{}, pkgerrors.New(pkgerrors.CodeNotFound, "addon not found")
}

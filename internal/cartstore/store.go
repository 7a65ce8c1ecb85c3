// Package cartstore owns the booking cart for one session. Mutations apply
// to local state synchronously and the remote commerce cart is mirrored in
// the background; the local state is always the source of truth for
// selections and totals.
package cartstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sunshinecoast4wd/booking-engine/internal/compat"
	"github.com/sunshinecoast4wd/booking-engine/internal/pricing"
	"github.com/sunshinecoast4wd/booking-engine/internal/remotecart"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/metrics"
	"github.com/sunshinecoast4wd/booking-engine/pkg/storage"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

const (
	minQuantity     = 1
	maxQuantity     = 99
	minParticipants = 1
)

// RemoteClient is the slice of the remote cart API the mirror needs,
// satisfied by *remotecart.Client.
type RemoteClient interface {
	CreateCart(ctx context.Context) (*remotecart.Cart, error)
	GetCart(ctx context.Context, cartID string) (*remotecart.Cart, error)
	AddLineItem(ctx context.Context, cartID, variantID string, quantity int, metadata map[string]any) (*remotecart.Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*remotecart.Cart, error)
	RemoveLineItem(ctx context.Context, cartID, lineItemID string) (*remotecart.Cart, error)
	UpdateCartMetadata(ctx context.Context, cartID string, metadata map[string]any) (*remotecart.Cart, error)
}

// StoreParams groups dependencies for a session cart store. Remote is
// optional; without it the cart is local-only.
type StoreParams struct {
	Snapshots storage.Snapshots
	Logger    *logger.Logger
	Metrics   *metrics.EngineMetrics
	Remote    RemoteClient
	SessionID string

	// AsyncSync pushes remote mirroring onto a goroutine. Tests run the
	// mirror inline to keep assertions deterministic.
	AsyncSync bool
}

// Store holds one session's cart. All mutations are serialized under a
// single mutex and never block on the network.
type Store struct {
	mu        sync.Mutex
	state     types.CartState
	revision  uint64
	syncing   bool
	snapshots storage.Snapshots
	logg      *logger.Logger
	metrics   *metrics.EngineMetrics
	remote    RemoteClient
	sessionID string
	async     bool
}

// NewStore builds a cart store with the required dependencies.
func NewStore(params StoreParams) (*Store, error) {
	if params.Snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return &Store{
		state:     emptyState(),
		snapshots: params.Snapshots,
		logg:      params.Logger,
		metrics:   params.Metrics,
		remote:    params.Remote,
		sessionID: params.SessionID,
		async:     params.AsyncSync,
	}, nil
}

func emptyState() types.CartState {
	return types.CartState{
		Participants:   minParticipants,
		SelectedAddOns: []types.SelectedAddOn{},
	}
}

// Resume loads the persisted cart. A missing or corrupt snapshot falls back
// to the empty cart; it never fails the caller.
func (s *Store) Resume(ctx context.Context) types.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = emptyState()

	payload, found, err := s.snapshots.Load(ctx, storage.SlotCart, s.sessionID)
	if err != nil {
		s.logg.Error(ctx, "loading cart snapshot", err)
		s.metrics.IncSnapshotLoadFailure(storage.SlotCart)
		return cloneState(s.state)
	}
	if !found {
		return cloneState(s.state)
	}

	var restored types.CartState
	if err := json.Unmarshal([]byte(payload), &restored); err != nil {
		s.logg.Error(ctx, "corrupt cart snapshot, starting empty", err)
		s.metrics.IncSnapshotLoadFailure(storage.SlotCart)
		return cloneState(s.state)
	}
	if restored.SelectedAddOns == nil {
		restored.SelectedAddOns = []types.SelectedAddOn{}
	}
	if restored.Participants < minParticipants {
		restored.Participants = minParticipants
	}
	// Snapshots are client-influenced state; quantities must re-enter the
	// same bounds every mutation enforces.
	for i := range restored.SelectedAddOns {
		restored.SelectedAddOns[i].Quantity = clampQuantity(restored.SelectedAddOns[i].Quantity)
	}
	s.state = restored
	s.clampParticipantsLocked()
	s.recomputeLocked()
	return cloneState(s.state)
}

// State returns a copy of the current cart.
func (s *Store) State() types.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Revision returns the mutation counter used to discard stale mirror runs.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// SetTour switches the booked tour. Selections incompatible with the new
// tour are removed before totals recompute, and the removed lines are
// returned so callers can surface them. The remote cart id survives the
// switch; the mirror reconciles the remote lines afterwards.
func (s *Store) SetTour(ctx context.Context, tour types.Tour, startDate *time.Time) []types.SelectedAddOn {
	s.mu.Lock()

	removed := compat.DetectIncompatible(s.state.SelectedAddOns, tour.Handle)
	if len(removed) > 0 {
		kept := make([]types.SelectedAddOn, 0, len(s.state.SelectedAddOns))
		for _, item := range s.state.SelectedAddOns {
			if compat.IsApplicable(item.AddOn, tour.Handle) {
				kept = append(kept, item)
			}
		}
		s.state.SelectedAddOns = kept
		s.metrics.AddForcedRemovals(len(removed))
	}

	s.state.Tour = &tour
	s.state.TourStartDate = startDate
	s.clampParticipantsLocked()
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.requestSync()
	return removed
}

// SetParticipants updates the headcount, clamping instead of rejecting.
func (s *Store) SetParticipants(ctx context.Context, participants int) {
	s.mu.Lock()
	s.state.Participants = participants
	s.clampParticipantsLocked()
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.requestSync()
}

// AddAddOn puts an add-on in the cart. Adding one that is already selected
// raises its quantity. Quantities clamp into [1, 99]. An add-on that does
// not apply to the booked tour is ignored.
func (s *Store) AddAddOn(ctx context.Context, addon types.AddOn, quantity int) {
	if addon.ID == "" {
		return
	}

	s.mu.Lock()
	if s.state.Tour != nil && !compat.IsApplicable(addon, s.state.Tour.Handle) {
		s.mu.Unlock()
		s.logg.Warn(ctx, "ignoring add-on not applicable to booked tour")
		return
	}

	if idx := s.indexOfLocked(addon.ID); idx >= 0 {
		s.state.SelectedAddOns[idx].Quantity = clampQuantity(s.state.SelectedAddOns[idx].Quantity + quantity)
	} else {
		s.state.SelectedAddOns = append(s.state.SelectedAddOns, types.SelectedAddOn{
			AddOn:    addon,
			Quantity: clampQuantity(quantity),
		})
	}
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.requestSync()
}

// RemoveAddOn drops an add-on from the cart. Unknown ids are a no-op.
func (s *Store) RemoveAddOn(ctx context.Context, addonID string) {
	s.mu.Lock()
	idx := s.indexOfLocked(addonID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.state.SelectedAddOns = append(s.state.SelectedAddOns[:idx], s.state.SelectedAddOns[idx+1:]...)
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.requestSync()
}

// UpdateAddOnQuantity sets an add-on's quantity. Zero or negative removes
// the line; anything above 99 clamps down to it.
func (s *Store) UpdateAddOnQuantity(ctx context.Context, addonID string, quantity int) {
	if quantity <= 0 {
		s.RemoveAddOn(ctx, addonID)
		return
	}

	s.mu.Lock()
	idx := s.indexOfLocked(addonID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.state.SelectedAddOns[idx].Quantity = clampQuantity(quantity)
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.requestSync()
}

// ClearCart resets the local cart and its snapshot. The remote cart, if one
// exists, is abandoned rather than deleted; later mutations provision a new
// one.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = emptyState()
	s.revision++
	if err := s.snapshots.Delete(ctx, storage.SlotCart, s.sessionID); err != nil {
		s.logg.Error(ctx, "clearing cart snapshot", err)
	}
}

func (s *Store) indexOfLocked(addonID string) int {
	for i, item := range s.state.SelectedAddOns {
		if item.AddOn.ID == addonID {
			return i
		}
	}
	return -1
}

func (s *Store) clampParticipantsLocked() {
	if s.state.Participants < minParticipants {
		s.state.Participants = minParticipants
	}
	if s.state.Tour != nil && s.state.Tour.MaxParticipants > 0 && s.state.Participants > s.state.Tour.MaxParticipants {
		s.state.Participants = s.state.Tour.MaxParticipants
	}
}

// commitLocked recomputes derived totals, bumps the revision and persists
// the snapshot. Persistence failures are logged and swallowed so mutations
// never fail on the durable layer.
func (s *Store) commitLocked(ctx context.Context) {
	s.recomputeLocked()
	s.revision++
	s.persistLocked(ctx)
}

func (s *Store) recomputeLocked() {
	bookingCtx := s.state.Context()
	for i := range s.state.SelectedAddOns {
		item := &s.state.SelectedAddOns[i]
		item.LineTotalMinor = pricing.LineTotal(item.AddOn, item.Quantity, bookingCtx)
	}
	totals := pricing.CartTotals(s.state.Tour, s.state.Participants, s.state.SelectedAddOns)
	s.state.TourTotalMinor = totals.TourTotalMinor
	s.state.SubtotalMinor = totals.SubtotalMinor
	s.state.TotalMinor = totals.TotalMinor
}

func (s *Store) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(s.state)
	if err != nil {
		s.logg.Error(ctx, "encoding cart snapshot", err)
		return
	}
	if err := s.snapshots.Save(ctx, storage.SlotCart, s.sessionID, string(raw)); err != nil {
		s.logg.Error(ctx, "saving cart snapshot", err)
	}
}

func clampQuantity(quantity int) int {
	if quantity < minQuantity {
		return minQuantity
	}
	if quantity > maxQuantity {
		return maxQuantity
	}
	return quantity
}

func cloneState(state types.CartState) types.CartState {
	out := state
	if state.Tour != nil {
		tour := *state.Tour
		out.Tour = &tour
	}
	if state.TourStartDate != nil {
		start := *state.TourStartDate
		out.TourStartDate = &start
	}
	out.SelectedAddOns = append([]types.SelectedAddOn(nil), state.SelectedAddOns...)
	return out
}

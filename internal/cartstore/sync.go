package cartstore

import (
	"context"
	"time"

	"github.com/sunshinecoast4wd/booking-engine/internal/remotecart"
	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

// syncRequest carries the cart as it stood when the mirror run was
// requested, tagged with the revision so a finished run can tell whether the
// cart moved underneath it.
type syncRequest struct {
	revision uint64
	state    types.CartState
}

// requestSync starts one mirror run for the current cart. A run already in
// flight wins: the new request is dropped, not queued, and the finished run
// re-checks the revision to converge on the latest state.
func (s *Store) requestSync() {
	if s.remote == nil {
		return
	}

	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		s.metrics.IncSyncAttempt("skipped")
		return
	}
	s.syncing = true
	req := syncRequest{revision: s.revision, state: cloneState(s.state)}
	s.mu.Unlock()

	s.metrics.IncSyncAttempt("started")
	if s.async {
		go s.runSync(context.Background(), req)
	} else {
		s.runSync(context.Background(), req)
	}
}

func (s *Store) runSync(ctx context.Context, req syncRequest) {
	start := time.Now()
	err := s.pushRemote(ctx, req)

	s.mu.Lock()
	s.syncing = false
	stale := s.revision != req.revision
	s.mu.Unlock()

	outcome := "success"
	switch {
	case err != nil:
		outcome = "failure"
		s.logg.Error(ctx, "remote cart sync failed", err)
		s.metrics.IncSyncFailure(failureReason(err))
		if remotecart.IsNotFound(err) {
			// The remote cart is gone; forget its id so the next run
			// provisions a fresh one.
			s.clearRemoteCartID(ctx)
		}
	case stale:
		outcome = "stale"
		s.metrics.IncSyncAttempt("stale")
	}
	s.metrics.ObserveSyncDuration(outcome, time.Since(start))

	// The cart moved while this run was pushing; kick off another run
	// against the latest state so the mirror converges.
	if stale && err == nil {
		s.requestSync()
	}
}

// pushRemote reconciles the remote cart's line items to match the request
// snapshot, keyed by variant id, then refreshes the booking metadata.
func (s *Store) pushRemote(ctx context.Context, req syncRequest) error {
	cartID := req.state.RemoteCartID
	if cartID == "" {
		cart, err := s.remote.CreateCart(ctx)
		if err != nil {
			return err
		}
		cartID = cart.ID
		s.adoptRemoteCartID(ctx, cartID)
	}

	remote, err := s.remote.GetCart(ctx, cartID)
	if err != nil {
		return err
	}

	desired := desiredLines(req.state)
	existing := make(map[string]remotecart.LineItem, len(remote.Items))
	for _, item := range remote.Items {
		existing[item.VariantID] = item
	}

	for variantID, line := range desired {
		current, ok := existing[variantID]
		switch {
		case !ok:
			if _, err := s.remote.AddLineItem(ctx, cartID, variantID, line.quantity, line.metadata); err != nil {
				return err
			}
		case current.Quantity != line.quantity:
			if _, err := s.remote.UpdateLineItem(ctx, cartID, current.ID, line.quantity); err != nil {
				return err
			}
		}
	}
	for variantID, item := range existing {
		if _, ok := desired[variantID]; !ok {
			if _, err := s.remote.RemoveLineItem(ctx, cartID, item.ID); err != nil {
				return err
			}
		}
	}

	if _, err := s.remote.UpdateCartMetadata(ctx, cartID, bookingMetadata(req.state)); err != nil {
		return err
	}
	return nil
}

type desiredLine struct {
	quantity int
	metadata map[string]any
}

func desiredLines(state types.CartState) map[string]desiredLine {
	lines := make(map[string]desiredLine)
	if state.Tour != nil && state.Tour.VariantID != "" {
		lines[state.Tour.VariantID] = desiredLine{
			quantity: 1,
			metadata: map[string]any{
				"type":        "tour",
				"tour_id":     state.Tour.ID,
				"tour_handle": state.Tour.Handle,
			},
		}
	}
	for _, item := range state.SelectedAddOns {
		if item.AddOn.VariantID == "" {
			continue
		}
		lines[item.AddOn.VariantID] = desiredLine{
			quantity: item.Quantity,
			metadata: map[string]any{
				"type":         "addon",
				"addon_id":     item.AddOn.ID,
				"pricing_unit": item.AddOn.PricingUnit.String(),
			},
		}
	}
	return lines
}

func bookingMetadata(state types.CartState) map[string]any {
	metadata := map[string]any{
		"participants": state.Participants,
	}
	if state.Tour != nil {
		metadata["tour_id"] = state.Tour.ID
		metadata["tour_handle"] = state.Tour.Handle
		metadata["duration_days"] = state.Tour.DurationDays
	}
	if state.TourStartDate != nil {
		metadata["start_date"] = state.TourStartDate.Format(time.DateOnly)
	}
	return metadata
}

// adoptRemoteCartID records a freshly provisioned remote cart id. This is
// the only field a mirror run may write back into the cart, stale or not,
// and it does not count as a cart mutation.
func (s *Store) adoptRemoteCartID(ctx context.Context, cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RemoteCartID = cartID
	s.persistLocked(ctx)
}

func (s *Store) clearRemoteCartID(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.RemoteCartID == "" {
		return
	}
	s.state.RemoteCartID = ""
	s.persistLocked(ctx)
}

func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return "network"
}

package flow

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/metrics"
	"github.com/sunshinecoast4wd/booking-engine/pkg/storage"
)

// ControllerParams groups dependencies for a session-scoped wizard
// controller.
type ControllerParams struct {
	Snapshots storage.Snapshots
	Logger    *logger.Logger
	Metrics   *metrics.EngineMetrics
	SessionID string
}

// Controller drives one session's wizard state and keeps its snapshot slot
// current after every transition. It holds no copy of the user's selections;
// those live in the cart store.
type Controller struct {
	snapshots storage.Snapshots
	logg      *logger.Logger
	metrics   *metrics.EngineMetrics
	sessionID string
	state     *State
}

// NewController builds a controller with the required dependencies. The
// state starts empty; call Resume before first use.
func NewController(params ControllerParams) (*Controller, error) {
	if params.Snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return &Controller{
		snapshots: params.Snapshots,
		logg:      params.Logger,
		metrics:   params.Metrics,
		sessionID: params.SessionID,
	}, nil
}

// Resume loads the persisted wizard position against a freshly computed step
// count. A missing or corrupt snapshot falls back to a fresh wizard; it
// never fails the caller.
func (c *Controller) Resume(ctx context.Context, totalSteps int) *State {
	c.state = NewState(totalSteps)

	payload, found, err := c.snapshots.Load(ctx, storage.SlotFlow, c.sessionID)
	if err != nil {
		c.logg.Error(ctx, "loading flow snapshot", err)
		c.metrics.IncSnapshotLoadFailure(storage.SlotFlow)
		return c.state
	}
	if !found {
		return c.state
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		c.logg.Error(ctx, "corrupt flow snapshot, starting fresh", err)
		c.metrics.IncSnapshotLoadFailure(storage.SlotFlow)
		return c.state
	}
	c.state = RestoreState(snap, totalSteps)
	return c.state
}

// State returns the current wizard state; nil before Resume.
func (c *Controller) State() *State {
	return c.state
}

// Next advances the wizard and persists the new position.
func (c *Controller) Next(ctx context.Context) error {
	if err := c.ensureResumed(); err != nil {
		return err
	}
	if err := c.state.Next(); err != nil {
		return err
	}
	c.persist(ctx)
	return nil
}

// Skip passes the current category without completing it and persists.
func (c *Controller) Skip(ctx context.Context) error {
	if err := c.ensureResumed(); err != nil {
		return err
	}
	if err := c.state.Skip(); err != nil {
		return err
	}
	c.persist(ctx)
	return nil
}

// Previous steps back one category and persists.
func (c *Controller) Previous(ctx context.Context) error {
	if err := c.ensureResumed(); err != nil {
		return err
	}
	c.state.Previous()
	c.persist(ctx)
	return nil
}

// GoTo jumps to an already-reached step and persists.
func (c *Controller) GoTo(ctx context.Context, step int) error {
	if err := c.ensureResumed(); err != nil {
		return err
	}
	if err := c.state.GoTo(step); err != nil {
		return err
	}
	c.persist(ctx)
	return nil
}

// MarkStepEngaged records active engagement with a step (a selection was
// made in it) and persists.
func (c *Controller) MarkStepEngaged(ctx context.Context, step int) error {
	if err := c.ensureResumed(); err != nil {
		return err
	}
	c.state.MarkCompleted(step)
	c.persist(ctx)
	return nil
}

// Resize re-applies a freshly computed step count after a tour change and
// persists the clamped position.
func (c *Controller) Resize(ctx context.Context, totalSteps int) error {
	if err := c.ensureResumed(); err != nil {
		return err
	}
	c.state.Resize(totalSteps)
	c.persist(ctx)
	return nil
}

// Reset restarts the wizard at the first category and clears the snapshot
// slot.
func (c *Controller) Reset(ctx context.Context, totalSteps int) {
	c.state = NewState(totalSteps)
	if err := c.snapshots.Delete(ctx, storage.SlotFlow, c.sessionID); err != nil {
		c.logg.Error(ctx, "clearing flow snapshot", err)
	}
}

func (c *Controller) ensureResumed() error {
	if c.state == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "flow not resumed")
	}
	return nil
}

// persist writes the snapshot best-effort; a storage failure is logged and
// swallowed so navigation never blocks on the durable layer.
func (c *Controller) persist(ctx context.Context) {
	raw, err := json.Marshal(c.state.Snapshot())
	if err != nil {
		c.logg.Error(ctx, "encoding flow snapshot", err)
		return
	}
	if err := c.snapshots.Save(ctx, storage.SlotFlow, c.sessionID, string(raw)); err != nil {
		c.logg.Error(ctx, "saving flow snapshot", err)
	}
}

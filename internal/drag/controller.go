// Package drag holds the drag-reschedule gesture as an explicit state
// machine, decoupled from rendering so it can be tested on its own.
package drag

import (
	"errors"

	"go.uber.org/zap"

	"github.com/uniplan-dev/timegrid-api/internal/models"
	"github.com/uniplan-dev/timegrid-api/internal/store"
	"github.com/uniplan-dev/timegrid-api/internal/timegrid"
)

// Phase is the controller state. There are exactly two: a drag is either in
// progress or it is not.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseDragging Phase = "dragging"
)

var (
	// ErrRelocationRejected is the normal outcome for an invalid drop target;
	// the event snaps back and the store is untouched.
	ErrRelocationRejected = errors.New("relocation rejected")
	// ErrNoActiveDrag signals a drop or hover without a prior pick-up.
	ErrNoActiveDrag = errors.New("no active drag")
	// ErrStaleEvent signals the dragged event vanished under the gesture
	// (removed by a reload); the caller should refresh.
	ErrStaleEvent = errors.New("dragged event no longer exists")
)

// Cell identifies one grid drop target.
type Cell struct {
	Date string `json:"date"`
	Slot string `json:"slot"`
}

// Controller orchestrates one drag gesture at a time. Gestures are serial
// per pointer device; picking up while a drag is active is ignored.
type Controller struct {
	store  *store.EventStore
	window timegrid.Window
	logger *zap.Logger

	phase   Phase
	eventID string
	origin  Cell
	target  *Cell
}

// NewController wires the controller against the event store and the grid's
// rendered window.
func NewController(s *store.EventStore, window timegrid.Window, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{store: s, window: window, logger: logger, phase: PhaseIdle}
}

// Phase returns the current state.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Dragging returns the dragged event id while a gesture is active.
func (c *Controller) Dragging() (string, bool) {
	if c.phase != PhaseDragging {
		return "", false
	}
	return c.eventID, true
}

// Origin returns the cell the dragged event was picked up from, so a
// rejected drop can snap the block back.
func (c *Controller) Origin() (Cell, bool) {
	if c.phase != PhaseDragging {
		return Cell{}, false
	}
	return c.origin, true
}

// Target returns the last hovered candidate cell, if any.
func (c *Controller) Target() (Cell, bool) {
	if c.phase != PhaseDragging || c.target == nil {
		return Cell{}, false
	}
	return *c.target, true
}

// PickUp starts a gesture for the event. Starting a new drag while one is
// active is not a defined input and is ignored. No mutation happens here.
func (c *Controller) PickUp(eventID string) error {
	if c.phase == PhaseDragging {
		c.logger.Debug("ignoring pick-up during active drag", zap.String("event_id", eventID))
		return nil
	}
	event, ok := c.store.Get(eventID)
	if !ok {
		return store.ErrEventNotFound
	}
	c.phase = PhaseDragging
	c.eventID = eventID
	c.origin = Cell{Date: event.Date, Slot: event.StartTime}
	c.target = nil
	return nil
}

// Hover records the candidate cell under the pointer and reports whether
// another event already occupies it, so the grid can tint the cell before
// the drop. Purely visual; the store is never touched.
func (c *Controller) Hover(date, slot string) (bool, error) {
	if c.phase != PhaseDragging {
		return false, ErrNoActiveDrag
	}
	c.target = &Cell{Date: date, Slot: slot}

	occupied := false
	for _, e := range c.store.EventsOn(date) {
		if e.ID == c.eventID {
			continue
		}
		if timegrid.OccupiesSlot(&e, slot) {
			occupied = true
			break
		}
	}
	return occupied, nil
}

// Drop completes the gesture on a grid cell. An invalid target rejects the
// relocation and leaves the store byte-for-byte unchanged; a valid one
// relocates the event and lets the conflict scan surface whatever the new
// position causes. Conflicts never block a drop.
func (c *Controller) Drop(date, slot string) (models.CalendarEvent, error) {
	if c.phase != PhaseDragging {
		return models.CalendarEvent{}, ErrNoActiveDrag
	}
	defer c.reset()

	event, ok := c.store.Get(c.eventID)
	if !ok {
		// Stale reference: the event was dropped by a reload mid-gesture.
		c.logger.Info("drag aborted, event vanished", zap.String("event_id", c.eventID))
		return models.CalendarEvent{}, ErrStaleEvent
	}

	if !c.validTarget(date, slot, event.Duration) {
		c.logger.Debug("drop target rejected",
			zap.String("event_id", c.eventID),
			zap.String("date", date),
			zap.String("slot", slot))
		return models.CalendarEvent{}, ErrRelocationRejected
	}

	moved, err := c.store.Relocate(c.eventID, date, slot)
	if err != nil {
		if errors.Is(err, store.ErrEventNotFound) {
			return models.CalendarEvent{}, ErrStaleEvent
		}
		return models.CalendarEvent{}, ErrRelocationRejected
	}
	return moved, nil
}

// Cancel abandons the gesture, e.g. a release outside any valid cell.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.eventID = ""
	c.origin = Cell{}
	c.target = nil
}

// validTarget accepts only cells inside the loaded window whose slot keeps
// the whole session within grid hours. Moves outside the rendered hour range
// are rejected rather than expanding or clipping the grid.
func (c *Controller) validTarget(date, slot string, duration int) bool {
	if _, err := timegrid.ParseDate(date); err != nil {
		return false
	}
	if !c.store.InWindow(date) {
		return false
	}
	return c.window.Contains(slot, duration)
}

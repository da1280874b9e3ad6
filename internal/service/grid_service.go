package service

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniplan-dev/timegrid-api/internal/conflict"
	"github.com/uniplan-dev/timegrid-api/internal/drag"
	"github.com/uniplan-dev/timegrid-api/internal/filter"
	"github.com/uniplan-dev/timegrid-api/internal/models"
	"github.com/uniplan-dev/timegrid-api/internal/store"
	"github.com/uniplan-dev/timegrid-api/internal/timegrid"
	"github.com/uniplan-dev/timegrid-api/internal/view"
	appErrors "github.com/uniplan-dev/timegrid-api/pkg/errors"
)

// RelocationSink persists applied relocations. Persistence is best-effort:
// a sink failure is logged, never surfaced to the caller.
type RelocationSink interface {
	SaveRelocation(ctx context.Context, id, date, startTime, endTime string) error
}

// WindowInvalidator drops a cached window so the next load re-reads the
// backend. Event sources that cache (the Redis window cache) implement it.
type WindowInvalidator interface {
	Invalidate(ctx context.Context, windowStart, windowEnd string) error
}

// SetFiltersRequest replaces the active filter criteria wholesale.
type SetFiltersRequest struct {
	Search        string   `json:"search"`
	TeacherIDs    []string `json:"teacher_ids"`
	RoomIDs       []string `json:"room_ids"`
	Types         []string `json:"types" validate:"dive,oneof=lecture tutorial lab exam project"`
	ShowConflicts *bool    `json:"show_conflicts"`
	ShowCompleted *bool    `json:"show_completed"`
}

// RelocateRequest moves an event to a new day and start time.
type RelocateRequest struct {
	EventID   string `json:"event_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,len=5"`
}

// DragTargetRequest identifies a grid cell during a drag gesture.
type DragTargetRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot string `json:"slot" validate:"required,len=5"`
}

// GridService owns the in-memory week state: the event store, the conflict
// detector feeding it, the drag controller and the active filter criteria.
// All entry points are safe for concurrent use; mutations serialize on mu.
type GridService struct {
	store       *store.EventStore
	dragCtrl    *drag.Controller
	window      timegrid.Window
	sink        RelocationSink
	invalidator WindowInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger

	mu       sync.Mutex
	criteria models.FilterCriteria
	anchor   string
}

// NewGridService wires the grid state machine. sink and metrics are optional.
func NewGridService(source store.EventSource, window timegrid.Window, sink RelocationSink, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GridService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var observer conflict.Observer
	if metrics != nil {
		observer = metrics
	}
	detector := conflict.NewDetector(observer, logger)
	eventStore := store.NewEventStore(source, detector, logger)
	s := &GridService{
		store:     eventStore,
		dragCtrl:  drag.NewController(eventStore, window, logger),
		window:    window,
		sink:      sink,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		criteria:  models.DefaultFilterCriteria(),
	}
	// A caching source must be dropped after a persisted edit or the next
	// load inside the TTL would serve the pre-edit window.
	if inv, ok := source.(WindowInvalidator); ok {
		s.invalidator = inv
	}
	return s
}

// LoadWeek fetches the week containing anchor into the store and returns the
// rendered view. A fetch failure keeps the previous week on screen.
func (s *GridService) LoadWeek(ctx context.Context, anchor string) (view.WeekView, error) {
	dates, err := timegrid.WeekDates(anchor)
	if err != nil {
		return view.WeekView{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "anchor must be a YYYY-MM-DD date")
	}
	applied, err := s.store.Load(ctx, dates[0], dates[6])
	if err != nil {
		return view.WeekView{}, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status, appErrors.ErrLoadFailed.Message)
	}
	if !applied {
		// A newer load superseded this one; keep its anchor and render the
		// winning window instead of an empty week.
		return s.WeekView()
	}
	s.mu.Lock()
	s.anchor = dates[0]
	s.mu.Unlock()
	return s.WeekView()
}

// WeekView renders the current window through the active filters.
func (s *GridService) WeekView() (view.WeekView, error) {
	s.mu.Lock()
	anchor := s.anchor
	criteria := s.criteria
	s.mu.Unlock()
	if anchor == "" {
		start, _ := s.store.Window()
		anchor = start
	}
	if anchor == "" {
		return view.WeekView{TimeSlots: s.window.Slots(), Days: []view.DayColumn{}}, nil
	}
	visible := filter.Apply(s.store.Events(), criteria)
	return view.BuildWeekView(visible, anchor, s.window)
}

// SetFilters replaces the active criteria and returns how many of the loaded
// events remain visible. Nil booleans keep the current toggle values.
func (s *GridService) SetFilters(req SetFiltersRequest) (models.FilterCriteria, int, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.FilterCriteria{}, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter payload")
	}
	types := make([]models.EventType, 0, len(req.Types))
	for _, t := range req.Types {
		types = append(types, models.EventType(t))
	}

	s.mu.Lock()
	criteria := models.FilterCriteria{
		Search:        req.Search,
		TeacherIDs:    req.TeacherIDs,
		RoomIDs:       req.RoomIDs,
		Types:         types,
		ShowConflicts: s.criteria.ShowConflicts,
		ShowCompleted: s.criteria.ShowCompleted,
	}
	if req.ShowConflicts != nil {
		criteria.ShowConflicts = *req.ShowConflicts
	}
	if req.ShowCompleted != nil {
		criteria.ShowCompleted = *req.ShowCompleted
	}
	s.criteria = criteria
	s.mu.Unlock()

	count := filter.Count(s.store.Events(), criteria)
	return criteria, count, nil
}

// Filters returns the active criteria.
func (s *GridService) Filters() models.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Relocate applies a direct (non-drag) move, persisting it best-effort.
func (s *GridService) Relocate(ctx context.Context, req RelocateRequest) (models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid relocation payload")
	}
	if !s.store.InWindow(req.Date) || !s.window.Contains(req.StartTime, s.eventDuration(req.EventID)) {
		s.recordRelocation("rejected")
		return models.CalendarEvent{}, appErrors.ErrRelocationRejected
	}
	moved, err := s.store.Relocate(req.EventID, req.Date, req.StartTime)
	if err != nil {
		if errors.Is(err, store.ErrEventNotFound) {
			s.recordRelocation("stale")
			return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrEventNotFound.Code, appErrors.ErrEventNotFound.Status, appErrors.ErrEventNotFound.Message)
		}
		s.recordRelocation("rejected")
		return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrRelocationRejected.Code, appErrors.ErrRelocationRejected.Status, appErrors.ErrRelocationRejected.Message)
	}
	s.recordRelocation("applied")
	s.persistRelocation(ctx, moved)
	return moved, nil
}

// BeginDrag starts a drag gesture for the event.
func (s *GridService) BeginDrag(eventID string) error {
	if err := s.dragCtrl.PickUp(eventID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrEventNotFound.Code, appErrors.ErrEventNotFound.Status, appErrors.ErrEventNotFound.Message)
	}
	return nil
}

// HoverDrag records the cell under the pointer and reports whether it is
// already occupied by another event.
func (s *GridService) HoverDrag(req DragTargetRequest) (bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drag target")
	}
	occupied, err := s.dragCtrl.Hover(req.Date, req.Slot)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrDragInactive.Code, appErrors.ErrDragInactive.Status, appErrors.ErrDragInactive.Message)
	}
	return occupied, nil
}

// CompleteDrag drops the dragged event on the target cell.
func (s *GridService) CompleteDrag(ctx context.Context, req DragTargetRequest) (models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drag target")
	}
	moved, err := s.dragCtrl.Drop(req.Date, req.Slot)
	switch {
	case err == nil:
		s.recordRelocation("applied")
		s.persistRelocation(ctx, moved)
		return moved, nil
	case errors.Is(err, drag.ErrNoActiveDrag):
		return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrDragInactive.Code, appErrors.ErrDragInactive.Status, appErrors.ErrDragInactive.Message)
	case errors.Is(err, drag.ErrStaleEvent):
		s.recordRelocation("stale")
		return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrEventNotFound.Code, appErrors.ErrEventNotFound.Status, "dragged event no longer exists, refresh the week")
	default:
		s.recordRelocation("rejected")
		return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrRelocationRejected.Code, appErrors.ErrRelocationRejected.Status, appErrors.ErrRelocationRejected.Message)
	}
}

// CancelDrag abandons the active gesture, if any.
func (s *GridService) CancelDrag() {
	s.dragCtrl.Cancel()
}

// DragState reports the controller phase and dragged event for clients
// resuming a session.
func (s *GridService) DragState() (drag.Phase, string) {
	id, _ := s.dragCtrl.Dragging()
	return s.dragCtrl.Phase(), id
}

// UpsertEvent adds or replaces an event and rescans. Times must parse, sit
// inside grid hours and agree with the denormalized duration.
func (s *GridService) UpsertEvent(e models.CalendarEvent) (models.CalendarEvent, error) {
	if e.Title == "" || !e.Type.Valid() {
		return models.CalendarEvent{}, appErrors.Wrap(nil, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "event needs a title and a known type")
	}
	if _, err := timegrid.ParseDate(e.Date); err != nil {
		return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "event date must be YYYY-MM-DD")
	}
	start, err := timegrid.TimeToMinutes(e.StartTime)
	if err != nil {
		return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, appErrors.ErrInvalidTimeFormat.Message)
	}
	end, err := timegrid.TimeToMinutes(e.EndTime)
	if err != nil {
		return models.CalendarEvent{}, appErrors.Wrap(err, appErrors.ErrInvalidTimeFormat.Code, appErrors.ErrInvalidTimeFormat.Status, appErrors.ErrInvalidTimeFormat.Message)
	}
	if end-start != e.Duration || e.Duration <= 0 {
		return models.CalendarEvent{}, appErrors.Wrap(nil, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "duration must match start and end times")
	}
	if !s.window.Contains(e.StartTime, e.Duration) {
		return models.CalendarEvent{}, appErrors.ErrTimeOutOfBounds
	}
	return s.store.Upsert(e), nil
}

// RemoveEvent deletes an event and rescans the remainder.
func (s *GridService) RemoveEvent(id string) error {
	if err := s.store.Remove(id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrEventNotFound.Code, appErrors.ErrEventNotFound.Status, appErrors.ErrEventNotFound.Message)
	}
	return nil
}

// Conflicts aggregates the current conflict picture across the loaded window.
func (s *GridService) Conflicts() models.ConflictSummary {
	summary := models.ConflictSummary{
		ByKind:     map[models.ConflictKind]int{},
		BySeverity: map[models.ConflictSeverity]int{},
		EventIDs:   []string{},
		Primary:    map[string]models.ConflictInfo{},
	}
	for _, e := range s.store.Events() {
		if len(e.Conflicts) == 0 {
			continue
		}
		summary.EventIDs = append(summary.EventIDs, e.ID)
		if primary, ok := conflict.Primary(&e); ok {
			summary.Primary[e.ID] = primary
		}
		for _, c := range e.Conflicts {
			summary.Total++
			summary.ByKind[c.Kind]++
			summary.BySeverity[c.Severity]++
		}
	}
	return summary
}

// Events exposes the unfiltered loaded set.
func (s *GridService) Events() []models.CalendarEvent {
	return s.store.Events()
}

func (s *GridService) eventDuration(id string) int {
	e, ok := s.store.Get(id)
	if !ok {
		return 0
	}
	return e.Duration
}

func (s *GridService) persistRelocation(ctx context.Context, e models.CalendarEvent) {
	if s.sink == nil {
		return
	}
	if err := s.sink.SaveRelocation(ctx, e.ID, e.Date, e.StartTime, e.EndTime); err != nil {
		s.logger.Warn("failed to persist relocation",
			zap.String("event_id", e.ID),
			zap.Error(err))
		return
	}
	// Postgres now disagrees with the cached window; drop the cache entry so
	// the next load of this week sees the new position.
	if s.invalidator != nil {
		start, end := s.store.Window()
		if err := s.invalidator.Invalidate(ctx, start, end); err != nil {
			s.logger.Warn("failed to invalidate window cache",
				zap.String("window_start", start),
				zap.String("window_end", end),
				zap.Error(err))
		}
	}
}

func (s *GridService) recordRelocation(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRelocation(outcome)
	}
}

// Package store owns the in-memory event working set for the currently
// visible calendar window.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniplan-dev/timegrid-api/internal/conflict"
	"github.com/uniplan-dev/timegrid-api/internal/models"
	"github.com/uniplan-dev/timegrid-api/internal/timegrid"
)

var (
	// ErrEventNotFound signals a stale event reference, e.g. an event removed
	// by a reload while a gesture was in flight.
	ErrEventNotFound = errors.New("event not found in working set")
	// ErrLoadFailed wraps event-source failures. The previous working set is
	// always retained when it is returned.
	ErrLoadFailed = errors.New("event load failed")
)

// EventSource fetches the sessions for a visible window. Implementations are
// the remote API boundary; transport concerns stay behind this interface.
type EventSource interface {
	FetchEvents(ctx context.Context, windowStart, windowEnd string) ([]models.CalendarEvent, error)
}

// EventStore holds the working set between reloads. All mutation is
// single-writer; the mutex only exists because loads cross a goroutine
// boundary in practice.
type EventStore struct {
	source   EventSource
	detector *conflict.Detector
	logger   *zap.Logger

	mu          sync.Mutex
	events      []*models.CalendarEvent
	windowStart string
	windowEnd   string
	loadSeq     uint64
}

// NewEventStore wires the store with its event source and detector.
func NewEventStore(source EventSource, detector *conflict.Detector, logger *zap.Logger) *EventStore {
	if detector == nil {
		detector = conflict.NewDetector(nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventStore{source: source, detector: detector, logger: logger}
}

// Load replaces the entire working set with the window's events. Issuing a
// new Load while a prior one is in flight lets the latest call win: stale
// responses are discarded by comparing the load sequence number, and the
// returned bool tells the caller whether this load's result was applied.
// On source failure the previous set is left intact and ErrLoadFailed is
// returned.
func (s *EventStore) Load(ctx context.Context, windowStart, windowEnd string) (bool, error) {
	if s.source == nil {
		return false, fmt.Errorf("%w: no event source configured", ErrLoadFailed)
	}
	seq := atomic.AddUint64(&s.loadSeq, 1)

	fetched, err := s.source.FetchEvents(ctx, windowStart, windowEnd)
	if err != nil {
		s.logger.Warn("event window load failed",
			zap.String("window_start", windowStart),
			zap.String("window_end", windowEnd),
			zap.Error(err))
		return false, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if atomic.LoadUint64(&s.loadSeq) != seq {
		// A newer load was issued while this one was in flight.
		s.logger.Debug("discarding stale window load", zap.Uint64("seq", seq))
		return false, nil
	}

	events := make([]*models.CalendarEvent, len(fetched))
	for i := range fetched {
		e := fetched[i]
		events[i] = &e
	}
	s.events = events
	s.windowStart = windowStart
	s.windowEnd = windowEnd
	s.detector.Detect(s.events)
	return true, nil
}

// Relocate moves an event to a new day and start time, preserving its
// duration: the end time is recomputed, never carried over. The whole set is
// re-scanned before the method returns, so observers never see an
// intermediate state.
func (s *EventStore) Relocate(id, newDate, newStartTime string) (models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := s.find(id)
	if event == nil {
		return models.CalendarEvent{}, ErrEventNotFound
	}
	newEnd, err := timegrid.AddMinutes(newStartTime, event.Duration)
	if err != nil {
		return models.CalendarEvent{}, err
	}

	event.Date = newDate
	event.StartTime = newStartTime
	event.EndTime = newEnd
	event.LastModified = time.Now().UTC()

	s.detector.Detect(s.events)
	return *event, nil
}

// Upsert inserts or replaces an event and re-runs detection.
func (s *EventStore) Upsert(e models.CalendarEvent) models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.LastModified = time.Now().UTC()

	if existing := s.find(e.ID); existing != nil {
		*existing = e
	} else {
		copied := e
		s.events = append(s.events, &copied)
	}
	s.detector.Detect(s.events)
	if updated := s.find(e.ID); updated != nil {
		return *updated
	}
	return e
}

// Remove deletes an event from the working set and re-runs detection.
func (s *EventStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			s.detector.Detect(s.events)
			return nil
		}
	}
	return ErrEventNotFound
}

// Events returns a copy of the working set.
func (s *EventStore) Events() []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.CalendarEvent, len(s.events))
	for i, e := range s.events {
		result[i] = *e
	}
	return result
}

// EventsOn returns the events scheduled on one calendar day.
func (s *EventStore) EventsOn(date string) []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.CalendarEvent
	for _, e := range s.events {
		if e.Date == date {
			result = append(result, *e)
		}
	}
	return result
}

// Get looks up a single event by id.
func (s *EventStore) Get(id string) (models.CalendarEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.find(id); e != nil {
		return *e, true
	}
	return models.CalendarEvent{}, false
}

// Window returns the currently loaded window bounds.
func (s *EventStore) Window() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windowStart, s.windowEnd
}

// InWindow reports whether a date falls inside the loaded window. ISO dates
// compare correctly as strings.
func (s *EventStore) InWindow(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.windowStart == "" || s.windowEnd == "" {
		return false
	}
	return date >= s.windowStart && date <= s.windowEnd
}

func (s *EventStore) find(id string) *models.CalendarEvent {
	for _, e := range s.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

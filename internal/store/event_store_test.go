package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan-dev/timegrid-api/internal/conflict"
	"github.com/uniplan-dev/timegrid-api/internal/models"
	"github.com/uniplan-dev/timegrid-api/internal/timegrid"
)

type sourceStub struct {
	mu     sync.Mutex
	events []models.CalendarEvent
	err    error
}

func (s *sourceStub) FetchEvents(ctx context.Context, windowStart, windowEnd string) ([]models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.CalendarEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

func gridEvent(id, teacherID, roomID, date, start string, duration int) models.CalendarEvent {
	end := addOrPanic(start, duration)
	return models.CalendarEvent{
		ID:        id,
		Title:     "Session " + id,
		Teacher:   models.TeacherRef{ID: teacherID, Name: "Teacher " + teacherID},
		Room:      models.RoomRef{ID: roomID, Name: "Room " + roomID, Capacity: 50},
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Duration:  duration,
		Type:      models.EventLecture,
		Status:    models.StatusScheduled,
	}
}

func addOrPanic(start string, duration int) string {
	end, err := timegrid.AddMinutes(start, duration)
	if err != nil {
		panic(err)
	}
	return end
}

func newStoreFixture(events ...models.CalendarEvent) (*EventStore, *sourceStub) {
	source := &sourceStub{events: events}
	s := NewEventStore(source, conflict.NewDetector(nil, nil), nil)
	return s, source
}

func mustLoad(t *testing.T, s *EventStore, start, end string) {
	t.Helper()
	applied, err := s.Load(context.Background(), start, end)
	require.NoError(t, err)
	require.True(t, applied)
}

func TestLoadReplacesWorkingSet(t *testing.T) {
	s, source := newStoreFixture(gridEvent("a", "t1", "r1", "2025-01-06", "09:00", 90))

	mustLoad(t, s, "2025-01-06", "2025-01-12")
	require.Len(t, s.Events(), 1)

	source.mu.Lock()
	source.events = []models.CalendarEvent{
		gridEvent("b", "t2", "r2", "2025-01-13", "10:00", 60),
		gridEvent("c", "t3", "r3", "2025-01-14", "11:00", 60),
	}
	source.mu.Unlock()

	mustLoad(t, s, "2025-01-13", "2025-01-19")
	events := s.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID)

	start, end := s.Window()
	assert.Equal(t, "2025-01-13", start)
	assert.Equal(t, "2025-01-19", end)
}

func TestLoadFailureRetainsPreviousSet(t *testing.T) {
	s, source := newStoreFixture(gridEvent("a", "t1", "r1", "2025-01-06", "09:00", 90))
	mustLoad(t, s, "2025-01-06", "2025-01-12")

	source.mu.Lock()
	source.err = errors.New("connection refused")
	source.mu.Unlock()

	_, err := s.Load(context.Background(), "2025-01-13", "2025-01-19")
	require.ErrorIs(t, err, ErrLoadFailed)

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "a", events[0].ID)
	start, _ := s.Window()
	assert.Equal(t, "2025-01-06", start, "window must not advance on failure")
}

// windowedSource serves one payload per window and blocks the stale window's
// fetch until released, so the test controls response ordering exactly.
type windowedSource struct {
	started chan struct{}
	gate    chan struct{}
}

func (s *windowedSource) FetchEvents(ctx context.Context, windowStart, windowEnd string) ([]models.CalendarEvent, error) {
	if windowStart == "2025-01-06" {
		close(s.started)
		<-s.gate
		return []models.CalendarEvent{gridEvent("stale", "t1", "r1", "2025-01-06", "09:00", 60)}, nil
	}
	return []models.CalendarEvent{gridEvent("fresh", "t2", "r2", "2025-01-13", "10:00", 60)}, nil
}

func TestLoadLatestWins(t *testing.T) {
	source := &windowedSource{started: make(chan struct{}), gate: make(chan struct{})}
	s := NewEventStore(source, conflict.NewDetector(nil, nil), nil)

	type loadResult struct {
		applied bool
		err     error
	}
	done := make(chan loadResult, 1)
	go func() {
		applied, err := s.Load(context.Background(), "2025-01-06", "2025-01-12")
		done <- loadResult{applied: applied, err: err}
	}()

	// Issue a newer load while the first fetch is still in flight, then let
	// the stale response land.
	<-source.started
	mustLoad(t, s, "2025-01-13", "2025-01-19")
	close(source.gate)
	stale := <-done
	require.NoError(t, stale.err)
	assert.False(t, stale.applied, "discarded load must report it was not applied")

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "fresh", events[0].ID, "stale response must be discarded")
	start, _ := s.Window()
	assert.Equal(t, "2025-01-13", start)
}

func TestRelocatePreservesDuration(t *testing.T) {
	s, _ := newStoreFixture(gridEvent("a", "t1", "r1", "2025-01-06", "09:00", 90))
	mustLoad(t, s, "2025-01-06", "2025-01-12")

	moved, err := s.Relocate("a", "2025-01-07", "14:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-07", moved.Date)
	assert.Equal(t, "14:00", moved.StartTime)
	assert.Equal(t, "15:30", moved.EndTime)
	assert.Equal(t, 90, moved.Duration)
}

func TestRelocateUnknownEvent(t *testing.T) {
	s, _ := newStoreFixture()
	mustLoad(t, s, "2025-01-06", "2025-01-12")

	_, err := s.Relocate("ghost", "2025-01-07", "14:00")
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestRelocateRunsDetection(t *testing.T) {
	s, _ := newStoreFixture(
		gridEvent("a", "t1", "r1", "2025-01-06", "09:00", 90),
		gridEvent("b", "t1", "r2", "2025-01-07", "10:00", 60),
	)
	mustLoad(t, s, "2025-01-06", "2025-01-12")

	// Moving B under A's teacher window creates a conflict immediately.
	moved, err := s.Relocate("b", "2025-01-06", "10:00")
	require.NoError(t, err)
	require.Len(t, moved.Conflicts, 1)
	assert.Equal(t, models.ConflictTeacher, moved.Conflicts[0].Kind)
	assert.Equal(t, models.StatusConflict, moved.Status)

	a, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, models.StatusConflict, a.Status)

	// Moving it back clears both sides.
	moved, err = s.Relocate("b", "2025-01-07", "10:00")
	require.NoError(t, err)
	assert.Empty(t, moved.Conflicts)
	assert.Equal(t, models.StatusScheduled, moved.Status)
}

func TestUpsertAndRemove(t *testing.T) {
	s, _ := newStoreFixture(gridEvent("a", "t1", "r1", "2025-01-06", "09:00", 90))
	mustLoad(t, s, "2025-01-06", "2025-01-12")

	created := s.Upsert(gridEvent("", "t1", "r2", "2025-01-06", "10:00", 60))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusConflict, created.Status, "overlap with A must surface on insert")

	require.NoError(t, s.Remove(created.ID))
	a, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, models.StatusScheduled, a.Status, "removal must clear A's conflict")

	require.ErrorIs(t, s.Remove("ghost"), ErrEventNotFound)
}

func TestEventsOnAndInWindow(t *testing.T) {
	s, _ := newStoreFixture(
		gridEvent("a", "t1", "r1", "2025-01-06", "09:00", 60),
		gridEvent("b", "t2", "r2", "2025-01-07", "09:00", 60),
	)
	mustLoad(t, s, "2025-01-06", "2025-01-12")

	monday := s.EventsOn("2025-01-06")
	require.Len(t, monday, 1)
	assert.Equal(t, "a", monday[0].ID)

	assert.True(t, s.InWindow("2025-01-06"))
	assert.True(t, s.InWindow("2025-01-12"))
	assert.False(t, s.InWindow("2025-01-13"))
	assert.False(t, s.InWindow("2025-01-05"))
}

package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan-dev/timegrid-api/internal/models"
)

func makeEvent(id, teacherID, roomID, date, start, end string, opts ...func(*models.CalendarEvent)) *models.CalendarEvent {
	e := &models.CalendarEvent{
		ID:        id,
		Title:     "Session " + id,
		Teacher:   models.TeacherRef{ID: teacherID, Name: "Teacher " + teacherID},
		Room:      models.RoomRef{ID: roomID, Name: "Room " + roomID, Capacity: 100},
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Type:      models.EventLecture,
		Status:    models.StatusScheduled,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func withPrograms(programs ...models.ProgramRef) func(*models.CalendarEvent) {
	return func(e *models.CalendarEvent) { e.Programs = programs }
}

func withType(t models.EventType) func(*models.CalendarEvent) {
	return func(e *models.CalendarEvent) { e.Type = t }
}

func withCapacity(c int) func(*models.CalendarEvent) {
	return func(e *models.CalendarEvent) { e.Room.Capacity = c }
}

func findConflict(t *testing.T, e *models.CalendarEvent, kind models.ConflictKind) models.ConflictInfo {
	t.Helper()
	for _, c := range e.Conflicts {
		if c.Kind == kind {
			return c
		}
	}
	t.Fatalf("event %s is missing a %s entry", e.ID, kind)
	return models.ConflictInfo{}
}

func TestDetectTeacherOverlapIsSymmetric(t *testing.T) {
	// Spec example: same teacher, different rooms, overlap [10:00, 10:30).
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "10:30")
	b := makeEvent("b", "t1", "r2", "2025-01-06", "10:00", "11:00")

	NewDetector(nil, nil).Detect([]*models.CalendarEvent{a, b})

	require.Len(t, a.Conflicts, 1)
	require.Len(t, b.Conflicts, 1)

	ca := findConflict(t, a, models.ConflictTeacher)
	cb := findConflict(t, b, models.ConflictTeacher)
	assert.Equal(t, models.SeverityHigh, ca.Severity)
	assert.Equal(t, models.SeverityHigh, cb.Severity)
	require.NotNil(t, ca.Other)
	require.NotNil(t, cb.Other)
	assert.Equal(t, "b", ca.Other.EventID)
	assert.Equal(t, "a", cb.Other.EventID)

	assert.Equal(t, models.StatusConflict, a.Status)
	assert.Equal(t, models.StatusConflict, b.Status)
}

func TestDetectNoFalsePositives(t *testing.T) {
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "10:30",
		withPrograms(models.ProgramRef{ID: "p1", Enrolled: 30}))
	b := makeEvent("b", "t2", "r2", "2025-01-06", "10:00", "11:00",
		withPrograms(models.ProgramRef{ID: "p2", Enrolled: 40}))

	NewDetector(nil, nil).Detect([]*models.CalendarEvent{a, b})

	assert.Empty(t, a.Conflicts)
	assert.Empty(t, b.Conflicts)
	assert.Equal(t, models.StatusScheduled, a.Status)
	assert.Equal(t, models.StatusScheduled, b.Status)
}

func TestDetectDifferentDaysNeverOverlap(t *testing.T) {
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "10:30")
	b := makeEvent("b", "t1", "r1", "2025-01-07", "09:00", "10:30")

	NewDetector(nil, nil).Detect([]*models.CalendarEvent{a, b})

	assert.Empty(t, a.Conflicts)
	assert.Empty(t, b.Conflicts)
}

func TestDetectBackToBackIsNotAConflict(t *testing.T) {
	// Half-open intervals: [09:00,10:00) and [10:00,11:00) do not intersect.
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "10:00")
	b := makeEvent("b", "t1", "r1", "2025-01-06", "10:00", "11:00")

	NewDetector(nil, nil).Detect([]*models.CalendarEvent{a, b})

	assert.Empty(t, a.Conflicts)
	assert.Empty(t, b.Conflicts)
}

func TestDetectExamRaisesTeacherSeverity(t *testing.T) {
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "11:00", withType(models.EventExam))
	b := makeEvent("b", "t1", "r2", "2025-01-06", "10:00", "12:00")

	NewDetector(nil, nil).Detect([]*models.CalendarEvent{a, b})

	assert.Equal(t, models.SeverityCritical, findConflict(t, a, models.ConflictTeacher).Severity)
	assert.Equal(t, models.SeverityCritical, findConflict(t, b, models.ConflictTeacher).Severity)
}

func TestDetectRoomConflict(t *testing.T) {
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "10:30")
	b := makeEvent("b", "t2", "r1", "2025-01-06", "10:00", "11:00")

	NewDetector(nil, nil).Detect([]*models.CalendarEvent{a, b})

	assert.Equal(t, models.SeverityHigh, findConflict(t, a, models.ConflictRoom).Severity)
	assert.Equal(t, models.SeverityHigh, findConflict(t, b, models.ConflictRoom).Severity)
}

func TestDetectSharedProgramConflict(t *testing.T) {
	shared := models.ProgramRef{ID: "cs-1", Name: "CS Year 1", Enrolled: 20}
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "10:30", withPrograms(shared))
	b := makeEvent("b", "t2", "r2", "2025-01-06", "10:00", "11:00", withPrograms(shared))

	NewDetector(nil, nil).Detect([]*models.CalendarEvent{a, b})

	assert.Equal(t, models.SeverityMedium, findConflict(t, a, models.ConflictStudent).Severity)
	assert.Equal(t, models.SeverityMedium, findConflict(t, b, models.ConflictStudent).Severity)
}

func TestDetectCapacityExceeded(t *testing.T) {
	// 110 enrolled in a room of 100: overflow within 20%, severity medium.
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "10:00",
		withCapacity(100), withPrograms(models.ProgramRef{ID: "p1", Enrolled: 60}, models.ProgramRef{ID: "p2", Enrolled: 50}))
	// 130 enrolled in a room of 100: overflow beyond 20%, severity critical.
	b := makeEvent("b", "t2", "r2", "2025-01-06", "11:00", "12:00",
		withCapacity(100), withPrograms(models.ProgramRef{ID: "p3", Enrolled: 130}))

	NewDetector(nil, nil).Detect([]*models.CalendarEvent{a, b})

	assert.Equal(t, models.SeverityMedium, findConflict(t, a, models.ConflictCapacity).Severity)
	assert.Equal(t, models.SeverityCritical, findConflict(t, b, models.ConflictCapacity).Severity)
	assert.Equal(t, models.StatusConflict, a.Status)
	assert.Equal(t, models.StatusConflict, b.Status)
}

func TestDetectStatusLockStepAndRestore(t *testing.T) {
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "10:30")
	a.Status = models.StatusOngoing
	b := makeEvent("b", "t1", "r2", "2025-01-06", "10:00", "11:00")

	detector := NewDetector(nil, nil)
	detector.Detect([]*models.CalendarEvent{a, b})
	require.Equal(t, models.StatusConflict, a.Status)

	// Conflict clears once B moves; A's prior status comes back.
	b.StartTime = "11:00"
	b.EndTime = "12:00"
	detector.Detect([]*models.CalendarEvent{a, b})
	assert.Empty(t, a.Conflicts)
	assert.Equal(t, models.StatusOngoing, a.Status)
	assert.Equal(t, models.StatusScheduled, b.Status)
}

func TestPrimaryConflictOrdering(t *testing.T) {
	e := &models.CalendarEvent{
		Conflicts: []models.ConflictInfo{
			{Kind: models.ConflictCapacity, Severity: models.SeverityMedium},
			{Kind: models.ConflictStudent, Severity: models.SeverityMedium},
			{Kind: models.ConflictRoom, Severity: models.SeverityHigh},
			{Kind: models.ConflictTeacher, Severity: models.SeverityHigh},
		},
	}

	primary, ok := Primary(e)
	require.True(t, ok)
	// Highest severity wins; the teacher kind outranks room on the tie.
	assert.Equal(t, models.ConflictTeacher, primary.Kind)

	_, ok = Primary(&models.CalendarEvent{})
	assert.False(t, ok)
}

type scanObserverStub struct {
	events    int
	conflicts int
	calls     int
}

func (s *scanObserverStub) ObserveConflictScan(events, conflicts int, _ time.Duration) {
	s.events = events
	s.conflicts = conflicts
	s.calls++
}

func TestDetectReportsToObserver(t *testing.T) {
	observer := &scanObserverStub{}
	a := makeEvent("a", "t1", "r1", "2025-01-06", "09:00", "10:30")
	b := makeEvent("b", "t1", "r2", "2025-01-06", "10:00", "11:00")

	NewDetector(observer, nil).Detect([]*models.CalendarEvent{a, b})

	assert.Equal(t, 1, observer.calls)
	assert.Equal(t, 2, observer.events)
	assert.Equal(t, 2, observer.conflicts)
}

package models

import (
	"fmt"
	"time"
)

// EventType classifies a teaching session.
type EventType string

const (
	EventLecture  EventType = "lecture"
	EventTutorial EventType = "tutorial"
	EventLab      EventType = "lab"
	EventExam     EventType = "exam"
	EventProject  EventType = "project"
)

// Valid reports whether the type is one of the known session kinds.
func (t EventType) Valid() bool {
	switch t {
	case EventLecture, EventTutorial, EventLab, EventExam, EventProject:
		return true
	}
	return false
}

// EventStatus is the display status of a session. StatusConflict is derived,
// never persisted truth: it is recomputed whenever the event set changes.
type EventStatus string

const (
	StatusScheduled EventStatus = "scheduled"
	StatusOngoing   EventStatus = "ongoing"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
	StatusConflict  EventStatus = "conflict"
)

// ConflictKind names a detected scheduling problem. Declaration order is the
// primary-conflict tie-break order.
type ConflictKind string

const (
	ConflictTeacher  ConflictKind = "teacher_conflict"
	ConflictRoom     ConflictKind = "room_conflict"
	ConflictStudent  ConflictKind = "student_conflict"
	ConflictCapacity ConflictKind = "capacity_exceeded"
)

var conflictKindOrder = map[ConflictKind]int{
	ConflictTeacher:  0,
	ConflictRoom:     1,
	ConflictStudent:  2,
	ConflictCapacity: 3,
}

// Order returns the tie-break rank of the kind (lower wins).
func (k ConflictKind) Order() int {
	if rank, ok := conflictKindOrder[k]; ok {
		return rank
	}
	return len(conflictKindOrder)
}

// ConflictSeverity grades how serious a conflict is.
type ConflictSeverity string

const (
	SeverityLow      ConflictSeverity = "low"
	SeverityMedium   ConflictSeverity = "medium"
	SeverityHigh     ConflictSeverity = "high"
	SeverityCritical ConflictSeverity = "critical"
)

var severityRank = map[ConflictSeverity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordering value of the severity (higher is worse).
func (s ConflictSeverity) Rank() int {
	return severityRank[s]
}

// SubjectRef carries subject display fields, no ownership.
type SubjectRef struct {
	ID    string `db:"subject_id" json:"id"`
	Name  string `db:"subject_name" json:"name"`
	Code  string `db:"subject_code" json:"code"`
	Color string `db:"subject_color" json:"color,omitempty"`
}

// TeacherRef carries teacher display fields.
type TeacherRef struct {
	ID   string `db:"teacher_id" json:"id"`
	Name string `db:"teacher_name" json:"name"`
}

// RoomRef carries room display fields.
type RoomRef struct {
	ID       string `db:"room_id" json:"id"`
	Name     string `db:"room_name" json:"name"`
	Capacity int    `db:"room_capacity" json:"capacity"`
	Building string `db:"room_building" json:"building,omitempty"`
}

// ProgramRef identifies an academic program attending a session.
type ProgramRef struct {
	ID       string `db:"program_id" json:"id"`
	Name     string `db:"program_name" json:"name"`
	Enrolled int    `db:"enrolled_count" json:"enrolledCount"`
}

// ConflictRef points at the other event involved in a pairwise conflict.
type ConflictRef struct {
	EventID   string `json:"eventId"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ConflictInfo describes one detected scheduling problem affecting an event.
// Conflicts are recomputed by the detector, never authored by the user.
type ConflictInfo struct {
	Kind     ConflictKind     `json:"kind"`
	Severity ConflictSeverity `json:"severity"`
	Message  string           `json:"message"`
	Other    *ConflictRef     `json:"other,omitempty"`
}

// CalendarEvent is one scheduled teaching session on the weekly grid.
type CalendarEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Subject  SubjectRef   `json:"subject"`
	Teacher  TeacherRef   `json:"teacher"`
	Room     RoomRef      `json:"room"`
	Programs []ProgramRef `json:"programs"`

	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	// Duration is kept denormalized for fast layout math and must always
	// equal EndTime - StartTime.
	Duration          int    `json:"duration"`
	Recurring         bool   `json:"recurring,omitempty"`
	RecurrencePattern string `json:"recurrencePattern,omitempty"`

	Type   EventType   `json:"type"`
	Status EventStatus `json:"status"`
	// PriorStatus remembers the status that StatusConflict overrode so it can
	// be restored once the conflicts clear.
	PriorStatus EventStatus    `json:"-"`
	Conflicts   []ConflictInfo `json:"conflicts"`

	CreatedBy    string    `json:"createdBy,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// TotalEnrolled sums enrolled students across the event's programs.
func (e *CalendarEvent) TotalEnrolled() int {
	total := 0
	for _, p := range e.Programs {
		total += p.Enrolled
	}
	return total
}

// TimeRange renders the occupied window for display and conflict messages.
func (e *CalendarEvent) TimeRange() string {
	return fmt.Sprintf("%s-%s", e.StartTime, e.EndTime)
}

// SharesProgram reports whether both events target at least one common program.
func (e *CalendarEvent) SharesProgram(other *CalendarEvent) bool {
	for _, p := range e.Programs {
		for _, q := range other.Programs {
			if p.ID == q.ID {
				return true
			}
		}
	}
	return false
}

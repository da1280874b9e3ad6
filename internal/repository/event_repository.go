// Package repository provides the Postgres event source and the Redis
// window cache layered over it.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/uniplan-dev/timegrid-api/internal/models"
)

// QueryObserver receives query timings. Optional.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// EventRepository loads calendar events with their display joins from
// Postgres. It satisfies the store's event source contract.
type EventRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewEventRepository creates an EventRepository. observer may be nil.
func NewEventRepository(db *sqlx.DB, observer QueryObserver) *EventRepository {
	return &EventRepository{db: db, observer: observer}
}

type eventRow struct {
	ID                string         `db:"id"`
	Title             string         `db:"title"`
	Description       sql.NullString `db:"description"`
	Date              string         `db:"event_date"`
	StartTime         string         `db:"start_time"`
	EndTime           string         `db:"end_time"`
	Duration          int            `db:"duration_minutes"`
	Type              string         `db:"event_type"`
	Status            string         `db:"status"`
	Recurring         bool           `db:"recurring"`
	RecurrencePattern sql.NullString `db:"recurrence_pattern"`
	CreatedBy         sql.NullString `db:"created_by"`
	LastModified      time.Time      `db:"last_modified"`

	SubjectID    string         `db:"subject_id"`
	SubjectName  string         `db:"subject_name"`
	SubjectCode  string         `db:"subject_code"`
	SubjectColor sql.NullString `db:"subject_color"`

	TeacherID   string `db:"teacher_id"`
	TeacherName string `db:"teacher_name"`

	RoomID       string         `db:"room_id"`
	RoomName     string         `db:"room_name"`
	RoomCapacity int            `db:"room_capacity"`
	RoomBuilding sql.NullString `db:"room_building"`
}

type programRow struct {
	EventID  string `db:"event_id"`
	ID       string `db:"program_id"`
	Name     string `db:"program_name"`
	Enrolled int    `db:"enrolled_count"`
}

const listWindowQuery = `
SELECT e.id, e.title, e.description,
       to_char(e.event_date, 'YYYY-MM-DD') AS event_date,
       to_char(e.start_time, 'HH24:MI') AS start_time,
       to_char(e.end_time, 'HH24:MI') AS end_time,
       e.duration_minutes, e.event_type, e.status,
       e.recurring, e.recurrence_pattern, e.created_by, e.last_modified,
       s.id AS subject_id, s.name AS subject_name, s.code AS subject_code, s.color AS subject_color,
       t.id AS teacher_id, t.full_name AS teacher_name,
       r.id AS room_id, r.name AS room_name, r.capacity AS room_capacity, r.building AS room_building
FROM calendar_events e
JOIN subjects s ON s.id = e.subject_id
JOIN teachers t ON t.id = e.teacher_id
JOIN rooms r ON r.id = e.room_id
WHERE e.event_date BETWEEN $1 AND $2
ORDER BY e.event_date, e.start_time, e.id`

const listProgramsQuery = `
SELECT ep.event_id, p.id AS program_id, p.name AS program_name, p.enrolled_count
FROM event_programs ep
JOIN programs p ON p.id = ep.program_id
JOIN calendar_events e ON e.id = ep.event_id
WHERE e.event_date BETWEEN $1 AND $2
ORDER BY ep.event_id, p.name`

// FetchEvents returns all events whose date falls inside [windowStart,
// windowEnd], fully joined for display. Conflicts are left empty; detection
// happens in memory after load.
func (r *EventRepository) FetchEvents(ctx context.Context, windowStart, windowEnd string) ([]models.CalendarEvent, error) {
	started := time.Now()
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, listWindowQuery, windowStart, windowEnd); err != nil {
		return nil, fmt.Errorf("list window events: %w", err)
	}
	r.observe("list_window_events", started)

	started = time.Now()
	var programs []programRow
	if err := r.db.SelectContext(ctx, &programs, listProgramsQuery, windowStart, windowEnd); err != nil {
		return nil, fmt.Errorf("list window programs: %w", err)
	}
	r.observe("list_window_programs", started)

	programsByEvent := make(map[string][]models.ProgramRef, len(rows))
	for _, p := range programs {
		programsByEvent[p.EventID] = append(programsByEvent[p.EventID], models.ProgramRef{
			ID:       p.ID,
			Name:     p.Name,
			Enrolled: p.Enrolled,
		})
	}

	events := make([]models.CalendarEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, models.CalendarEvent{
			ID:                row.ID,
			Title:             row.Title,
			Description:       row.Description.String,
			Date:              row.Date,
			StartTime:         row.StartTime,
			EndTime:           row.EndTime,
			Duration:          row.Duration,
			Type:              models.EventType(row.Type),
			Status:            models.EventStatus(row.Status),
			Recurring:         row.Recurring,
			RecurrencePattern: row.RecurrencePattern.String,
			CreatedBy:         row.CreatedBy.String,
			LastModified:      row.LastModified,
			Subject: models.SubjectRef{
				ID:    row.SubjectID,
				Name:  row.SubjectName,
				Code:  row.SubjectCode,
				Color: row.SubjectColor.String,
			},
			Teacher: models.TeacherRef{ID: row.TeacherID, Name: row.TeacherName},
			Room: models.RoomRef{
				ID:       row.RoomID,
				Name:     row.RoomName,
				Capacity: row.RoomCapacity,
				Building: row.RoomBuilding.String,
			},
			Programs: programsByEvent[row.ID],
		})
	}
	return events, nil
}

const saveRelocationQuery = `
UPDATE calendar_events
SET event_date = $2, start_time = $3, end_time = $4, last_modified = NOW()
WHERE id = $1`

// SaveRelocation persists an applied move.
func (r *EventRepository) SaveRelocation(ctx context.Context, id, date, startTime, endTime string) error {
	started := time.Now()
	res, err := r.db.ExecContext(ctx, saveRelocationQuery, id, date, startTime, endTime)
	if err != nil {
		return fmt.Errorf("save relocation: %w", err)
	}
	r.observe("save_relocation", started)
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save relocation result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *EventRepository) observe(label string, started time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(started))
	}
}

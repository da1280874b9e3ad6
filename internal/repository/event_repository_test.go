package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan-dev/timegrid-api/internal/models"
)

func newEventRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func eventColumns() []string {
	return []string{
		"id", "title", "description", "event_date", "start_time", "end_time",
		"duration_minutes", "event_type", "status", "recurring", "recurrence_pattern",
		"created_by", "last_modified",
		"subject_id", "subject_name", "subject_code", "subject_color",
		"teacher_id", "teacher_name",
		"room_id", "room_name", "room_capacity", "room_building",
	}
}

func TestEventRepositoryFetchEvents(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db, nil)

	modified := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventColumns()).
		AddRow("ev-1", "Algorithms Lecture", "weekly lecture", "2026-03-02", "09:00", "10:30",
			90, "lecture", "scheduled", true, "weekly",
			"admin-1", modified,
			"sub-1", "Algorithms", "CS201", "#4287f5",
			"t-1", "Dr. Chen",
			"r-1", "A-101", 120, "Main").
		AddRow("ev-2", "Databases Lab", nil, "2026-03-03", "14:00", "16:00",
			120, "lab", "scheduled", false, nil,
			nil, modified,
			"sub-2", "Databases", "CS305", nil,
			"t-2", "Dr. Okafor",
			"r-2", "Lab-3", 30, nil)
	mock.ExpectQuery("SELECT e.id, e.title, e.description").
		WithArgs("2026-03-02", "2026-03-08").
		WillReturnRows(rows)

	programRows := sqlmock.NewRows([]string{"event_id", "program_id", "program_name", "enrolled_count"}).
		AddRow("ev-1", "prog-1", "CS Year 2", 85).
		AddRow("ev-1", "prog-2", "Math Year 2", 40).
		AddRow("ev-2", "prog-1", "CS Year 2", 85)
	mock.ExpectQuery("SELECT ep.event_id, p.id AS program_id").
		WithArgs("2026-03-02", "2026-03-08").
		WillReturnRows(programRows)

	events, err := repo.FetchEvents(context.Background(), "2026-03-02", "2026-03-08")
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "ev-1", first.ID)
	assert.Equal(t, models.EventLecture, first.Type)
	assert.Equal(t, "09:00", first.StartTime)
	assert.Equal(t, "Algorithms", first.Subject.Name)
	assert.Equal(t, "#4287f5", first.Subject.Color)
	assert.Equal(t, 120, first.Room.Capacity)
	require.Len(t, first.Programs, 2)
	assert.Equal(t, 125, first.TotalEnrolled())

	second := events[1]
	assert.Empty(t, second.Description)
	assert.Empty(t, second.RecurrencePattern)
	require.Len(t, second.Programs, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryFetchEventsQueryError(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db, nil)

	mock.ExpectQuery("SELECT e.id, e.title, e.description").
		WithArgs("2026-03-02", "2026-03-08").
		WillReturnError(context.DeadlineExceeded)

	_, err := repo.FetchEvents(context.Background(), "2026-03-02", "2026-03-08")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySaveRelocation(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db, nil)

	mock.ExpectExec("UPDATE calendar_events").
		WithArgs("ev-1", "2026-03-04", "14:00", "15:30").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveRelocation(context.Background(), "ev-1", "2026-03-04", "14:00", "15:30"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySaveRelocationMissingEvent(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db, nil)

	mock.ExpectExec("UPDATE calendar_events").
		WithArgs("ghost", "2026-03-04", "14:00", "15:30").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveRelocation(context.Background(), "ghost", "2026-03-04", "14:00", "15:30")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

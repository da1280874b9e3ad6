package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan-dev/timegrid-api/internal/models"
)

func fixtureEvents() []models.CalendarEvent {
	return []models.CalendarEvent{
		{
			ID:      "ev-1",
			Title:   "Linear Algebra",
			Subject: models.SubjectRef{ID: "s1", Name: "Mathematics"},
			Teacher: models.TeacherRef{ID: "t1", Name: "Dr. Novak"},
			Room:    models.RoomRef{ID: "r1", Name: "A-101"},
			Type:    models.EventLecture,
			Status:  models.StatusScheduled,
		},
		{
			ID:      "ev-2",
			Title:   "Databases Lab",
			Subject: models.SubjectRef{ID: "s2", Name: "Databases"},
			Teacher: models.TeacherRef{ID: "t2", Name: "Prof. Silva"},
			Room:    models.RoomRef{ID: "r2", Name: "B-204"},
			Type:    models.EventLab,
			Status:  models.StatusConflict,
			Conflicts: []models.ConflictInfo{
				{Kind: models.ConflictRoom, Severity: models.SeverityHigh},
			},
		},
		{
			ID:      "ev-3",
			Title:   "Compilers",
			Subject: models.SubjectRef{ID: "s3", Name: "Compilers"},
			Teacher: models.TeacherRef{ID: "t1", Name: "Dr. Novak"},
			Room:    models.RoomRef{ID: "r3", Name: "C-310"},
			Type:    models.EventTutorial,
			Status:  models.StatusCompleted,
		},
	}
}

func TestApplyDefaultCriteriaShowsEverything(t *testing.T) {
	events := fixtureEvents()
	got := Apply(events, models.DefaultFilterCriteria())
	assert.Len(t, got, len(events))
}

func TestApplySearchIsCaseInsensitive(t *testing.T) {
	events := fixtureEvents()
	criteria := models.DefaultFilterCriteria()

	criteria.Search = "databases"
	got := Apply(events, criteria)
	require.Len(t, got, 1)
	assert.Equal(t, "ev-2", got[0].ID)

	// matches teacher name too
	criteria.Search = "NOVAK"
	got = Apply(events, criteria)
	require.Len(t, got, 2)

	// and room name
	criteria.Search = "b-204"
	got = Apply(events, criteria)
	require.Len(t, got, 1)
	assert.Equal(t, "ev-2", got[0].ID)
}

func TestApplyConjunction(t *testing.T) {
	events := fixtureEvents()
	criteria := models.DefaultFilterCriteria()
	criteria.TeacherIDs = []string{"t1"}
	criteria.Types = []models.EventType{models.EventTutorial}

	got := Apply(events, criteria)
	require.Len(t, got, 1)
	assert.Equal(t, "ev-3", got[0].ID)
}

func TestApplyRoomAllowList(t *testing.T) {
	events := fixtureEvents()
	criteria := models.DefaultFilterCriteria()
	criteria.RoomIDs = []string{"r1", "r3"}

	got := Apply(events, criteria)
	require.Len(t, got, 2)
	assert.Equal(t, "ev-1", got[0].ID)
	assert.Equal(t, "ev-3", got[1].ID)
}

func TestApplyHidesConflictsAndCompleted(t *testing.T) {
	events := fixtureEvents()

	criteria := models.DefaultFilterCriteria()
	criteria.ShowConflicts = false
	got := Apply(events, criteria)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.NotEqual(t, models.StatusConflict, e.Status)
	}

	criteria = models.DefaultFilterCriteria()
	criteria.ShowCompleted = false
	got = Apply(events, criteria)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.NotEqual(t, models.StatusCompleted, e.Status)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	events := fixtureEvents()
	criteria := models.DefaultFilterCriteria()
	criteria.Search = "novak"
	criteria.ShowCompleted = false

	once := Apply(events, criteria)
	twice := Apply(once, criteria)
	assert.Equal(t, once, twice)
}

func TestCountMatchesApply(t *testing.T) {
	events := fixtureEvents()
	criteria := models.DefaultFilterCriteria()
	criteria.ShowConflicts = false

	assert.Equal(t, len(Apply(events, criteria)), Count(events, criteria))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	events := fixtureEvents()
	criteria := models.DefaultFilterCriteria()
	criteria.Search = "compilers"

	_ = Apply(events, criteria)
	assert.Equal(t, fixtureEvents(), events)
}

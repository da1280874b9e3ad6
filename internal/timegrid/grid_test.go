package timegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan-dev/timegrid-api/internal/models"
)

func TestTimeToMinutes(t *testing.T) {
	cases := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"17:30", 1050, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:00", 0, true},
		{"09-00", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := TimeToMinutes(tc.input)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidTimeFormat, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}

func TestAddMinutes(t *testing.T) {
	got, err := AddMinutes("09:45", 30)
	require.NoError(t, err)
	assert.Equal(t, "10:15", got)

	got, err = AddMinutes("10:15", -30)
	require.NoError(t, err)
	assert.Equal(t, "09:45", got)

	got, err = AddMinutes("23:00", 59)
	require.NoError(t, err)
	assert.Equal(t, "23:59", got)

	_, err = AddMinutes("23:30", 45)
	require.ErrorIs(t, err, ErrTimeOutOfBounds)

	_, err = AddMinutes("00:10", -20)
	require.ErrorIs(t, err, ErrTimeOutOfBounds)

	_, err = AddMinutes("not-a-time", 10)
	require.ErrorIs(t, err, ErrInvalidTimeFormat)
}

func TestSlotsForWindow(t *testing.T) {
	slots := SlotsForWindow(8, 18, 30)
	require.Len(t, slots, 21)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "17:30", slots[19])
	assert.Equal(t, "18:00", slots[20])

	// deterministic and restartable
	assert.Equal(t, slots, SlotsForWindow(8, 18, 30))

	assert.Nil(t, SlotsForWindow(10, 8, 30))
	assert.Nil(t, SlotsForWindow(8, 18, 0))

	hourly := SlotsForWindow(9, 12, 60)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00"}, hourly)
}

func TestWeekDatesMondayStart(t *testing.T) {
	// 2025-01-08 is a Wednesday.
	dates, err := WeekDates("2025-01-08")
	require.NoError(t, err)
	require.Len(t, dates, 7)
	assert.Equal(t, "2025-01-06", dates[0])
	assert.Equal(t, "2025-01-12", dates[6])
}

func TestWeekDatesSundayBelongsToPreviousWeek(t *testing.T) {
	// 2025-01-12 is a Sunday; it is day 7 of the week starting 2025-01-06.
	dates, err := WeekDates("2025-01-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", dates[0])
	assert.Equal(t, "2025-01-12", dates[6])
}

func TestWeekDatesMondayAnchor(t *testing.T) {
	dates, err := WeekDates("2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", dates[0])

	_, err = WeekDates("06/01/2025")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestSlotSpan(t *testing.T) {
	assert.Equal(t, 3, SlotSpan(90, 30))
	assert.Equal(t, 2, SlotSpan(45, 30))
	assert.Equal(t, 1, SlotSpan(30, 30))
	assert.Equal(t, 0, SlotSpan(0, 30))
	assert.Equal(t, 0, SlotSpan(60, 0))
}

func TestSlotOccupancyAndAnchor(t *testing.T) {
	event := &models.CalendarEvent{StartTime: "09:00", EndTime: "10:30"}

	assert.True(t, OccupiesSlot(event, "09:00"))
	assert.True(t, OccupiesSlot(event, "09:30"))
	assert.True(t, OccupiesSlot(event, "10:00"))
	assert.False(t, OccupiesSlot(event, "10:30"))
	assert.False(t, OccupiesSlot(event, "08:30"))

	assert.True(t, IsAnchorSlot(event, "09:00"))
	assert.False(t, IsAnchorSlot(event, "09:30"))
}

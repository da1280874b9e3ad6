// Package timegrid provides the pure, stateless conversions between
// wall-clock time and weekly grid geometry. Nothing here owns state or
// touches the event set.
package timegrid

import (
	"errors"
	"fmt"
	"time"

	"github.com/uniplan-dev/timegrid-api/internal/models"
)

// DateLayout is the calendar-day encoding used across the grid.
const DateLayout = "2006-01-02"

const minutesPerDay = 24 * 60

var (
	// ErrInvalidTimeFormat signals a malformed "HH:MM" input. On well-formed
	// data this is a programming-contract violation, not a user error.
	ErrInvalidTimeFormat = errors.New("invalid time format")
	// ErrTimeOutOfBounds signals a result outside a single day (0-1439 min).
	ErrTimeOutOfBounds = errors.New("time out of bounds")
	// ErrInvalidDate signals a date not encoded as DateLayout.
	ErrInvalidDate = errors.New("invalid date")
)

// TimeToMinutes parses "HH:MM" (24h) into minutes since midnight.
func TimeToMinutes(t string) (int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	hour, ok1 := twoDigits(t[0], t[1])
	minute, ok2 := twoDigits(t[3], t[4])
	if !ok1 || !ok2 || hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	return hour*60 + minute, nil
}

// MinutesToTime formats minutes since midnight as "HH:MM". The argument must
// already be within a single day.
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutes shifts a "HH:MM" time by delta minutes, which may be negative.
// The result must stay within a single day.
func AddMinutes(t string, delta int) (string, error) {
	start, err := TimeToMinutes(t)
	if err != nil {
		return "", err
	}
	total := start + delta
	if total < 0 || total >= minutesPerDay {
		return "", fmt.Errorf("%w: %s%+d min", ErrTimeOutOfBounds, t, delta)
	}
	return MinutesToTime(total), nil
}

// SlotsForWindow generates the fixed list of grid rows: every stepMinutes
// from startHour:00 through closingHour:00 inclusive, so (8, 18, 30) yields
// 21 rows from "08:00" to "18:00".
func SlotsForWindow(startHour, endHour, stepMinutes int) []string {
	if stepMinutes <= 0 || endHour < startHour {
		return nil
	}
	slots := make([]string, 0, (endHour-startHour)*60/stepMinutes+1)
	for m := startHour * 60; m <= endHour*60 && m < minutesPerDay; m += stepMinutes {
		slots = append(slots, MinutesToTime(m))
	}
	return slots
}

// ParseDate parses a DateLayout calendar day.
func ParseDate(d string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, d)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, d)
	}
	return parsed, nil
}

// WeekDates returns the seven Monday-start dates of the ISO week containing
// anchor. A Sunday anchor maps to the preceding Monday's week (day 7).
func WeekDates(anchor string) ([]string, error) {
	day, err := ParseDate(anchor)
	if err != nil {
		return nil, err
	}
	// time.Weekday numbers Sunday as 0; shift so Monday is 0 and Sunday is 6.
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)

	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = monday.AddDate(0, 0, i).Format(DateLayout)
	}
	return dates, nil
}

// Window is the rendered daily time range of the grid.
type Window struct {
	OpeningHour int
	ClosingHour int
	SlotMinutes int
}

// Slots returns the window's grid rows.
func (w Window) Slots() []string {
	return SlotsForWindow(w.OpeningHour, w.ClosingHour, w.SlotMinutes)
}

// Contains reports whether a session starting at start and running for
// duration minutes fits entirely inside the window.
func (w Window) Contains(start string, duration int) bool {
	startMin, err := TimeToMinutes(start)
	if err != nil {
		return false
	}
	if duration < 0 {
		return false
	}
	return startMin >= w.OpeningHour*60 && startMin+duration <= w.ClosingHour*60
}

// SlotSpan reports how many rows an event of the given duration covers,
// rounding partial rows up.
func SlotSpan(durationMinutes, stepMinutes int) int {
	if stepMinutes <= 0 || durationMinutes <= 0 {
		return 0
	}
	return (durationMinutes + stepMinutes - 1) / stepMinutes
}

// OccupiesSlot reports whether the slot's start falls within the event's
// [start, end) window.
func OccupiesSlot(e *models.CalendarEvent, slot string) bool {
	slotMin, err := TimeToMinutes(slot)
	if err != nil {
		return false
	}
	start, err := TimeToMinutes(e.StartTime)
	if err != nil {
		return false
	}
	end, err := TimeToMinutes(e.EndTime)
	if err != nil {
		return false
	}
	return slotMin >= start && slotMin < end
}

// IsAnchorSlot reports whether this slot paints the event block. Only the
// slot exactly equal to the event's own start time anchors it, which prevents
// duplicate rendering across every overlapping row.
func IsAnchorSlot(e *models.CalendarEvent, slot string) bool {
	return e.StartTime == slot
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

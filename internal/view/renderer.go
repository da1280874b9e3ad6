// Package view assembles the week grid projection handed to clients. It is
// pure layout: conflict marking and filtering happen before events reach it.
package view

import (
	"github.com/uniplan-dev/timegrid-api/internal/models"
	"github.com/uniplan-dev/timegrid-api/internal/timegrid"
)

// EventBlock positions one event inside a day column. Row is the index of
// the time slot matching the event's start; Span is how many slot rows the
// block covers.
type EventBlock struct {
	Event models.CalendarEvent `json:"event"`
	Row   int                  `json:"row"`
	Span  int                  `json:"span"`
}

// DayColumn groups the blocks of one calendar day.
type DayColumn struct {
	Date   string       `json:"date"`
	Blocks []EventBlock `json:"blocks"`
}

// WeekView is the full render model for one Monday-to-Sunday window.
type WeekView struct {
	WeekDates []string    `json:"weekDates"`
	TimeSlots []string    `json:"timeSlots"`
	Days      []DayColumn `json:"days"`
}

// BuildWeekView lays out events on the week containing anchor. Each event
// appears exactly once, anchored at the slot equal to its start time; events
// whose start does not line up with a slot boundary, or that fall outside the
// week, are skipped rather than guessed at.
func BuildWeekView(events []models.CalendarEvent, anchor string, window timegrid.Window) (WeekView, error) {
	dates, err := timegrid.WeekDates(anchor)
	if err != nil {
		return WeekView{}, err
	}
	slots := window.Slots()

	columnByDate := make(map[string]int, len(dates))
	for i, d := range dates {
		columnByDate[d] = i
	}

	days := make([]DayColumn, len(dates))
	for i, d := range dates {
		days[i] = DayColumn{Date: d, Blocks: []EventBlock{}}
	}

	for _, e := range events {
		col, ok := columnByDate[e.Date]
		if !ok {
			continue
		}
		row := anchorRow(&e, slots)
		if row < 0 {
			continue
		}
		span := timegrid.SlotSpan(e.Duration, window.SlotMinutes)
		days[col].Blocks = append(days[col].Blocks, EventBlock{Event: e, Row: row, Span: span})
	}

	return WeekView{WeekDates: dates, TimeSlots: slots, Days: days}, nil
}

// anchorRow finds the single slot row that paints the event, or -1 when the
// start does not line up with any grid row.
func anchorRow(e *models.CalendarEvent, slots []string) int {
	for i, slot := range slots {
		if timegrid.IsAnchorSlot(e, slot) {
			return i
		}
	}
	return -1
}

// Package filter derives the visible event subset from the working set and
// the user's criteria. Pure functions only; the store is never mutated.
package filter

import "github.com/uniplan-dev/timegrid-api/internal/models"

// Apply evaluates the criteria conjunction over the input slice and returns
// the matching subset in input order. Applying it twice with the same
// criteria yields the same subset.
func Apply(events []models.CalendarEvent, criteria models.FilterCriteria) []models.CalendarEvent {
	result := make([]models.CalendarEvent, 0, len(events))
	for i := range events {
		if criteria.Matches(&events[i]) {
			result = append(result, events[i])
		}
	}
	return result
}

// Count reports how many events match without materialising the subset.
func Count(events []models.CalendarEvent, criteria models.FilterCriteria) int {
	n := 0
	for i := range events {
		if criteria.Matches(&events[i]) {
			n++
		}
	}
	return n
}

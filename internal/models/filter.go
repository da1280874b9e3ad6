package models

import "strings"

// FilterCriteria narrows the displayed event subset. All clauses are joined
// with AND; empty allow-lists allow everything.
type FilterCriteria struct {
	Search        string      `json:"search"`
	TeacherIDs    []string    `json:"teacherIds"`
	RoomIDs       []string    `json:"roomIds"`
	Types         []EventType `json:"types"`
	ShowConflicts bool        `json:"showConflicts"`
	ShowCompleted bool        `json:"showCompleted"`
}

// DefaultFilterCriteria shows the full working set.
func DefaultFilterCriteria() FilterCriteria {
	return FilterCriteria{ShowConflicts: true, ShowCompleted: true}
}

// Matches evaluates the conjunction against a single event.
func (f FilterCriteria) Matches(e *CalendarEvent) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(e.Title), term) &&
			!strings.Contains(strings.ToLower(e.Subject.Name), term) &&
			!strings.Contains(strings.ToLower(e.Teacher.Name), term) &&
			!strings.Contains(strings.ToLower(e.Room.Name), term) {
			return false
		}
	}
	if len(f.TeacherIDs) > 0 && !containsString(f.TeacherIDs, e.Teacher.ID) {
		return false
	}
	if len(f.RoomIDs) > 0 && !containsString(f.RoomIDs, e.Room.ID) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, e.Type) {
		return false
	}
	if !f.ShowConflicts && e.Status == StatusConflict {
		return false
	}
	if !f.ShowCompleted && e.Status == StatusCompleted {
		return false
	}
	return true
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func containsType(list []EventType, value EventType) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// Package conflict computes the authoritative conflicts list and derived
// status for every event in the visible working set.
package conflict

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/uniplan-dev/timegrid-api/internal/models"
	"github.com/uniplan-dev/timegrid-api/internal/timegrid"
)

// Observer receives detection telemetry. Implementations must be cheap;
// detection runs synchronously after every mutation.
type Observer interface {
	ObserveConflictScan(events, conflicts int, duration time.Duration)
}

// Detector runs the full pairwise scan. O(n²) over a single week's sessions
// is fine at this scale; replacing it with a sweep per resource key would be
// a drop-in optimization with identical observable results.
type Detector struct {
	observer Observer
	logger   *zap.Logger
}

// NewDetector constructs a Detector. Both arguments are optional.
func NewDetector(observer Observer, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{observer: observer, logger: logger}
}

// Detect recomputes every event's conflicts list and keeps its status in
// lock-step: status is StatusConflict iff the list is non-empty, and the
// overridden status is restored once conflicts clear.
func (d *Detector) Detect(events []*models.CalendarEvent) {
	start := time.Now()

	for _, e := range events {
		e.Conflicts = nil
	}

	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			d.checkPair(events[i], events[j])
		}
	}

	total := 0
	for _, e := range events {
		d.checkCapacity(e)
		applyStatus(e)
		total += len(e.Conflicts)
	}

	if d.observer != nil {
		d.observer.ObserveConflictScan(len(events), total, time.Since(start))
	}
	if total > 0 {
		d.logger.Debug("conflict scan", zap.Int("events", len(events)), zap.Int("conflicts", total))
	}
}

/// Primary returns the UI-facing primary conflict: highest severity first,
// ties broken by kind order (teacher > room > student > capacity).
func Primary(e *models.CalendarEvent) (models.ConflictInfo, bool) {
	if len(e.Conflicts) == 0 {
		return models.ConflictInfo{}, false
	}
	ranked := make([]models.ConflictInfo, len(e.Conflicts))
	copy(ranked, e.Conflicts)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Severity.Rank() != ranked[j].Severity.Rank() {
			return ranked[i].Severity.Rank() > ranked[j].Severity.Rank()
		}
		return ranked[i].Kind.Order() < ranked[j].Kind.Order()
	})
	return ranked[0], true
}

func (d *Detector) checkPair(a, b *models.CalendarEvent) {
	if a.Date != b.Date || !overlaps(a, b) {
		return
	}

	if a.Teacher.ID != "" && a.Teacher.ID == b.Teacher.ID {
		severity := models.SeverityHigh
		if a.Type == models.EventExam || b.Type == models.EventExam {
			severity = models.SeverityCritical
		}
		attach(a, b, models.ConflictTeacher, severity, func(other *models.CalendarEvent) string {
			return fmt.Sprintf("teacher %s is double-booked with %q (%s)", a.Teacher.Name, other.Title, other.TimeRange())
		})
	}

	if a.Room.ID != "" && a.Room.ID == b.Room.ID {
		attach(a, b, models.ConflictRoom, models.SeverityHigh, func(other *models.CalendarEvent) string {
			return fmt.Sprintf("room %s is double-booked with %q (%s)", a.Room.Name, other.Title, other.TimeRange())
		})
	}

	if a.SharesProgram(b) {
		attach(a, b, models.ConflictStudent, models.SeverityMedium, func(other *models.CalendarEvent) string {
			return fmt.Sprintf("student cohort overlaps with %q (%s)", other.Title, other.TimeRange())
		})
	}
}

func (d *Detector) checkCapacity(e *models.CalendarEvent) {
	capacity := e.Room.Capacity
	if capacity <= 0 {
		return
	}
	enrolled := e.TotalEnrolled()
	overflow := enrolled - capacity
	if overflow <= 0 {
		return
	}
	severity := models.SeverityMedium
	if overflow*5 > capacity { // overflow beyond 20% of capacity
		severity = models.SeverityCritical
	}
	e.Conflicts = append(e.Conflicts, models.ConflictInfo{
		Kind:     models.ConflictCapacity,
		Severity: severity,
		Message:  fmt.Sprintf("%d students enrolled exceed room %s capacity of %d", enrolled, e.Room.Name, capacity),
	})
}

// overlaps tests [a.start, a.end) against [b.start, b.end) on the same day.
func overlaps(a, b *models.CalendarEvent) bool {
	aStart, err := timegrid.TimeToMinutes(a.StartTime)
	if err != nil {
		return false
	}
	aEnd, err := timegrid.TimeToMinutes(a.EndTime)
	if err != nil {
		return false
	}
	bStart, err := timegrid.TimeToMinutes(b.StartTime)
	if err != nil {
		return false
	}
	bEnd, err := timegrid.TimeToMinutes(b.EndTime)
	if err != nil {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

func attach(a, b *models.CalendarEvent, kind models.ConflictKind, severity models.ConflictSeverity, message func(other *models.CalendarEvent) string) {
	a.Conflicts = append(a.Conflicts, models.ConflictInfo{
		Kind: kind, Severity: severity, Message: message(b), Other: refTo(b),
	})
	b.Conflicts = append(b.Conflicts, models.ConflictInfo{
		Kind: kind, Severity: severity, Message: message(a), Other: refTo(a),
	})
}

func refTo(e *models.CalendarEvent) *models.ConflictRef {
	return &models.ConflictRef{
		EventID:   e.ID,
		Title:     e.Title,
		Date:      e.Date,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}

func applyStatus(e *models.CalendarEvent) {
	if len(e.Conflicts) > 0 {
		if e.Status != models.StatusConflict {
			e.PriorStatus = e.Status
		}
		e.Status = models.StatusConflict
		return
	}
	if e.Status == models.StatusConflict {
		if e.PriorStatus != "" {
			e.Status = e.PriorStatus
		} else {
			e.Status = models.StatusScheduled
		}
		e.PriorStatus = ""
	}
}

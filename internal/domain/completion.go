package domain

import (
	"sort"

	"chapterhall/internal/domain/entities"
)

// CompletionReport is the validator's verdict for one meeting.
type CompletionReport struct {
	Status entities.MeetingStatus
	// MissingByPhase lists outstanding participant IDs per required phase
	// when Status is incomplete.
	MissingByPhase map[entities.Phase][]string
}

// RequiredAttendeeSet returns the participant IDs that count toward phase
// coverage: checked-in attendees, unioned defensively with every
// participant appearing in the time log. Attendance and time-log writes
// are not transactionally linked, so either can exist without the other.
func RequiredAttendeeSet(attendees []entities.Attendee, entries []entities.TimeLogEntry) map[string]bool {
	set := make(map[string]bool)
	for _, a := range attendees {
		if a.CheckedIn() {
			set[a.UserID] = true
		}
	}
	for _, e := range entries {
		if e.UserID != "" {
			set[e.UserID] = true
		}
	}
	return set
}

// CoverageGaps returns, per required phase, the members of the required
// attendee set without a time-log entry for that phase. An empty map means
// full coverage.
func CoverageGaps(attendees []entities.Attendee, entries []entities.TimeLogEntry) map[entities.Phase][]string {
	required := RequiredAttendeeSet(attendees, entries)
	gaps := make(map[entities.Phase][]string)
	for _, phase := range entities.RequiredPhases() {
		logged := make(map[string]bool)
		for _, e := range entries {
			if e.Phase == phase && e.UserID != "" {
				logged[e.UserID] = true
			}
		}
		var missing []string
		for id := range required {
			if !logged[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			gaps[phase] = missing
		}
	}
	return gaps
}

// ValidateCompletion is the authoritative, idempotent answer to whether a
// meeting should be considered completed, incomplete, or never started.
// It is a pure function over loaded state so the same logic serves both
// the inline completion attempt and the offline reconciliation pass.
func ValidateCompletion(meeting *entities.Meeting, attendees []entities.Attendee, entries []entities.TimeLogEntry) CompletionReport {
	if !meeting.Started() {
		return CompletionReport{Status: entities.StatusNeverStarted}
	}
	if meeting.CompletedAt.IsZero() {
		return CompletionReport{Status: entities.StatusIncomplete}
	}
	gaps := CoverageGaps(attendees, entries)
	if len(gaps) > 0 {
		return CompletionReport{Status: entities.StatusIncomplete, MissingByPhase: gaps}
	}
	return CompletionReport{Status: entities.StatusCompleted}
}

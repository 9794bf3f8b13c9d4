package domain

import "chapterhall/internal/domain/entities"

// The turn queue is derived, not stored: "who goes next" is recomputed from
// the current checked-in attendee set and the phase's time-log entries, so a
// late check-in mid-phase simply appears at the end of the remaining queue.

// NextParticipant returns the first checked-in attendee with no time-log
// entry (completed or skipped) for the phase, in check-in order. ok is
// false when the phase is exhausted.
func NextParticipant(attendees []entities.Attendee, entries []entities.TimeLogEntry, phase entities.Phase) (userID string, ok bool) {
	missing := MissingParticipants(attendees, entries, phase)
	if len(missing) == 0 {
		return "", false
	}
	return missing[0], true
}

// MissingParticipants returns the checked-in attendees without a time-log
// entry for the phase, in check-in order.
func MissingParticipants(attendees []entities.Attendee, entries []entities.TimeLogEntry, phase entities.Phase) []string {
	logged := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Phase == phase && e.UserID != "" {
			logged[e.UserID] = true
		}
	}
	var missing []string
	for _, a := range attendees {
		if a.CheckedIn() && !logged[a.UserID] {
			missing = append(missing, a.UserID)
		}
	}
	return missing
}

// IsPhaseComplete reports whether every currently checked-in attendee has a
// turn-log entry for the phase. Callers must pass freshly loaded state;
// the answer is never cached because attendees and entries can change
// concurrently from other clients.
func IsPhaseComplete(attendees []entities.Attendee, entries []entities.TimeLogEntry, phase entities.Phase) bool {
	return len(MissingParticipants(attendees, entries, phase)) == 0
}

// MissingResponses returns the checked-in attendees without a response of
// the given kind, in check-in order. Used for the curriculum and closing
// phase gates.
func MissingResponses(attendees []entities.Attendee, responses []entities.Response, kind entities.ResponseKind) []string {
	submitted := make(map[string]bool, len(responses))
	for _, r := range responses {
		if r.Kind == kind {
			submitted[r.UserID] = true
		}
	}
	var missing []string
	for _, a := range attendees {
		if a.CheckedIn() && !submitted[a.UserID] {
			missing = append(missing, a.UserID)
		}
	}
	return missing
}

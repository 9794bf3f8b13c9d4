package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors.
var (
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrAttendeeNotFound     = errors.New("attendee not found")
	ErrNotScribe            = errors.New("only the scribe can drive this meeting")
	ErrNotLeader            = errors.New("only a chapter leader can perform this action")
	ErrNotChapterMember     = errors.New("not an active member of this chapter")
	ErrAlreadyStarted       = errors.New("meeting has already been started")
	ErrMeetingNotInProgress = errors.New("meeting is not in progress")
	ErrDuplicateTurn        = errors.New("participant already has a turn for this phase")
	ErrTimerAlreadyOpen     = errors.New("a timer is already open for this meeting")
	ErrTimerNotOpen         = errors.New("no open timer for this meeting")
	ErrNotCheckedIn         = errors.New("participant is not checked in")
	ErrStaleMeeting         = errors.New("meeting was modified by another client")
	ErrMeetingEnded         = errors.New("meeting has no further phase")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
)

// PhaseIncompleteError reports a phase-advance (or completion) attempt made
// before every checked-in attendee is covered. Missing holds the outstanding
// participant IDs so callers can show exactly who is left.
type PhaseIncompleteError struct {
	Phase   string
	Missing []string
}

func (e *PhaseIncompleteError) Error() string {
	return fmt.Sprintf("phase %s incomplete: missing %s", e.Phase, strings.Join(e.Missing, ", "))
}

// Code maps a domain error to a stable string code used by adapters to
// resolve user-facing messages. Returns "" for non-domain errors.
func Code(err error) string {
	var incomplete *PhaseIncompleteError
	if errors.As(err, &incomplete) {
		return "phase_incomplete"
	}
	switch {
	case errors.Is(err, ErrMeetingNotFound):
		return "meeting_not_found"
	case errors.Is(err, ErrAttendeeNotFound):
		return "attendee_not_found"
	case errors.Is(err, ErrNotScribe):
		return "not_scribe"
	case errors.Is(err, ErrNotLeader):
		return "not_leader"
	case errors.Is(err, ErrNotChapterMember):
		return "not_chapter_member"
	case errors.Is(err, ErrAlreadyStarted):
		return "already_started"
	case errors.Is(err, ErrMeetingNotInProgress):
		return "meeting_not_in_progress"
	case errors.Is(err, ErrDuplicateTurn):
		return "duplicate_turn"
	case errors.Is(err, ErrTimerAlreadyOpen):
		return "timer_already_open"
	case errors.Is(err, ErrTimerNotOpen):
		return "timer_not_open"
	case errors.Is(err, ErrNotCheckedIn):
		return "not_checked_in"
	case errors.Is(err, ErrStaleMeeting):
		return "stale_meeting"
	case errors.Is(err, ErrMeetingEnded):
		return "meeting_ended"
	case errors.Is(err, ErrInvalidRating):
		return "invalid_rating"
	default:
		return ""
	}
}

package entities

import "time"

// ResponseKind identifies a per-meeting deliverable outside the turn queue.
type ResponseKind string

const (
	// ResponseCurriculum is a member's written reflection on the selected
	// curriculum module; it gates the curriculum phase.
	ResponseCurriculum ResponseKind = "curriculum_reflection"
	// ResponseRating is a member's end-of-session rating; it gates closing.
	ResponseRating ResponseKind = "session_rating"
)

// Response is one member's per-meeting deliverable, upserted idempotently
// keyed by (meeting, kind, member).
type Response struct {
	ID        uint
	MeetingID uint
	UserID    string
	Kind      ResponseKind
	ModuleID  string
	Text      string
	Rating    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KindForPhase returns the response kind that gates the given phase, if any.
func KindForPhase(p Phase) (ResponseKind, bool) {
	switch p {
	case PhaseCurriculum:
		return ResponseCurriculum, true
	case PhaseClosing:
		return ResponseRating, true
	default:
		return "", false
	}
}

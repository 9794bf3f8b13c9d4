package input

import (
	"context"

	"chapterhall/internal/domain/entities"
)

// TurnUseCase covers attendance and per-member timed participation.
type TurnUseCase interface {
	// SetRSVP records a member's intention for the meeting.
	SetRSVP(ctx context.Context, meetingID uint, userID string, rsvp entities.RSVPStatus) error
	// CheckIn marks the member present. Idempotent: a second check-in
	// keeps the original timestamp.
	CheckIn(ctx context.Context, meetingID uint, userID string, mode entities.AttendanceMode) (*entities.Attendee, error)
	// NextParticipant computes who is next up for the phase from current
	// persisted state.
	NextParticipant(ctx context.Context, meetingID uint, phase entities.Phase) (string, bool, error)
	// RecordTurn appends a closed turn. Write-once per
	// (meeting, phase, participant).
	RecordTurn(ctx context.Context, meetingID uint, phase entities.Phase, userID string, durationSeconds int, skipped bool, priority, requestedBy string) (*entities.TimeLogEntry, error)
	// StartTimer opens a time-log entry for a participant turn
	// (userID set) or section bracket (userID empty). Scribe only.
	StartTimer(ctx context.Context, meetingID uint, phase entities.Phase, userID, requestedBy string) (*entities.TimeLogEntry, error)
	// StopTimer closes the meeting's open entry. Scribe only.
	StopTimer(ctx context.Context, meetingID uint, skipped bool, requestedBy string) (*entities.TimeLogEntry, error)
	// Skip records a zero-duration skipped turn without opening a timer.
	Skip(ctx context.Context, meetingID uint, phase entities.Phase, userID, requestedBy string) (*entities.TimeLogEntry, error)
}

// ResponseUseCase covers per-member deliverables outside the turn queue.
type ResponseUseCase interface {
	// SubmitResponse upserts a curriculum reflection for the member.
	SubmitResponse(ctx context.Context, meetingID uint, userID, moduleID, text string) (*entities.Response, error)
	// SubmitFeedback upserts a session rating for the member.
	SubmitFeedback(ctx context.Context, meetingID uint, userID string, rating int) (*entities.Response, error)
}

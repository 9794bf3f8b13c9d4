package input

import (
	"context"
	"time"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
)

// MeetingUseCase drives a meeting's lifecycle and phase progression.
type MeetingUseCase interface {
	// Schedule creates a meeting and seeds one attendance record per
	// active chapter member. Leader only.
	Schedule(ctx context.Context, chapterID string, scheduledAt time.Time, scribeID, curriculumModuleID, requestedBy string) (*entities.Meeting, error)
	// State loads the full observable state of a meeting.
	State(ctx context.Context, meetingID uint) (*entities.MeetingState, error)
	// Start transitions scheduled -> in_progress. Leader or backup leader.
	Start(ctx context.Context, meetingID uint, requestedBy string) (*entities.Meeting, error)
	// Advance moves the meeting to the next phase once the current
	// phase's completion predicate holds. Scribe, or leader override.
	Advance(ctx context.Context, meetingID uint, requestedBy string) (*entities.Meeting, error)
	// Complete runs the completion validator and, when coverage holds,
	// conditionally marks the meeting completed.
	Complete(ctx context.Context, meetingID uint, requestedBy string) (domain.CompletionReport, error)
	// Reset purges all turn/time/response data and reverts the meeting to
	// scheduled. Leader only.
	Reset(ctx context.Context, meetingID uint, requestedBy string) error
}

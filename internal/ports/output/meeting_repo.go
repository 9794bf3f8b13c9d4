package output

import (
	"context"
	"time"

	"chapterhall/internal/domain/entities"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	FindByID(ctx context.Context, id uint) (*entities.Meeting, error)
	// FindForReconciliation returns meetings scheduled before cutoff that
	// have not reached a terminal status.
	FindForReconciliation(ctx context.Context, cutoff time.Time) ([]entities.Meeting, error)
	// Update writes the meeting's mutable state guarded by its version
	// token; it fails with domain.ErrStaleMeeting when another client won
	// the race, and bumps meeting.Version on success.
	Update(ctx context.Context, meeting *entities.Meeting) error
	// SetOutcome applies a validator verdict. The write is conditional:
	// a meeting already marked completed is never moved backward.
	SetOutcome(ctx context.Context, id uint, status entities.MeetingStatus) error
	// Reset purges all turn, time-log, and response data for the meeting
	// and reverts it to scheduled. Administrative/testing tooling only.
	Reset(ctx context.Context, id uint) error
}

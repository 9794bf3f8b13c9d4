package output

import (
	"context"

	"chapterhall/internal/domain/entities"
)

type TimeLogRepository interface {
	// Create inserts a time-log entry. The database enforces write-once
	// turns and the single-open-timer rule; violations surface as
	// domain.ErrDuplicateTurn / domain.ErrTimerAlreadyOpen.
	Create(ctx context.Context, entry *entities.TimeLogEntry) error
	FindByMeetingID(ctx context.Context, meetingID uint) ([]entities.TimeLogEntry, error)
	FindByMeetingIDAndPhase(ctx context.Context, meetingID uint, phase entities.Phase) ([]entities.TimeLogEntry, error)
	// FindOpen returns the meeting's open entry, or domain.ErrTimerNotOpen.
	FindOpen(ctx context.Context, meetingID uint) (*entities.TimeLogEntry, error)
	// Close persists end time, duration, and overtime of a closed entry.
	Close(ctx context.Context, entry *entities.TimeLogEntry) error
}

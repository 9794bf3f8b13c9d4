package output

import (
	"context"

	"chapterhall/internal/domain/entities"
)

type AttendanceRepository interface {
	Create(ctx context.Context, attendee *entities.Attendee) error
	// FindByMeetingID returns attendance records in check-in order
	// (checked-in first, by check-in time; the rest by creation).
	FindByMeetingID(ctx context.Context, meetingID uint) ([]entities.Attendee, error)
	FindByMeetingIDAndUserID(ctx context.Context, meetingID uint, userID string) (*entities.Attendee, error)
	Update(ctx context.Context, attendee *entities.Attendee) error
}

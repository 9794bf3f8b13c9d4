package output

import (
	"context"

	"chapterhall/internal/domain/entities"
)

// ActivityEventType identifies a notification-worthy transition.
type ActivityEventType string

const (
	ActivityMeetingStarted   ActivityEventType = "meeting_started"
	ActivityPhaseAdvanced    ActivityEventType = "phase_advanced"
	ActivityMeetingCompleted ActivityEventType = "meeting_completed"
)

// ActivityEvent is an outbound activity-log/notification record.
type ActivityEvent struct {
	Type    ActivityEventType
	Meeting *entities.Meeting
	ActorID string
}

// Notifier emits activity events. Emission is strictly best-effort: the
// caller logs failures and carries on; a notifier error must never fail
// the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, event ActivityEvent) error
}

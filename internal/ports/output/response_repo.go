package output

import (
	"context"

	"chapterhall/internal/domain/entities"
)

type ResponseRepository interface {
	// Upsert creates or overwrites the response keyed by
	// (meeting, kind, member). Resubmitting never duplicates.
	Upsert(ctx context.Context, response *entities.Response) error
	FindByMeetingID(ctx context.Context, meetingID uint) ([]entities.Response, error)
	FindByMeetingIDAndKind(ctx context.Context, meetingID uint, kind entities.ResponseKind) ([]entities.Response, error)
}

package output

import (
	"context"

	"chapterhall/internal/domain/entities"
)

// MembershipService is the chapter-membership collaborator, consumed
// read-only. Role checks go through FindMember on every command; roles are
// never cached in a session because chapter membership can change between
// actions.
type MembershipService interface {
	ActiveMembers(ctx context.Context, chapterID string) ([]entities.Member, error)
	// FindMember returns the member's current record, or
	// domain.ErrNotChapterMember when absent or inactive.
	FindMember(ctx context.Context, chapterID, userID string) (*entities.Member, error)
}

// CurriculumService is the curriculum-content collaborator; the core only
// stores module references and fetches text for display.
type CurriculumService interface {
	ModuleContent(ctx context.Context, moduleID string) (string, error)
}

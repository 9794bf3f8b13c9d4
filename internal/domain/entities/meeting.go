package entities

import "time"

// MeetingStatus is the lifecycle status of a meeting.
type MeetingStatus string

const (
	StatusScheduled  MeetingStatus = "scheduled"
	StatusInProgress MeetingStatus = "in_progress"
	StatusCompleted  MeetingStatus = "completed"
	// StatusNeverStarted and StatusIncomplete are terminal failure states
	// assigned by the completion validator, never by live commands.
	StatusNeverStarted MeetingStatus = "never_started"
	StatusIncomplete   MeetingStatus = "incomplete"
)

// Meeting is one in-person/video gathering of a chapter.
type Meeting struct {
	ID                 uint
	ChapterID          string
	ScheduledAt        time.Time
	Status             MeetingStatus
	Phase              Phase
	ScribeID           string
	ActualStartTime    time.Time // zero = never started
	CompletedAt        time.Time // zero = not completed
	CurriculumModuleID string
	// Version is the optimistic-concurrency token on the meeting row;
	// every state-changing write must match and bump it.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Started reports whether the meeting was ever started.
func (m *Meeting) Started() bool {
	return !m.ActualStartTime.IsZero()
}

package httpapi

import (
	"time"

	"chapterhall/internal/domain/entities"
)

// Wire representations of the domain entities. Zero timestamps render as
// null so clients can test "checked in yet?" without sentinel dates.

type meetingView struct {
	ID                 uint       `json:"id"`
	ChapterID          string     `json:"chapter_id"`
	ScheduledAt        time.Time  `json:"scheduled_at"`
	Status             string     `json:"status"`
	Phase              string     `json:"phase"`
	ScribeID           string     `json:"scribe_id"`
	ActualStartTime    *time.Time `json:"actual_start_time"`
	CompletedAt        *time.Time `json:"completed_at"`
	CurriculumModuleID string     `json:"curriculum_module_id,omitempty"`
	Version            int        `json:"version"`
}

type attendeeView struct {
	UserID      string     `json:"user_id"`
	RSVP        string     `json:"rsvp_status"`
	CheckedInAt *time.Time `json:"checked_in_at"`
	Mode        string     `json:"attendance_type,omitempty"`
}

type timeLogView struct {
	ID              uint       `json:"id"`
	Phase           string     `json:"phase"`
	UserID          string     `json:"user_id,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds int        `json:"duration_seconds"`
	OvertimeSeconds int        `json:"overtime_seconds"`
	Priority        string     `json:"priority,omitempty"`
	Skipped         bool       `json:"skipped"`
}

type responseView struct {
	UserID   string `json:"user_id"`
	Kind     string `json:"kind"`
	ModuleID string `json:"module_id,omitempty"`
	Text     string `json:"text,omitempty"`
	Rating   int    `json:"rating,omitempty"`
}

type stateView struct {
	Meeting   meetingView    `json:"meeting"`
	Attendees []attendeeView `json:"attendees"`
	TimeLog   []timeLogView  `json:"time_log"`
	Responses []responseView `json:"responses"`
	NextUp    string         `json:"next_up,omitempty"`
	Missing   []string       `json:"missing,omitempty"`
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toMeetingView(m *entities.Meeting) meetingView {
	return meetingView{
		ID:                 m.ID,
		ChapterID:          m.ChapterID,
		ScheduledAt:        m.ScheduledAt,
		Status:             string(m.Status),
		Phase:              string(m.Phase),
		ScribeID:           m.ScribeID,
		ActualStartTime:    nullableTime(m.ActualStartTime),
		CompletedAt:        nullableTime(m.CompletedAt),
		CurriculumModuleID: m.CurriculumModuleID,
		Version:            m.Version,
	}
}

func toTimeLogView(e *entities.TimeLogEntry) timeLogView {
	return timeLogView{
		ID:              e.ID,
		Phase:           string(e.Phase),
		UserID:          e.UserID,
		StartTime:       e.StartTime,
		EndTime:         nullableTime(e.EndTime),
		DurationSeconds: int(e.Duration / time.Second),
		OvertimeSeconds: int(e.Overtime / time.Second),
		Priority:        e.Priority,
		Skipped:         e.Skipped,
	}
}

func toStateView(state *entities.MeetingState) stateView {
	view := stateView{
		Meeting: toMeetingView(&state.Meeting),
		NextUp:  state.NextUp,
		Missing: state.Missing,
	}
	for i := range state.Attendees {
		a := &state.Attendees[i]
		view.Attendees = append(view.Attendees, attendeeView{
			UserID:      a.UserID,
			RSVP:        string(a.RSVP),
			CheckedInAt: nullableTime(a.CheckedInAt),
			Mode:        string(a.Mode),
		})
	}
	for i := range state.TimeLog {
		view.TimeLog = append(view.TimeLog, toTimeLogView(&state.TimeLog[i]))
	}
	for i := range state.Responses {
		r := &state.Responses[i]
		view.Responses = append(view.Responses, responseView{
			UserID:   r.UserID,
			Kind:     string(r.Kind),
			ModuleID: r.ModuleID,
			Text:     r.Text,
			Rating:   r.Rating,
		})
	}
	return view
}

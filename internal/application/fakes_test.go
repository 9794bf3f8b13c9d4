package application

import (
	"context"
	"sort"
	"time"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/output"
)

// In-memory fakes of the output ports. They mirror the database-enforced
// invariants (write-once turns, single open timer, version guard) so the
// services can be tested against realistic failure modes.

type fakeMeetingRepo struct {
	meetings map[uint]entities.Meeting
	nextID   uint
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[uint]entities.Meeting), nextID: 1}
}

func (r *fakeMeetingRepo) Create(_ context.Context, meeting *entities.Meeting) error {
	meeting.ID = r.nextID
	r.nextID++
	r.meetings[meeting.ID] = *meeting
	return nil
}

func (r *fakeMeetingRepo) FindByID(_ context.Context, id uint) (*entities.Meeting, error) {
	m, ok := r.meetings[id]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	return &m, nil
}

func (r *fakeMeetingRepo) FindForReconciliation(_ context.Context, cutoff time.Time) ([]entities.Meeting, error) {
	var out []entities.Meeting
	for _, m := range r.meetings {
		terminal := m.Status == entities.StatusCompleted ||
			m.Status == entities.StatusNeverStarted ||
			m.Status == entities.StatusIncomplete
		if !terminal && m.ScheduledAt.Before(cutoff) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMeetingRepo) Update(_ context.Context, meeting *entities.Meeting) error {
	stored, ok := r.meetings[meeting.ID]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	if stored.Version != meeting.Version {
		return domain.ErrStaleMeeting
	}
	meeting.Version++
	r.meetings[meeting.ID] = *meeting
	return nil
}

func (r *fakeMeetingRepo) SetOutcome(_ context.Context, id uint, status entities.MeetingStatus) error {
	m, ok := r.meetings[id]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	if m.Status == entities.StatusCompleted {
		return nil
	}
	m.Status = status
	r.meetings[id] = m
	return nil
}

func (r *fakeMeetingRepo) Reset(_ context.Context, id uint) error {
	m, ok := r.meetings[id]
	if !ok {
		return domain.ErrMeetingNotFound
	}
	m.Status = entities.StatusScheduled
	m.Phase = entities.PhaseNotStarted
	m.ActualStartTime = time.Time{}
	m.CompletedAt = time.Time{}
	r.meetings[id] = m
	return nil
}

type fakeAttendanceRepo struct {
	attendees []entities.Attendee
	nextID    uint
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{nextID: 1}
}

func (r *fakeAttendanceRepo) Create(_ context.Context, attendee *entities.Attendee) error {
	attendee.ID = r.nextID
	r.nextID++
	r.attendees = append(r.attendees, *attendee)
	return nil
}

func (r *fakeAttendanceRepo) FindByMeetingID(_ context.Context, meetingID uint) ([]entities.Attendee, error) {
	var out []entities.Attendee
	for _, a := range r.attendees {
		if a.MeetingID == meetingID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].CheckedIn(), out[j].CheckedIn()
		if ci != cj {
			return ci
		}
		if ci && cj && !out[i].CheckedInAt.Equal(out[j].CheckedInAt) {
			return out[i].CheckedInAt.Before(out[j].CheckedInAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeAttendanceRepo) FindByMeetingIDAndUserID(_ context.Context, meetingID uint, userID string) (*entities.Attendee, error) {
	for _, a := range r.attendees {
		if a.MeetingID == meetingID && a.UserID == userID {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrAttendeeNotFound
}

func (r *fakeAttendanceRepo) Update(_ context.Context, attendee *entities.Attendee) error {
	for i, a := range r.attendees {
		if a.ID == attendee.ID {
			r.attendees[i] = *attendee
			return nil
		}
	}
	return domain.ErrAttendeeNotFound
}

type fakeTimeLogRepo struct {
	entries []entities.TimeLogEntry
	nextID  uint
}

func newFakeTimeLogRepo() *fakeTimeLogRepo {
	return &fakeTimeLogRepo{nextID: 1}
}

func (r *fakeTimeLogRepo) Create(_ context.Context, entry *entities.TimeLogEntry) error {
	for _, e := range r.entries {
		if e.MeetingID != entry.MeetingID {
			continue
		}
		if entry.UserID != "" && e.UserID == entry.UserID && e.Phase == entry.Phase {
			return domain.ErrDuplicateTurn
		}
		if entry.Open() && e.Open() {
			return domain.ErrTimerAlreadyOpen
		}
	}
	entry.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeTimeLogRepo) FindByMeetingID(_ context.Context, meetingID uint) ([]entities.TimeLogEntry, error) {
	var out []entities.TimeLogEntry
	for _, e := range r.entries {
		if e.MeetingID == meetingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeTimeLogRepo) FindByMeetingIDAndPhase(_ context.Context, meetingID uint, phase entities.Phase) ([]entities.TimeLogEntry, error) {
	var out []entities.TimeLogEntry
	for _, e := range r.entries {
		if e.MeetingID == meetingID && e.Phase == phase {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeTimeLogRepo) FindOpen(_ context.Context, meetingID uint) (*entities.TimeLogEntry, error) {
	for _, e := range r.entries {
		if e.MeetingID == meetingID && e.Open() {
			found := e
			return &found, nil
		}
	}
	return nil, domain.ErrTimerNotOpen
}

func (r *fakeTimeLogRepo) Close(_ context.Context, entry *entities.TimeLogEntry) error {
	for i, e := range r.entries {
		if e.ID == entry.ID {
			r.entries[i] = *entry
			return nil
		}
	}
	return domain.ErrTimerNotOpen
}

type fakeResponseRepo struct {
	responses []entities.Response
	nextID    uint
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{nextID: 1}
}

func (r *fakeResponseRepo) Upsert(_ context.Context, response *entities.Response) error {
	for i, existing := range r.responses {
		if existing.MeetingID == response.MeetingID &&
			existing.Kind == response.Kind &&
			existing.UserID == response.UserID {
			response.ID = existing.ID
			r.responses[i] = *response
			return nil
		}
	}
	response.ID = r.nextID
	r.nextID++
	r.responses = append(r.responses, *response)
	return nil
}

func (r *fakeResponseRepo) FindByMeetingID(_ context.Context, meetingID uint) ([]entities.Response, error) {
	var out []entities.Response
	for _, resp := range r.responses {
		if resp.MeetingID == meetingID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *fakeResponseRepo) FindByMeetingIDAndKind(_ context.Context, meetingID uint, kind entities.ResponseKind) ([]entities.Response, error) {
	var out []entities.Response
	for _, resp := range r.responses {
		if resp.MeetingID == meetingID && resp.Kind == kind {
			out = append(out, resp)
		}
	}
	return out, nil
}

type fakeMembership struct {
	members map[string]entities.Member // keyed chapterID + "/" + userID
}

func newFakeMembership(members ...entities.Member) *fakeMembership {
	f := &fakeMembership{members: make(map[string]entities.Member)}
	for _, m := range members {
		f.members[m.ChapterID+"/"+m.UserID] = m
	}
	return f
}

func (f *fakeMembership) ActiveMembers(_ context.Context, chapterID string) ([]entities.Member, error) {
	var out []entities.Member
	for _, m := range f.members {
		if m.ChapterID == chapterID && m.Active {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeMembership) FindMember(_ context.Context, chapterID, userID string) (*entities.Member, error) {
	m, ok := f.members[chapterID+"/"+userID]
	if !ok || !m.Active {
		return nil, domain.ErrNotChapterMember
	}
	return &m, nil
}

type fakeNotifier struct {
	events []output.ActivityEvent
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, event output.ActivityEvent) error {
	f.events = append(f.events, event)
	return f.err
}

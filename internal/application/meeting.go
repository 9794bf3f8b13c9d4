package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/output"
)

// MeetingService drives a meeting's lifecycle and phase progression. All
// invariants are enforced here, at write time, against freshly loaded
// state: there is no pre-validation pass and no cached authorization.
type MeetingService struct {
	meetings   output.MeetingRepository
	attendance output.AttendanceRepository
	timeLog    output.TimeLogRepository
	responses  output.ResponseRepository
	membership output.MembershipService
	notifier   output.Notifier
	log        zerolog.Logger
	clock      func() time.Time
}

func NewMeetingService(
	meetings output.MeetingRepository,
	attendance output.AttendanceRepository,
	timeLog output.TimeLogRepository,
	responses output.ResponseRepository,
	membership output.MembershipService,
	notifier output.Notifier,
	log zerolog.Logger,
) *MeetingService {
	return &MeetingService{
		meetings:   meetings,
		attendance: attendance,
		timeLog:    timeLog,
		responses:  responses,
		membership: membership,
		notifier:   notifier,
		log:        log,
		clock:      time.Now,
	}
}

// Schedule creates a meeting and seeds one attendance record per active
// chapter member, each with no_response RSVP.
func (s *MeetingService) Schedule(ctx context.Context, chapterID string, scheduledAt time.Time, scribeID, curriculumModuleID, requestedBy string) (*entities.Meeting, error) {
	requester, err := s.membership.FindMember(ctx, chapterID, requestedBy)
	if err != nil {
		return nil, err
	}
	if !requester.CanLead() {
		return nil, domain.ErrNotLeader
	}
	meeting := &entities.Meeting{
		ChapterID:          chapterID,
		ScheduledAt:        scheduledAt,
		Status:             entities.StatusScheduled,
		Phase:              entities.PhaseNotStarted,
		ScribeID:           scribeID,
		CurriculumModuleID: curriculumModuleID,
	}
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, err
	}
	members, err := s.membership.ActiveMembers(ctx, chapterID)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	for _, m := range members {
		attendee := &entities.Attendee{
			MeetingID: meeting.ID,
			UserID:    m.UserID,
			RSVP:      entities.RSVPNoResponse,
		}
		if err := s.attendance.Create(ctx, attendee); err != nil {
			return nil, fmt.Errorf("seed attendance: %w", err)
		}
	}
	return meeting, nil
}

// State loads the full observable state of a meeting, with next-up and
// outstanding participants computed for the current phase.
func (s *MeetingService) State(ctx context.Context, meetingID uint) (*entities.MeetingState, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	attendees, err := s.attendance.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	entries, err := s.timeLog.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	state := &entities.MeetingState{
		Meeting:   *meeting,
		Attendees: attendees,
		TimeLog:   entries,
		Responses: responses,
	}
	switch {
	case meeting.Phase.RequiresTurns():
		state.Missing = domain.MissingParticipants(attendees, entries, meeting.Phase)
		if next, ok := domain.NextParticipant(attendees, entries, meeting.Phase); ok {
			state.NextUp = next
		}
	case meeting.Phase.RequiresResponses():
		if kind, ok := entities.KindForPhase(meeting.Phase); ok {
			state.Missing = domain.MissingResponses(attendees, responses, kind)
		}
	}
	return state, nil
}

// Start transitions scheduled -> in_progress and stamps the actual start
// time. Only a leader or backup leader of the owning chapter may start.
func (s *MeetingService) Start(ctx context.Context, meetingID uint, requestedBy string) (*entities.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	requester, err := s.membership.FindMember(ctx, meeting.ChapterID, requestedBy)
	if err != nil {
		return nil, err
	}
	if !requester.CanLead() {
		return nil, domain.ErrNotLeader
	}
	if meeting.Status != entities.StatusScheduled {
		return nil, domain.ErrAlreadyStarted
	}
	meeting.Status = entities.StatusInProgress
	meeting.ActualStartTime = s.clock()
	meeting.Phase = entities.PhaseNotStarted
	if err := s.meetings.Update(ctx, meeting); err != nil {
		return nil, err
	}
	s.notify(ctx, output.ActivityEvent{Type: output.ActivityMeetingStarted, Meeting: meeting, ActorID: requestedBy})
	return meeting, nil
}

// Advance moves the meeting to the next phase in the fixed sequence. It
// succeeds only when the requester may drive the meeting and the current
// phase's completion predicate holds against current persisted state.
// There is no operation to move backward.
func (s *MeetingService) Advance(ctx context.Context, meetingID uint, requestedBy string) (*entities.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScribe(ctx, meeting, requestedBy); err != nil {
		return nil, err
	}
	if meeting.Status != entities.StatusInProgress {
		return nil, domain.ErrMeetingNotInProgress
	}
	next, ok := meeting.Phase.Next()
	if !ok {
		return nil, domain.ErrMeetingEnded
	}
	if err := s.phaseGate(ctx, meeting); err != nil {
		return nil, err
	}
	meeting.Phase = next
	if err := s.meetings.Update(ctx, meeting); err != nil {
		return nil, err
	}
	s.notify(ctx, output.ActivityEvent{Type: output.ActivityPhaseAdvanced, Meeting: meeting, ActorID: requestedBy})
	return meeting, nil
}

// phaseGate checks the current phase's completion predicate. Meditation
// and ethos (and not_started) have no per-participant requirement: the
// advance itself is the scribe's "mark complete" action.
func (s *MeetingService) phaseGate(ctx context.Context, meeting *entities.Meeting) error {
	switch {
	case meeting.Phase.RequiresTurns():
		attendees, err := s.attendance.FindByMeetingID(ctx, meeting.ID)
		if err != nil {
			return err
		}
		entries, err := s.timeLog.FindByMeetingIDAndPhase(ctx, meeting.ID, meeting.Phase)
		if err != nil {
			return err
		}
		if missing := domain.MissingParticipants(attendees, entries, meeting.Phase); len(missing) > 0 {
			return &domain.PhaseIncompleteError{Phase: string(meeting.Phase), Missing: missing}
		}
	case meeting.Phase.RequiresResponses():
		kind, _ := entities.KindForPhase(meeting.Phase)
		attendees, err := s.attendance.FindByMeetingID(ctx, meeting.ID)
		if err != nil {
			return err
		}
		responses, err := s.responses.FindByMeetingIDAndKind(ctx, meeting.ID, kind)
		if err != nil {
			return err
		}
		if missing := domain.MissingResponses(attendees, responses, kind); len(missing) > 0 {
			return &domain.PhaseIncompleteError{Phase: string(meeting.Phase), Missing: missing}
		}
	}
	return nil
}

// Complete runs the completion validator against current persisted state
// and, when every required phase is covered and the meeting has reached
// its final phase, conditionally marks it completed. Re-running on an
// already-completed meeting reports completed again; a meeting is never
// moved backward.
func (s *MeetingService) Complete(ctx context.Context, meetingID uint, requestedBy string) (domain.CompletionReport, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return domain.CompletionReport{}, err
	}
	if err := s.authorizeScribe(ctx, meeting, requestedBy); err != nil {
		return domain.CompletionReport{}, err
	}
	if meeting.Status == entities.StatusCompleted {
		return domain.CompletionReport{Status: entities.StatusCompleted}, nil
	}
	if !meeting.Started() {
		return domain.CompletionReport{Status: entities.StatusNeverStarted}, nil
	}
	attendees, err := s.attendance.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return domain.CompletionReport{}, err
	}
	entries, err := s.timeLog.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return domain.CompletionReport{}, err
	}
	gaps := domain.CoverageGaps(attendees, entries)
	if meeting.Phase != entities.PhaseEnded || len(gaps) > 0 {
		return domain.CompletionReport{Status: entities.StatusIncomplete, MissingByPhase: gaps}, nil
	}
	meeting.Status = entities.StatusCompleted
	meeting.CompletedAt = s.clock()
	if err := s.meetings.Update(ctx, meeting); err != nil {
		return domain.CompletionReport{}, err
	}
	s.notify(ctx, output.ActivityEvent{Type: output.ActivityMeetingCompleted, Meeting: meeting, ActorID: requestedBy})
	return domain.CompletionReport{Status: entities.StatusCompleted}, nil
}

// Reset purges all turn, time-log, and response data and reverts the
// meeting to scheduled. Administrative tooling; leader only.
func (s *MeetingService) Reset(ctx context.Context, meetingID uint, requestedBy string) error {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return err
	}
	requester, err := s.membership.FindMember(ctx, meeting.ChapterID, requestedBy)
	if err != nil {
		return err
	}
	if !requester.CanLead() {
		return domain.ErrNotLeader
	}
	return s.meetings.Reset(ctx, meetingID)
}

// authorizeScribe admits the meeting's designated scribe, or a chapter
// leader/backup leader as the override path. The role is re-read on every
// command; it is never cached in a session.
func (s *MeetingService) authorizeScribe(ctx context.Context, meeting *entities.Meeting, requestedBy string) error {
	if meeting.ScribeID == requestedBy {
		return nil
	}
	requester, err := s.membership.FindMember(ctx, meeting.ChapterID, requestedBy)
	if err != nil {
		return err
	}
	if !requester.CanLead() {
		return domain.ErrNotScribe
	}
	return nil
}

// notify emits an activity event. Strictly best-effort: failures are
// logged and swallowed so they can never fail the triggering operation.
func (s *MeetingService) notify(ctx context.Context, event output.ActivityEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", string(event.Type)).Uint("meeting_id", event.Meeting.ID).Msg("activity notification failed")
	}
}

package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/output"
)

// TurnService covers attendance and timed participation: RSVPs, check-ins,
// the derived turn queue, and the segment timer.
type TurnService struct {
	meetings   output.MeetingRepository
	attendance output.AttendanceRepository
	timeLog    output.TimeLogRepository
	membership output.MembershipService
	log        zerolog.Logger
	clock      func() time.Time
}

func NewTurnService(
	meetings output.MeetingRepository,
	attendance output.AttendanceRepository,
	timeLog output.TimeLogRepository,
	membership output.MembershipService,
	log zerolog.Logger,
) *TurnService {
	return &TurnService{
		meetings:   meetings,
		attendance: attendance,
		timeLog:    timeLog,
		membership: membership,
		log:        log,
		clock:      time.Now,
	}
}

// SetRSVP records a member's intention for the meeting.
func (s *TurnService) SetRSVP(ctx context.Context, meetingID uint, userID string, rsvp entities.RSVPStatus) error {
	attendee, err := s.attendance.FindByMeetingIDAndUserID(ctx, meetingID, userID)
	if err != nil {
		return err
	}
	attendee.RSVP = rsvp
	return s.attendance.Update(ctx, attendee)
}

// CheckIn marks the member present. Idempotent: checking in twice keeps
// the original timestamp. A member without a seeded attendance record
// (joined the chapter after scheduling) gets one created, provided they
// are an active chapter member.
func (s *TurnService) CheckIn(ctx context.Context, meetingID uint, userID string, mode entities.AttendanceMode) (*entities.Attendee, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	attendee, err := s.attendance.FindByMeetingIDAndUserID(ctx, meetingID, userID)
	if err != nil {
		if _, merr := s.membership.FindMember(ctx, meeting.ChapterID, userID); merr != nil {
			return nil, merr
		}
		attendee = &entities.Attendee{
			MeetingID:   meetingID,
			UserID:      userID,
			RSVP:        entities.RSVPYes,
			CheckedInAt: s.clock(),
			Mode:        mode,
		}
		if err := s.attendance.Create(ctx, attendee); err != nil {
			return nil, err
		}
		return attendee, nil
	}
	if attendee.CheckedIn() {
		return attendee, nil
	}
	attendee.CheckedInAt = s.clock()
	attendee.Mode = mode
	if err := s.attendance.Update(ctx, attendee); err != nil {
		return nil, err
	}
	return attendee, nil
}

// NextParticipant computes who is next up for the phase. Recomputed from
// persisted state on every call; a late check-in mid-phase reshapes the
// queue.
func (s *TurnService) NextParticipant(ctx context.Context, meetingID uint, phase entities.Phase) (string, bool, error) {
	attendees, err := s.attendance.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return "", false, err
	}
	entries, err := s.timeLog.FindByMeetingIDAndPhase(ctx, meetingID, phase)
	if err != nil {
		return "", false, err
	}
	next, ok := domain.NextParticipant(attendees, entries, phase)
	return next, ok, nil
}

// RecordTurn appends a closed time-log entry for a participant. Turns are
// write-once per (meeting, phase, participant); a second record fails with
// ErrDuplicateTurn without touching existing data.
func (s *TurnService) RecordTurn(ctx context.Context, meetingID uint, phase entities.Phase, userID string, durationSeconds int, skipped bool, priority, requestedBy string) (*entities.TimeLogEntry, error) {
	meeting, err := s.requireInProgress(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScribe(ctx, meeting, requestedBy); err != nil {
		return nil, err
	}
	if err := s.requireCheckedIn(ctx, meetingID, userID); err != nil {
		return nil, err
	}
	now := s.clock()
	entry := &entities.TimeLogEntry{
		MeetingID: meetingID,
		Phase:     phase,
		UserID:    userID,
		StartTime: now.Add(-time.Duration(durationSeconds) * time.Second),
		Priority:  priority,
		Skipped:   skipped,
	}
	entry.Close(now)
	if err := s.timeLog.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// StartTimer opens a time-log entry: a participant's turn when userID is
// set, a section-level bracket when it is empty. At most one open entry
// may exist per meeting; the database enforces this so two scribes racing
// from different devices cannot both win.
func (s *TurnService) StartTimer(ctx context.Context, meetingID uint, phase entities.Phase, userID, requestedBy string) (*entities.TimeLogEntry, error) {
	meeting, err := s.requireInProgress(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScribe(ctx, meeting, requestedBy); err != nil {
		return nil, err
	}
	if userID != "" {
		if err := s.requireCheckedIn(ctx, meetingID, userID); err != nil {
			return nil, err
		}
	}
	entry := &entities.TimeLogEntry{
		MeetingID: meetingID,
		Phase:     phase,
		UserID:    userID,
		StartTime: s.clock(),
	}
	if err := s.timeLog.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// StopTimer closes the meeting's open entry, deriving duration and
// overtime against the phase's allotted budget.
func (s *TurnService) StopTimer(ctx context.Context, meetingID uint, skipped bool, requestedBy string) (*entities.TimeLogEntry, error) {
	meeting, err := s.requireInProgress(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScribe(ctx, meeting, requestedBy); err != nil {
		return nil, err
	}
	entry, err := s.timeLog.FindOpen(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	entry.Skipped = skipped
	entry.Close(s.clock())
	if err := s.timeLog.Close(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Skip records a zero-duration skipped turn without ever opening a
// running timer: the participant is absent-but-checked-in or declined.
func (s *TurnService) Skip(ctx context.Context, meetingID uint, phase entities.Phase, userID, requestedBy string) (*entities.TimeLogEntry, error) {
	meeting, err := s.requireInProgress(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeScribe(ctx, meeting, requestedBy); err != nil {
		return nil, err
	}
	if err := s.requireCheckedIn(ctx, meetingID, userID); err != nil {
		return nil, err
	}
	now := s.clock()
	entry := &entities.TimeLogEntry{
		MeetingID: meetingID,
		Phase:     phase,
		UserID:    userID,
		StartTime: now,
		Skipped:   true,
	}
	entry.Close(now)
	if err := s.timeLog.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *TurnService) requireInProgress(ctx context.Context, meetingID uint) (*entities.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status != entities.StatusInProgress {
		return nil, domain.ErrMeetingNotInProgress
	}
	return meeting, nil
}

func (s *TurnService) requireCheckedIn(ctx context.Context, meetingID uint, userID string) error {
	attendee, err := s.attendance.FindByMeetingIDAndUserID(ctx, meetingID, userID)
	if err != nil {
		return err
	}
	if !attendee.CheckedIn() {
		return domain.ErrNotCheckedIn
	}
	return nil
}

func (s *TurnService) authorizeScribe(ctx context.Context, meeting *entities.Meeting, requestedBy string) error {
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

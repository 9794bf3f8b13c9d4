package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
)

type turnEnv struct {
	meetings   *fakeMeetingRepo
	attendance *fakeAttendanceRepo
	timeLog    *fakeTimeLogRepo
	svc        *TurnService
	now        time.Time
}

func newTurnEnv() *turnEnv {
	e := &turnEnv{
		meetings:   newFakeMeetingRepo(),
		attendance: newFakeAttendanceRepo(),
		timeLog:    newFakeTimeLogRepo(),
		now:        testNow,
	}
	membership := newFakeMembership(
		entities.Member{UserID: "lena", ChapterID: "boston", Role: entities.RoleLeader, Active: true},
		entities.Member{UserID: "sam", ChapterID: "boston", Role: entities.RoleMember, Active: true},
		entities.Member{UserID: "alice", ChapterID: "boston", Role: entities.RoleMember, Active: true},
		entities.Member{UserID: "dora", ChapterID: "boston", Role: entities.RoleMember, Active: true},
	)
	e.svc = NewTurnService(e.meetings, e.attendance, e.timeLog, membership, zerolog.Nop())
	e.svc.clock = func() time.Time { return e.now }
	return e
}

func (e *turnEnv) seedMeeting(status entities.MeetingStatus, phase entities.Phase) uint {
	meeting := &entities.Meeting{
		ChapterID:   "boston",
		ScheduledAt: testNow,
		Status:      status,
		Phase:       phase,
		ScribeID:    "sam",
	}
	if status != entities.StatusScheduled {
		meeting.ActualStartTime = testNow.Add(-time.Hour)
	}
	_ = e.meetings.Create(context.Background(), meeting)
	return meeting.ID
}

func (e *turnEnv) seedAttendee(meetingID uint, userID string, checkedIn bool) {
	a := &entities.Attendee{MeetingID: meetingID, UserID: userID, RSVP: entities.RSVPYes}
	if checkedIn {
		a.CheckedInAt = testNow.Add(-30 * time.Minute)
	}
	_ = e.attendance.Create(context.Background(), a)
}

func TestCheckInIdempotent(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusInProgress, entities.PhaseNotStarted)
	e.seedAttendee(id, "alice", false)

	first, err := e.svc.CheckIn(context.Background(), id, "alice", entities.AttendInPerson)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if !first.CheckedInAt.Equal(e.now) {
		t.Fatalf("checked_in_at = %s, want %s", first.CheckedInAt, e.now)
	}

	e.now = e.now.Add(10 * time.Minute)
	second, err := e.svc.CheckIn(context.Background(), id, "alice", entities.AttendVideo)
	if err != nil {
		t.Fatalf("second CheckIn: %v", err)
	}
	if !second.CheckedInAt.Equal(first.CheckedInAt) {
		t.Fatal("second check-in must keep the original timestamp")
	}
}

func TestCheckInCreatesRecordForUnseededMember(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusInProgress, entities.PhaseNotStarted)

	// dora joined the chapter after the meeting was scheduled.
	attendee, err := e.svc.CheckIn(context.Background(), id, "dora", entities.AttendVideo)
	if err != nil {
		t.Fatalf("CheckIn unseeded member: %v", err)
	}
	if !attendee.CheckedIn() || attendee.RSVP != entities.RSVPYes {
		t.Fatalf("unexpected attendee: %+v", attendee)
	}

	if _, err := e.svc.CheckIn(context.Background(), id, "stranger", entities.AttendVideo); !errors.Is(err, domain.ErrNotChapterMember) {
		t.Fatalf("expected ErrNotChapterMember, got %v", err)
	}
}

func TestSetRSVP(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusScheduled, entities.PhaseNotStarted)
	e.seedAttendee(id, "alice", false)

	if err := e.svc.SetRSVP(context.Background(), id, "alice", entities.RSVPMaybe); err != nil {
		t.Fatalf("SetRSVP: %v", err)
	}
	stored, _ := e.attendance.FindByMeetingIDAndUserID(context.Background(), id, "alice")
	if stored.RSVP != entities.RSVPMaybe {
		t.Fatalf("RSVP = %s, want maybe", stored.RSVP)
	}
}

func TestRecordTurnWriteOnce(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusInProgress, entities.PhaseLightningRound)
	e.seedAttendee(id, "alice", true)

	entry, err := e.svc.RecordTurn(context.Background(), id, entities.PhaseLightningRound, "alice", 75, false, "", "sam")
	if err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}
	if entry.Duration != 75*time.Second {
		t.Fatalf("duration = %s, want 75s", entry.Duration)
	}
	if entry.Overtime != 15*time.Second {
		t.Fatalf("overtime = %s, want 15s", entry.Overtime)
	}

	if _, err := e.svc.RecordTurn(context.Background(), id, entities.PhaseLightningRound, "alice", 30, false, "", "sam"); !errors.Is(err, domain.ErrDuplicateTurn) {
		t.Fatalf("second turn: expected ErrDuplicateTurn, got %v", err)
	}
	// Same participant, different phase is fine.
	if _, err := e.svc.RecordTurn(context.Background(), id, entities.PhaseFullCheckins, "alice", 300, false, "", "sam"); err != nil {
		t.Fatalf("turn in other phase: %v", err)
	}
}

func TestRecordTurnRequiresCheckIn(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusInProgress, entities.PhaseLightningRound)
	e.seedAttendee(id, "alice", false)

	if _, err := e.svc.RecordTurn(context.Background(), id, entities.PhaseLightningRound, "alice", 60, false, "", "sam"); !errors.Is(err, domain.ErrNotCheckedIn) {
		t.Fatalf("expected ErrNotCheckedIn, got %v", err)
	}
}

func TestRecordTurnAuthorization(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusInProgress, entities.PhaseLightningRound)
	e.seedAttendee(id, "alice", true)

	if _, err := e.svc.RecordTurn(context.Background(), id, entities.PhaseLightningRound, "alice", 60, false, "", "alice"); !errors.Is(err, domain.ErrNotScribe) {
		t.Fatalf("member recording: expected ErrNotScribe, got %v", err)
	}
	// Leader override.
	if _, err := e.svc.RecordTurn(context.Background(), id, entities.PhaseLightningRound, "alice", 60, false, "", "lena"); err != nil {
		t.Fatalf("leader recording: %v", err)
	}
}

func TestTimerLifecycle(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusInProgress, entities.PhaseFullCheckins)
	e.seedAttendee(id, "alice", true)

	open, err := e.svc.StartTimer(context.Background(), id, entities.PhaseFullCheckins, "alice", "sam")
	if err != nil {
		t.Fatalf("StartTimer: %v", err)
	}
	if !open.Open() {
		t.Fatal("started timer should be open")
	}

	// A second open timer is rejected, whoever asks.
	if _, err := e.svc.StartTimer(context.Background(), id, entities.PhaseFullCheckins, "", "lena"); !errors.Is(err, domain.ErrTimerAlreadyOpen) {
		t.Fatalf("expected ErrTimerAlreadyOpen, got %v", err)
	}

	e.now = e.now.Add(11 * time.Minute)
	closed, err := e.svc.StopTimer(context.Background(), id, false, "sam")
	if err != nil {
		t.Fatalf("StopTimer: %v", err)
	}
	if closed.Duration != 11*time.Minute {
		t.Fatalf("duration = %s, want 11m", closed.Duration)
	}
	if closed.Overtime != time.Minute {
		t.Fatalf("overtime = %s, want 1m", closed.Overtime)
	}

	if _, err := e.svc.StopTimer(context.Background(), id, false, "sam"); !errors.Is(err, domain.ErrTimerNotOpen) {
		t.Fatalf("stop with no open timer: expected ErrTimerNotOpen, got %v", err)
	}
}

func TestSectionTimerNeedsNoCheckIn(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusInProgress, entities.PhaseOpeningMeditation)

	entry, err := e.svc.StartTimer(context.Background(), id, entities.PhaseOpeningMeditation, "", "sam")
	if err != nil {
		t.Fatalf("section StartTimer: %v", err)
	}
	if !entry.SectionLevel() {
		t.Fatal("timer without user ID should be section-level")
	}

	e.now = e.now.Add(20 * time.Minute)
	closed, err := e.svc.StopTimer(context.Background(), id, false, "sam")
	if err != nil {
		t.Fatalf("section StopTimer: %v", err)
	}
	if closed.Overtime != 0 {
		t.Fatalf("section-level overtime = %s, want 0", closed.Overtime)
	}
}

func TestSkipRecordsZeroDurationTurn(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusInProgress, entities.PhaseLightningRound)
	e.seedAttendee(id, "alice", true)

	entry, err := e.svc.Skip(context.Background(), id, entities.PhaseLightningRound, "alice", "sam")
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if !entry.Skipped || entry.Duration != 0 || entry.Open() {
		t.Fatalf("unexpected skip entry: %+v", entry)
	}

	// A skip still consumes the participant's write-once turn.
	if _, err := e.svc.RecordTurn(context.Background(), id, entities.PhaseLightningRound, "alice", 30, false, "", "sam"); !errors.Is(err, domain.ErrDuplicateTurn) {
		t.Fatalf("turn after skip: expected ErrDuplicateTurn, got %v", err)
	}
}

func TestTurnCommandsRequireInProgress(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusScheduled, entities.PhaseNotStarted)
	e.seedAttendee(id, "alice", true)

	if _, err := e.svc.RecordTurn(context.Background(), id, entities.PhaseLightningRound, "alice", 60, false, "", "sam"); !errors.Is(err, domain.ErrMeetingNotInProgress) {
		t.Fatalf("RecordTurn: expected ErrMeetingNotInProgress, got %v", err)
	}
	if _, err := e.svc.StartTimer(context.Background(), id, entities.PhaseLightningRound, "alice", "sam"); !errors.Is(err, domain.ErrMeetingNotInProgress) {
		t.Fatalf("StartTimer: expected ErrMeetingNotInProgress, got %v", err)
	}
}

func TestNextParticipantReflectsPersistedState(t *testing.T) {
	e := newTurnEnv()
	id := e.seedMeeting(entities.StatusInProgress, entities.PhaseLightningRound)
	e.seedAttendee(id, "alice", true)

	next, ok, err := e.svc.NextParticipant(context.Background(), id, entities.PhaseLightningRound)
	if err != nil || !ok || next != "alice" {
		t.Fatalf("next = %q ok=%v err=%v, want alice", next, ok, err)
	}

	if _, err := e.svc.RecordTurn(context.Background(), id, entities.PhaseLightningRound, "alice", 45, false, "", "sam"); err != nil {
		t.Fatalf("RecordTurn: %v", err)
	}
	_, ok, err = e.svc.NextParticipant(context.Background(), id, entities.PhaseLightningRound)
	if err != nil || ok {
		t.Fatalf("queue should be exhausted, got ok=%v err=%v", ok, err)
	}
}

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

type responseEnv struct {
	meetings   *fakeMeetingRepo
	attendance *fakeAttendanceRepo
	responses  *fakeResponseRepo
	svc        *ResponseService
}

func newResponseEnv() *responseEnv {
	e := &responseEnv{
		meetings:   newFakeMeetingRepo(),
		attendance: newFakeAttendanceRepo(),
		responses:  newFakeResponseRepo(),
	}
	e.svc = NewResponseService(e.meetings, e.attendance, e.responses, zerolog.Nop())
	e.svc.clock = func() time.Time { return testNow }
	return e
}

func (e *responseEnv) seed() uint {
	meeting := &entities.Meeting{
		ChapterID:       "boston",
		Status:          entities.StatusInProgress,
		Phase:           entities.PhaseCurriculum,
		ScribeID:        "sam",
		ActualStartTime: testNow.Add(-time.Hour),
	}
	_ = e.meetings.Create(context.Background(), meeting)
	_ = e.attendance.Create(context.Background(), &entities.Attendee{
		MeetingID: meeting.ID, UserID: "alice", RSVP: entities.RSVPYes, CheckedInAt: testNow,
	})
	_ = e.attendance.Create(context.Background(), &entities.Attendee{
		MeetingID: meeting.ID, UserID: "bruno", RSVP: entities.RSVPYes,
	})
	return meeting.ID
}

func TestSubmitResponseOverwrites(t *testing.T) {
	e := newResponseEnv()
	id := e.seed()

	if _, err := e.svc.SubmitResponse(context.Background(), id, "alice", "mod-7", "first draft"); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if _, err := e.svc.SubmitResponse(context.Background(), id, "alice", "mod-7", "final"); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	stored, _ := e.responses.FindByMeetingIDAndKind(context.Background(), id, entities.ResponseCurriculum)
	if len(stored) != 1 {
		t.Fatalf("expected 1 response after resubmit, got %d", len(stored))
	}
	if stored[0].Text != "final" {
		t.Fatalf("text = %q, want overwrite with final", stored[0].Text)
	}
}

func TestSubmitResponseRequiresCheckIn(t *testing.T) {
	e := newResponseEnv()
	id := e.seed()
	if _, err := e.svc.SubmitResponse(context.Background(), id, "bruno", "mod-7", "text"); !errors.Is(err, domain.ErrNotCheckedIn) {
		t.Fatalf("expected ErrNotCheckedIn, got %v", err)
	}
}

func TestSubmitFeedbackValidatesRating(t *testing.T) {
	e := newResponseEnv()
	id := e.seed()

	for _, rating := range []int{0, 6, -1} {
		if _, err := e.svc.SubmitFeedback(context.Background(), id, "alice", rating); !errors.Is(err, domain.ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}

	response, err := e.svc.SubmitFeedback(context.Background(), id, "alice", 4)
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if response.Kind != entities.ResponseRating || response.Rating != 4 {
		t.Fatalf("unexpected response: %+v", response)
	}
}

func TestFeedbackAndReflectionAreSeparateKinds(t *testing.T) {
	e := newResponseEnv()
	id := e.seed()

	if _, err := e.svc.SubmitResponse(context.Background(), id, "alice", "mod-7", "notes"); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if _, err := e.svc.SubmitFeedback(context.Background(), id, "alice", 5); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	all, _ := e.responses.FindByMeetingID(context.Background(), id)
	if len(all) != 2 {
		t.Fatalf("expected 2 responses across kinds, got %d", len(all))
	}
}

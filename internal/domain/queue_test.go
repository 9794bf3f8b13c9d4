package domain

import (
	"reflect"
	"testing"
	"time"

	"chapterhall/internal/domain/entities"
)

func checkedIn(userID string, at time.Time) entities.Attendee {
	return entities.Attendee{UserID: userID, CheckedInAt: at, RSVP: entities.RSVPYes}
}

func turn(userID string, phase entities.Phase) entities.TimeLogEntry {
	return entities.TimeLogEntry{UserID: userID, Phase: phase, EndTime: time.Now()}
}

func TestNextParticipantOrder(t *testing.T) {
	base := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	attendees := []entities.Attendee{
		checkedIn("alice", base),
		checkedIn("bruno", base.Add(time.Minute)),
		checkedIn("cyrus", base.Add(2*time.Minute)),
	}

	next, ok := NextParticipant(attendees, nil, entities.PhaseLightningRound)
	if !ok || next != "alice" {
		t.Fatalf("expected alice first, got %q (ok=%v)", next, ok)
	}

	entries := []entities.TimeLogEntry{turn("alice", entities.PhaseLightningRound)}
	next, ok = NextParticipant(attendees, entries, entities.PhaseLightningRound)
	if !ok || next != "bruno" {
		t.Fatalf("expected bruno after alice, got %q (ok=%v)", next, ok)
	}
}

func TestNextParticipantSkippedCountsAsServed(t *testing.T) {
	attendees := []entities.Attendee{
		checkedIn("alice", time.Now()),
		checkedIn("bruno", time.Now().Add(time.Second)),
	}
	entries := []entities.TimeLogEntry{
		{UserID: "alice", Phase: entities.PhaseLightningRound, EndTime: time.Now(), Skipped: true},
	}
	next, ok := NextParticipant(attendees, entries, entities.PhaseLightningRound)
	if !ok || next != "bruno" {
		t.Fatalf("skipped entry should count as served; got %q (ok=%v)", next, ok)
	}
}

func TestNextParticipantExhausted(t *testing.T) {
	attendees := []entities.Attendee{checkedIn("alice", time.Now())}
	entries := []entities.TimeLogEntry{turn("alice", entities.PhaseLightningRound)}
	if _, ok := NextParticipant(attendees, entries, entities.PhaseLightningRound); ok {
		t.Fatal("expected exhausted queue")
	}
}

func TestNextParticipantIgnoresOtherPhases(t *testing.T) {
	attendees := []entities.Attendee{checkedIn("alice", time.Now())}
	entries := []entities.TimeLogEntry{turn("alice", entities.PhaseLightningRound)}
	next, ok := NextParticipant(attendees, entries, entities.PhaseFullCheckins)
	if !ok || next != "alice" {
		t.Fatalf("lightning entry must not cover full check-ins; got %q (ok=%v)", next, ok)
	}
}

func TestIsPhaseCompleteLateCheckIn(t *testing.T) {
	base := time.Now()
	attendees := []entities.Attendee{
		checkedIn("alice", base),
		checkedIn("bruno", base.Add(time.Second)),
	}
	entries := []entities.TimeLogEntry{
		turn("alice", entities.PhaseLightningRound),
		turn("bruno", entities.PhaseLightningRound),
	}
	if !IsPhaseComplete(attendees, entries, entities.PhaseLightningRound) {
		t.Fatal("expected phase complete")
	}

	// A late check-in mid-phase flips the phase back to incomplete.
	attendees = append(attendees, checkedIn("dana", base.Add(time.Minute)))
	if IsPhaseComplete(attendees, entries, entities.PhaseLightningRound) {
		t.Fatal("late check-in must make the phase incomplete again")
	}
	if missing := MissingParticipants(attendees, entries, entities.PhaseLightningRound); !reflect.DeepEqual(missing, []string{"dana"}) {
		t.Fatalf("expected dana missing, got %v", missing)
	}
}

func TestNotCheckedInAttendeesDoNotCount(t *testing.T) {
	attendees := []entities.Attendee{
		checkedIn("alice", time.Now()),
		{UserID: "ghost", RSVP: entities.RSVPYes}, // RSVP yes but never checked in
	}
	entries := []entities.TimeLogEntry{turn("alice", entities.PhaseLightningRound)}
	if !IsPhaseComplete(attendees, entries, entities.PhaseLightningRound) {
		t.Fatal("non-checked-in attendee must not block completion")
	}
}

func TestSectionLevelEntriesDoNotCover(t *testing.T) {
	attendees := []entities.Attendee{checkedIn("alice", time.Now())}
	entries := []entities.TimeLogEntry{
		{UserID: "", Phase: entities.PhaseLightningRound, EndTime: time.Now()},
	}
	if IsPhaseComplete(attendees, entries, entities.PhaseLightningRound) {
		t.Fatal("a section bracket must not cover a participant")
	}
}

func TestMissingResponses(t *testing.T) {
	base := time.Now()
	attendees := []entities.Attendee{
		checkedIn("alice", base),
		checkedIn("bruno", base.Add(time.Second)),
	}
	responses := []entities.Response{
		{UserID: "alice", Kind: entities.ResponseCurriculum},
		{UserID: "bruno", Kind: entities.ResponseRating},
	}
	missing := MissingResponses(attendees, responses, entities.ResponseCurriculum)
	if !reflect.DeepEqual(missing, []string{"bruno"}) {
		t.Fatalf("expected bruno missing a reflection, got %v", missing)
	}
}

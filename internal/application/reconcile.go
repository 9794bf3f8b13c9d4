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

// Reconciler is the offline completion pass: it scans meetings past their
// grace window and applies the completion validator's verdict. The same
// pure validator serves the inline completion attempt; this job exists
// because live completion can race with late data writes.
type Reconciler struct {
	meetings   output.MeetingRepository
	attendance output.AttendanceRepository
	timeLog    output.TimeLogRepository
	log        zerolog.Logger
	clock      func() time.Time
	// grace is how long after the scheduled time a meeting is left alone
	// before reconciliation may assign a terminal status.
	grace time.Duration
}

func NewReconciler(
	meetings output.MeetingRepository,
	attendance output.AttendanceRepository,
	timeLog output.TimeLogRepository,
	log zerolog.Logger,
	grace time.Duration,
) *Reconciler {
	return &Reconciler{
		meetings:   meetings,
		attendance: attendance,
		timeLog:    timeLog,
		log:        log,
		clock:      time.Now,
		grace:      grace,
	}
}

// Run reconciles every eligible meeting and returns how many had their
// status corrected. Idempotent and safe to run concurrently with live
// meetings: it only reads, except for the conditional status write, which
// never moves a meeting backward from completed.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	cutoff := r.clock().Add(-r.grace)
	meetings, err := r.meetings.FindForReconciliation(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find meetings to reconcile: %w", err)
	}
	corrected := 0
	for i := range meetings {
		meeting := &meetings[i]
		report, err := r.reconcileOne(ctx, meeting)
		if err != nil {
			r.log.Error().Err(err).Uint("meeting_id", meeting.ID).Msg("reconcile meeting")
			continue
		}
		if report.Status != meeting.Status {
			corrected++
			r.log.Info().
				Uint("meeting_id", meeting.ID).
				Str("from", string(meeting.Status)).
				Str("to", string(report.Status)).
				Msg("meeting status corrected")
		}
	}
	return corrected, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, meeting *entities.Meeting) (domain.CompletionReport, error) {
	attendees, err := r.attendance.FindByMeetingID(ctx, meeting.ID)
	if err != nil {
		return domain.CompletionReport{}, err
	}
	entries, err := r.timeLog.FindByMeetingID(ctx, meeting.ID)
	if err != nil {
		return domain.CompletionReport{}, err
	}
	report := domain.ValidateCompletion(meeting, attendees, entries)
	if err := r.meetings.SetOutcome(ctx, meeting.ID, report.Status); err != nil {
		return domain.CompletionReport{}, err
	}
	return report, nil
}

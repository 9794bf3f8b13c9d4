package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/output"
)

var _ output.MeetingRepository = (*MeetingRepository)(nil)

// MeetingRepository implements output.MeetingRepository using pgx.
type MeetingRepository struct {
	pool *pgxpool.Pool
}

// NewMeetingRepository creates a MeetingRepository.
func NewMeetingRepository(pool *pgxpool.Pool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

const meetingColumns = `id, chapter_id, scheduled_at, status, phase, scribe_id,
	actual_start_time, completed_at, curriculum_module_id, version, created_at, updated_at`

func scanMeeting(row pgx.Row) (*entities.Meeting, error) {
	var m entities.Meeting
	var id int64
	var actualStart, completedAt, createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&id, &m.ChapterID, &m.ScheduledAt, &m.Status, &m.Phase, &m.ScribeID,
		&actualStart, &completedAt, &m.CurriculumModuleID, &m.Version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, err
	}
	m.ID = uint(id)
	m.ActualStartTime = pgtypeTimestamptzToTime(actualStart)
	m.CompletedAt = pgtypeTimestamptzToTime(completedAt)
	m.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	m.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return &m, nil
}

func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO meetings (chapter_id, scheduled_at, status, phase, scribe_id, curriculum_module_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at`,
		meeting.ChapterID, meeting.ScheduledAt, meeting.Status, meeting.Phase,
		meeting.ScribeID, meeting.CurriculumModuleID)
	var id int64
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&id, &meeting.Version, &createdAt, &updatedAt); err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	meeting.ID = uint(id)
	meeting.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	meeting.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return nil
}

func (r *MeetingRepository) FindByID(ctx context.Context, id uint) (*entities.Meeting, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, int64(id))
	meeting, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, domain.ErrMeetingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get meeting by id: %w", err)
	}
	return meeting, nil
}

func (r *MeetingRepository) FindForReconciliation(ctx context.Context, cutoff time.Time) ([]entities.Meeting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+meetingColumns+` FROM meetings
		WHERE scheduled_at < $1 AND status IN ('scheduled', 'in_progress')
		ORDER BY scheduled_at`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find meetings for reconciliation: %w", err)
	}
	defer rows.Close()
	var out []entities.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Update writes the meeting's mutable state guarded by the version token.
// A stale version means another client's write won; the caller re-reads
// and retries with fresh state.
func (r *MeetingRepository) Update(ctx context.Context, meeting *entities.Meeting) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE meetings
		SET status = $2, phase = $3, scribe_id = $4, actual_start_time = $5,
			completed_at = $6, curriculum_module_id = $7,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $8`,
		int64(meeting.ID), meeting.Status, meeting.Phase, meeting.ScribeID,
		timeToPgtype(meeting.ActualStartTime), timeToPgtype(meeting.CompletedAt),
		meeting.CurriculumModuleID, meeting.Version)
	if err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleMeeting
	}
	meeting.Version++
	return nil
}

// SetOutcome applies a validator verdict. Conditional on purpose: a
// meeting already marked completed is never moved backward.
func (r *MeetingRepository) SetOutcome(ctx context.Context, id uint, status entities.MeetingStatus) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE meetings
		SET status = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND status <> 'completed' AND status <> $2`,
		int64(id), status)
	if err != nil {
		return fmt.Errorf("set meeting outcome: %w", err)
	}
	return nil
}

// Reset purges the meeting's turn, time-log, and response data, clears
// check-ins, and reverts the meeting to scheduled.
func (r *MeetingRepository) Reset(ctx context.Context, id uint) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM time_log WHERE meeting_id = $1`, int64(id)); err != nil {
		return fmt.Errorf("purge time log: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM responses WHERE meeting_id = $1`, int64(id)); err != nil {
		return fmt.Errorf("purge responses: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE attendance SET checked_in_at = NULL, updated_at = now()
		WHERE meeting_id = $1`, int64(id)); err != nil {
		return fmt.Errorf("clear check-ins: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE meetings
		SET status = 'scheduled', phase = 'not_started', actual_start_time = NULL,
			completed_at = NULL, version = version + 1, updated_at = now()
		WHERE id = $1`, int64(id)); err != nil {
		return fmt.Errorf("revert meeting: %w", err)
	}
	return tx.Commit(ctx)
}

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/output"
)

var _ output.TimeLogRepository = (*TimeLogRepository)(nil)

// TimeLogRepository implements output.TimeLogRepository using pgx. The
// write-once-turn and single-open-timer invariants live in unique indexes
// so concurrent inserts race in the database, not in application code.
type TimeLogRepository struct {
	pool *pgxpool.Pool
}

// NewTimeLogRepository creates a TimeLogRepository.
func NewTimeLogRepository(pool *pgxpool.Pool) *TimeLogRepository {
	return &TimeLogRepository{pool: pool}
}

const timeLogColumns = `id, meeting_id, phase, user_id, start_time, end_time,
	duration_seconds, overtime_seconds, priority, skipped, created_at`

// mapInsertError resolves unique-violation errors to their domain meaning.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "time_log_one_turn_per_phase":
			return domain.ErrDuplicateTurn
		case "time_log_one_open_per_meeting":
			return domain.ErrTimerAlreadyOpen
		}
	}
	return err
}

func scanTimeLogEntry(row pgx.Row) (*entities.TimeLogEntry, error) {
	var e entities.TimeLogEntry
	var id, meetingID int64
	var userID, priority pgtype.Text
	var endTime, createdAt pgtype.Timestamptz
	var durationSeconds, overtimeSeconds int
	err := row.Scan(&id, &meetingID, &e.Phase, &userID, &e.StartTime, &endTime,
		&durationSeconds, &overtimeSeconds, &priority, &e.Skipped, &createdAt)
	if err != nil {
		return nil, err
	}
	e.ID = uint(id)
	e.MeetingID = uint(meetingID)
	e.UserID = pgtypeTextToString(userID)
	e.Priority = pgtypeTextToString(priority)
	e.EndTime = pgtypeTimestamptzToTime(endTime)
	e.Duration = time.Duration(durationSeconds) * time.Second
	e.Overtime = time.Duration(overtimeSeconds) * time.Second
	e.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return &e, nil
}

func (r *TimeLogRepository) Create(ctx context.Context, entry *entities.TimeLogEntry) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO time_log (meeting_id, phase, user_id, start_time, end_time,
			duration_seconds, overtime_seconds, priority, skipped)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		int64(entry.MeetingID), entry.Phase, stringToPgtype(entry.UserID),
		entry.StartTime, timeToPgtype(entry.EndTime),
		int(entry.Duration/time.Second), int(entry.Overtime/time.Second),
		stringToPgtype(entry.Priority), entry.Skipped)
	var id int64
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&id, &createdAt); err != nil {
		if mapped := mapInsertError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create time log entry: %w", err)
	}
	entry.ID = uint(id)
	entry.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return nil
}

func (r *TimeLogRepository) FindByMeetingID(ctx context.Context, meetingID uint) ([]entities.TimeLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+timeLogColumns+` FROM time_log
		WHERE meeting_id = $1
		ORDER BY start_time ASC, id ASC`, int64(meetingID))
	if err != nil {
		return nil, fmt.Errorf("get time log by meeting id: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *TimeLogRepository) FindByMeetingIDAndPhase(ctx context.Context, meetingID uint, phase entities.Phase) ([]entities.TimeLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+timeLogColumns+` FROM time_log
		WHERE meeting_id = $1 AND phase = $2
		ORDER BY start_time ASC, id ASC`, int64(meetingID), phase)
	if err != nil {
		return nil, fmt.Errorf("get time log by meeting id and phase: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]entities.TimeLogEntry, error) {
	var out []entities.TimeLogEntry
	for rows.Next() {
		e, err := scanTimeLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time log entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *TimeLogRepository) FindOpen(ctx context.Context, meetingID uint) (*entities.TimeLogEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+timeLogColumns+` FROM time_log
		WHERE meeting_id = $1 AND end_time IS NULL`, int64(meetingID))
	entry, err := scanTimeLogEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTimerNotOpen
		}
		return nil, fmt.Errorf("get open time log entry: %w", err)
	}
	return entry, nil
}

func (r *TimeLogRepository) Close(ctx context.Context, entry *entities.TimeLogEntry) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE time_log
		SET end_time = $2, duration_seconds = $3, overtime_seconds = $4, skipped = $5
		WHERE id = $1`,
		int64(entry.ID), entry.EndTime,
		int(entry.Duration/time.Second), int(entry.Overtime/time.Second), entry.Skipped)
	if err != nil {
		return fmt.Errorf("close time log entry: %w", err)
	}
	return nil
}

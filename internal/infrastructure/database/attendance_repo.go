package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/output"
)

var _ output.AttendanceRepository = (*AttendanceRepository)(nil)

// AttendanceRepository implements output.AttendanceRepository using pgx.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates an AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

const attendanceColumns = `id, meeting_id, user_id, rsvp_status, checked_in_at,
	attendance_type, created_at, updated_at`

func scanAttendee(row pgx.Row) (*entities.Attendee, error) {
	var a entities.Attendee
	var id, meetingID int64
	var mode pgtype.Text
	var checkedInAt, createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&id, &meetingID, &a.UserID, &a.RSVP, &checkedInAt, &mode, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAttendeeNotFound
		}
		return nil, err
	}
	a.ID = uint(id)
	a.MeetingID = uint(meetingID)
	a.Mode = entities.AttendanceMode(pgtypeTextToString(mode))
	a.CheckedInAt = pgtypeTimestamptzToTime(checkedInAt)
	a.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	a.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return &a, nil
}

func (r *AttendanceRepository) Create(ctx context.Context, attendee *entities.Attendee) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO attendance (meeting_id, user_id, rsvp_status, checked_in_at, attendance_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		int64(attendee.MeetingID), attendee.UserID, attendee.RSVP,
		timeToPgtype(attendee.CheckedInAt), string(attendee.Mode))
	var id int64
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	attendee.ID = uint(id)
	attendee.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	attendee.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return nil
}

// FindByMeetingID returns attendance in check-in order: checked-in rows
// first by check-in time, then the rest by creation.
func (r *AttendanceRepository) FindByMeetingID(ctx context.Context, meetingID uint) ([]entities.Attendee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+attendanceColumns+` FROM attendance
		WHERE meeting_id = $1
		ORDER BY checked_in_at ASC NULLS LAST, id ASC`, int64(meetingID))
	if err != nil {
		return nil, fmt.Errorf("get attendance by meeting id: %w", err)
	}
	defer rows.Close()
	var out []entities.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AttendanceRepository) FindByMeetingIDAndUserID(ctx context.Context, meetingID uint, userID string) (*entities.Attendee, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+attendanceColumns+` FROM attendance
		WHERE meeting_id = $1 AND user_id = $2`, int64(meetingID), userID)
	attendee, err := scanAttendee(row)
	if err != nil {
		if errors.Is(err, domain.ErrAttendeeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get attendance by meeting id and user id: %w", err)
	}
	return attendee, nil
}

func (r *AttendanceRepository) Update(ctx context.Context, attendee *entities.Attendee) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE attendance
		SET rsvp_status = $2, checked_in_at = $3, attendance_type = $4, updated_at = now()
		WHERE id = $1`,
		int64(attendee.ID), attendee.RSVP, timeToPgtype(attendee.CheckedInAt), string(attendee.Mode))
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

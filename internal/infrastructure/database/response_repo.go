package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/output"
)

var _ output.ResponseRepository = (*ResponseRepository)(nil)

// ResponseRepository implements output.ResponseRepository using pgx.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

const responseColumns = `id, meeting_id, user_id, kind, module_id, response_text,
	rating, created_at, updated_at`

func scanResponse(row pgx.Row) (*entities.Response, error) {
	var resp entities.Response
	var id, meetingID int64
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&id, &meetingID, &resp.UserID, &resp.Kind, &resp.ModuleID,
		&resp.Text, &resp.Rating, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	resp.ID = uint(id)
	resp.MeetingID = uint(meetingID)
	resp.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	resp.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return &resp, nil
}

// Upsert creates or overwrites the response keyed by (meeting, kind,
// member). Submitting again overwrites rather than duplicates.
func (r *ResponseRepository) Upsert(ctx context.Context, response *entities.Response) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO responses (meeting_id, user_id, kind, module_id, response_text, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (meeting_id, kind, user_id) DO UPDATE
		SET module_id = EXCLUDED.module_id,
			response_text = EXCLUDED.response_text,
			rating = EXCLUDED.rating,
			updated_at = now()
		RETURNING id, created_at, updated_at`,
		int64(response.MeetingID), response.UserID, response.Kind,
		response.ModuleID, response.Text, response.Rating)
	var id int64
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	response.ID = uint(id)
	response.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	response.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return nil
}

func (r *ResponseRepository) FindByMeetingID(ctx context.Context, meetingID uint) ([]entities.Response, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+responseColumns+` FROM responses
		WHERE meeting_id = $1
		ORDER BY id ASC`, int64(meetingID))
	if err != nil {
		return nil, fmt.Errorf("get responses by meeting id: %w", err)
	}
	defer rows.Close()
	return collectResponses(rows)
}

func (r *ResponseRepository) FindByMeetingIDAndKind(ctx context.Context, meetingID uint, kind entities.ResponseKind) ([]entities.Response, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+responseColumns+` FROM responses
		WHERE meeting_id = $1 AND kind = $2
		ORDER BY id ASC`, int64(meetingID), kind)
	if err != nil {
		return nil, fmt.Errorf("get responses by meeting id and kind: %w", err)
	}
	defer rows.Close()
	return collectResponses(rows)
}

func collectResponses(rows pgx.Rows) ([]entities.Response, error) {
	var out []entities.Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, *resp)
	}
	return out, rows.Err()
}

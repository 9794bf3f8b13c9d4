package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"chapterhall/internal/domain"
	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/output"
)

// ResponseService handles per-member deliverables outside the turn queue:
// curriculum reflections and session ratings. Any checked-in attendee may
// submit their own, scribe or not.
type ResponseService struct {
	meetings   output.MeetingRepository
	attendance output.AttendanceRepository
	responses  output.ResponseRepository
	log        zerolog.Logger
	clock      func() time.Time
}

func NewResponseService(
	meetings output.MeetingRepository,
	attendance output.AttendanceRepository,
	responses output.ResponseRepository,
	log zerolog.Logger,
) *ResponseService {
	return &ResponseService{
		meetings:   meetings,
		attendance: attendance,
		responses:  responses,
		log:        log,
		clock:      time.Now,
	}
}

// SubmitResponse upserts the member's curriculum reflection. Submitting
// again overwrites rather than duplicates.
func (s *ResponseService) SubmitResponse(ctx context.Context, meetingID uint, userID, moduleID, text string) (*entities.Response, error) {
	if err := s.requireCheckedIn(ctx, meetingID, userID); err != nil {
		return nil, err
	}
	response := &entities.Response{
		MeetingID: meetingID,
		UserID:    userID,
		Kind:      entities.ResponseCurriculum,
		ModuleID:  moduleID,
		Text:      text,
	}
	if err := s.responses.Upsert(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

// SubmitFeedback upserts the member's session rating.
func (s *ResponseService) SubmitFeedback(ctx context.Context, meetingID uint, userID string, rating int) (*entities.Response, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}
	if err := s.requireCheckedIn(ctx, meetingID, userID); err != nil {
		return nil, err
	}
	response := &entities.Response{
		MeetingID: meetingID,
		UserID:    userID,
		Kind:      entities.ResponseRating,
		Rating:    rating,
	}
	if err := s.responses.Upsert(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *ResponseService) requireCheckedIn(ctx context.Context, meetingID uint, userID string) error {
	if _, err := s.meetings.FindByID(ctx, meetingID); err != nil {
		return err
	}
	attendee, err := s.attendance.FindByMeetingIDAndUserID(ctx, meetingID, userID)
	if err != nil {
		return err
	}
	if !attendee.CheckedIn() {
		return domain.ErrNotCheckedIn
	}
	return nil
}

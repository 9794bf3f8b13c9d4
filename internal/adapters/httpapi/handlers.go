package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"chapterhall/internal/adapters/ws"
	"chapterhall/internal/domain/entities"
	"chapterhall/internal/ports/input"
	"chapterhall/internal/ports/output"
)

type contextKey string

const memberKey contextKey = "member"

// Handlers holds the dependencies required by HTTP handler functions.
type Handlers struct {
	Meetings   input.MeetingUseCase
	Turns      input.TurnUseCase
	Responses  input.ResponseUseCase
	Curriculum output.CurriculumService
	Hub        *ws.Hub
	Tokens     map[string]string // bearer token -> member ID
	Translator output.T
	Log        zerolog.Logger
}

// AuthMiddleware resolves the bearer token to a member ID and injects it
// into the request context.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		memberID, ok := h.Tokens[authHeader[len(prefix):]]
		if !ok {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
			return
		}
		ctx := context.WithValue(r.Context(), memberKey, memberID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requester extracts the authenticated member ID from the context.
func requester(r *http.Request) string {
	if id, ok := r.Context().Value(memberKey).(string); ok {
		return id
	}
	return ""
}

func meetingID(r *http.Request) (uint, bool) {
	raw, ok := mux.Vars(r)["id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleWebSocket hands the connection off to the observation hub.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws.ServeWs(h.Hub, w, r)
}

// broadcastState pushes the meeting's fresh state to every observer. Runs
// after every successful mutation; a failed load is logged, never surfaced.
func (h *Handlers) broadcastState(ctx context.Context, id uint) {
	state, err := h.Meetings.State(ctx, id)
	if err != nil {
		h.Log.Warn().Err(err).Uint("meeting_id", id).Msg("broadcast: load state")
		return
	}
	data, err := json.Marshal(toStateView(state))
	if err != nil {
		h.Log.Warn().Err(err).Uint("meeting_id", id).Msg("broadcast: marshal state")
		return
	}
	h.Hub.Broadcast(id, data)
}

// ScheduleMeeting handles POST /api/meetings.
func (h *Handlers) ScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChapterID          string    `json:"chapter_id"`
		ScheduledAt        time.Time `json:"scheduled_at"`
		ScribeID           string    `json:"scribe_id"`
		CurriculumModuleID string    `json:"curriculum_module_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChapterID == "" || req.ScheduledAt.IsZero() {
		respondBadRequest(w, "chapter_id and scheduled_at are required")
		return
	}
	meeting, err := h.Meetings.Schedule(r.Context(), req.ChapterID, req.ScheduledAt, req.ScribeID, req.CurriculumModuleID, requester(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toMeetingView(meeting))
}

// GetMeeting handles GET /api/meetings/{id}.
func (h *Handlers) GetMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	state, err := h.Meetings.State(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toStateView(state))
}

// GetCurriculum handles GET /api/meetings/{id}/curriculum.
func (h *Handlers) GetCurriculum(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	state, err := h.Meetings.State(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	if state.Meeting.CurriculumModuleID == "" {
		respondJSON(w, http.StatusOK, map[string]string{"module_id": "", "content": ""})
		return
	}
	content, err := h.Curriculum.ModuleContent(r.Context(), state.Meeting.CurriculumModuleID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"module_id": state.Meeting.CurriculumModuleID,
		"content":   content,
	})
}

// StartMeeting handles POST /api/meetings/{id}/start.
func (h *Handlers) StartMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	meeting, err := h.Meetings.Start(r.Context(), id, requester(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusOK, toMeetingView(meeting))
}

// AdvancePhase handles POST /api/meetings/{id}/advance.
func (h *Handlers) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	meeting, err := h.Meetings.Advance(r.Context(), id, requester(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusOK, toMeetingView(meeting))
}

// CompleteMeeting handles POST /api/meetings/{id}/complete.
func (h *Handlers) CompleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	report, err := h.Meetings.Complete(r.Context(), id, requester(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	missing := make(map[string][]string, len(report.MissingByPhase))
	for phase, ids := range report.MissingByPhase {
		missing[string(phase)] = ids
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  string(report.Status),
		"missing": missing,
	})
}

// ResetMeeting handles POST /api/meetings/{id}/reset.
func (h *Handlers) ResetMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	if err := h.Meetings.Reset(r.Context(), id, requester(r)); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// SetRSVP handles PUT /api/meetings/{id}/rsvp.
func (h *Handlers) SetRSVP(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	var req struct {
		RSVP string `json:"rsvp_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid payload")
		return
	}
	switch entities.RSVPStatus(req.RSVP) {
	case entities.RSVPYes, entities.RSVPNo, entities.RSVPMaybe, entities.RSVPNoResponse:
	default:
		respondBadRequest(w, "rsvp_status must be yes, no, maybe or no_response")
		return
	}
	if err := h.Turns.SetRSVP(r.Context(), id, requester(r), entities.RSVPStatus(req.RSVP)); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusOK, map[string]string{"rsvp_status": req.RSVP})
}

// CheckIn handles POST /api/meetings/{id}/checkin.
func (h *Handlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	var req struct {
		Mode string `json:"attendance_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid payload")
		return
	}
	mode := entities.AttendanceMode(req.Mode)
	if mode == "" {
		mode = entities.AttendInPerson
	}
	attendee, err := h.Turns.CheckIn(r.Context(), id, requester(r), mode)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusOK, attendeeView{
		UserID:      attendee.UserID,
		RSVP:        string(attendee.RSVP),
		CheckedInAt: nullableTime(attendee.CheckedInAt),
		Mode:        string(attendee.Mode),
	})
}

// NextParticipant handles GET /api/meetings/{id}/next. The phase defaults
// to the meeting's current phase.
func (h *Handlers) NextParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	phase := entities.Phase(r.URL.Query().Get("phase"))
	if phase == "" {
		state, err := h.Meetings.State(r.Context(), id)
		if err != nil {
			h.respondDomainError(w, r, err)
			return
		}
		phase = state.Meeting.Phase
	} else if !phase.Valid() {
		respondBadRequest(w, "unknown phase")
		return
	}
	next, more, err := h.Turns.NextParticipant(r.Context(), id, phase)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"phase":     string(phase),
		"next_up":   next,
		"exhausted": !more,
	})
}

// RecordTurn handles POST /api/meetings/{id}/turns.
func (h *Handlers) RecordTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	var req struct {
		Phase           string `json:"phase"`
		UserID          string `json:"user_id"`
		DurationSeconds int    `json:"duration_seconds"`
		Skipped         bool   `json:"skipped"`
		Priority        string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondBadRequest(w, "phase and user_id are required")
		return
	}
	phase := entities.Phase(req.Phase)
	if !phase.Valid() {
		respondBadRequest(w, "unknown phase")
		return
	}
	if req.DurationSeconds < 0 {
		respondBadRequest(w, "duration_seconds must not be negative")
		return
	}
	entry, err := h.Turns.RecordTurn(r.Context(), id, phase, req.UserID, req.DurationSeconds, req.Skipped, req.Priority, requester(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusCreated, toTimeLogView(entry))
}

// SkipTurn handles POST /api/meetings/{id}/turns/skip.
func (h *Handlers) SkipTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	var req struct {
		Phase  string `json:"phase"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		respondBadRequest(w, "phase and user_id are required")
		return
	}
	phase := entities.Phase(req.Phase)
	if !phase.Valid() {
		respondBadRequest(w, "unknown phase")
		return
	}
	entry, err := h.Turns.Skip(r.Context(), id, phase, req.UserID, requester(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusCreated, toTimeLogView(entry))
}

// StartTimer handles POST /api/meetings/{id}/timer/start. An empty
// user_id opens a section-level bracket.
func (h *Handlers) StartTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	var req struct {
		Phase  string `json:"phase"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid payload")
		return
	}
	phase := entities.Phase(req.Phase)
	if !phase.Valid() {
		respondBadRequest(w, "unknown phase")
		return
	}
	entry, err := h.Turns.StartTimer(r.Context(), id, phase, req.UserID, requester(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusCreated, toTimeLogView(entry))
}

// StopTimer handles POST /api/meetings/{id}/timer/stop.
func (h *Handlers) StopTimer(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	var req struct {
		Skipped bool `json:"skipped"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid payload")
		return
	}
	entry, err := h.Turns.StopTimer(r.Context(), id, req.Skipped, requester(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusOK, toTimeLogView(entry))
}

// SubmitResponse handles PUT /api/meetings/{id}/responses.
func (h *Handlers) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	var req struct {
		ModuleID string `json:"module_id"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		respondBadRequest(w, "text is required")
		return
	}
	response, err := h.Responses.SubmitResponse(r.Context(), id, requester(r), req.ModuleID, req.Text)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusOK, responseView{
		UserID:   response.UserID,
		Kind:     string(response.Kind),
		ModuleID: response.ModuleID,
		Text:     response.Text,
	})
}

// SubmitFeedback handles PUT /api/meetings/{id}/feedback.
func (h *Handlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := meetingID(r)
	if !ok {
		respondBadRequest(w, "invalid meeting id")
		return
	}
	var req struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid payload")
		return
	}
	response, err := h.Responses.SubmitFeedback(r.Context(), id, requester(r), req.Rating)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	h.broadcastState(r.Context(), id)
	respondJSON(w, http.StatusOK, responseView{
		UserID: response.UserID,
		Kind:   string(response.Kind),
		Rating: response.Rating,
	})
}

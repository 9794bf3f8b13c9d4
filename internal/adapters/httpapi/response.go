package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"chapterhall/internal/domain"
)

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case "meeting_not_found", "attendee_not_found":
		return http.StatusNotFound
	case "not_scribe", "not_leader", "not_chapter_member":
		return http.StatusForbidden
	case "invalid_rating":
		return http.StatusBadRequest
	default:
		// Precondition failures: stale state, duplicate turns, open
		// timers, incomplete phases.
		return http.StatusConflict
	}
}

// respondDomainError renders err as a localized JSON error. Every failure
// carries enough detail for a client to explain why without a second
// round-trip.
func (h *Handlers) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	locale := r.Header.Get("Accept-Language")

	code := domain.Code(err)
	if code == "" {
		h.Log.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "internal",
			"message": h.Translator.T(locale, "error.internal", nil),
		})
		return
	}

	payload := map[string]any{"error": code}
	var data map[string]any
	var incomplete *domain.PhaseIncompleteError
	if errors.As(err, &incomplete) {
		payload["phase"] = incomplete.Phase
		payload["missing"] = incomplete.Missing
		data = map[string]any{"Missing": strings.Join(incomplete.Missing, ", ")}
	}
	payload["message"] = h.Translator.T(locale, "error."+code, data)
	respondJSON(w, statusFor(code), payload)
}

// respondBadRequest is for malformed request payloads, before any domain
// logic runs.
func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": msg})
}

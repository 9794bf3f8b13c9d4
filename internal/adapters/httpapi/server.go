package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// NewRouter configures a mux.Router with all routes and middleware.
func NewRouter(h *Handlers, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(log))

	// Health check and observation socket need no auth; subscriptions are
	// read-only and carry no member identity.
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.AuthMiddleware)

	api.HandleFunc("/meetings", h.ScheduleMeeting).Methods("POST")
	api.HandleFunc("/meetings/{id}", h.GetMeeting).Methods("GET")
	api.HandleFunc("/meetings/{id}/curriculum", h.GetCurriculum).Methods("GET")
	api.HandleFunc("/meetings/{id}/start", h.StartMeeting).Methods("POST")
	api.HandleFunc("/meetings/{id}/advance", h.AdvancePhase).Methods("POST")
	api.HandleFunc("/meetings/{id}/complete", h.CompleteMeeting).Methods("POST")
	api.HandleFunc("/meetings/{id}/reset", h.ResetMeeting).Methods("POST")
	api.HandleFunc("/meetings/{id}/rsvp", h.SetRSVP).Methods("PUT")
	api.HandleFunc("/meetings/{id}/checkin", h.CheckIn).Methods("POST")
	api.HandleFunc("/meetings/{id}/next", h.NextParticipant).Methods("GET")
	api.HandleFunc("/meetings/{id}/turns", h.RecordTurn).Methods("POST")
	api.HandleFunc("/meetings/{id}/turns/skip", h.SkipTurn).Methods("POST")
	api.HandleFunc("/meetings/{id}/timer/start", h.StartTimer).Methods("POST")
	api.HandleFunc("/meetings/{id}/timer/stop", h.StopTimer).Methods("POST")
	api.HandleFunc("/meetings/{id}/responses", h.SubmitResponse).Methods("PUT")
	api.HandleFunc("/meetings/{id}/feedback", h.SubmitFeedback).Methods("PUT")

	return r
}

// loggingMiddleware logs each request with method, path, status, duration.
func loggingMiddleware(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker so WebSocket upgrades work through the
// logging middleware.
func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
	}
	return h.Hijack()
}

package alert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	domain "github.com/oshokin/panic-button/internal/domain/alert"
	"github.com/oshokin/panic-button/internal/logger"
	service "github.com/oshokin/panic-button/internal/service/alert"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Arm(ctx context.Context) domain.Status
	Disarm(ctx context.Context) domain.Status
	Trigger(ctx context.Context) domain.Status
	CancelCountdown(ctx context.Context) domain.Status
	Stop(ctx context.Context) domain.Status
	Note(ctx context.Context, text string) domain.Status
	SetVolume(ctx context.Context, volume float64) (domain.Status, error)
	State(ctx context.Context) domain.Status
	Log() []domain.LogEntry
	Message() string
}

// Server exposes the intent surface and read endpoints over HTTP/JSON.
//
// Invalid transitions are silent no-ops, so intent endpoints always
// answer 200 with the (possibly unchanged) resulting state; only
// malformed requests produce error statuses.
type Server struct {
	// service provides the business logic for alert operations.
	service Service
}

// NewServer wires the provided service implementation into an HTTP handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Liveness only, no state machine access.
	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/intents/arm", s.intent(Service.Arm))
		r.Post("/intents/disarm", s.intent(Service.Disarm))
		r.Post("/intents/trigger", s.intent(Service.Trigger))
		r.Post("/intents/cancel", s.intent(Service.CancelCountdown))
		r.Post("/intents/stop", s.intent(Service.Stop))

		r.Post("/note", s.handleNote)
		r.Put("/volume", s.handleVolume)

		r.Get("/state", s.handleState)
		r.Get("/log", s.handleLog)
		r.Get("/message", s.handleMessage)
	})

	return r
}

// noteRequest is the body of POST /v1/note.
type noteRequest struct {
	Text string `json:"text"`
}

// volumeRequest is the body of PUT /v1/volume.
type volumeRequest struct {
	Volume float64 `json:"volume"`
}

// messageResponse is the body of GET /v1/message.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is the error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// intent adapts a state machine operation into an HTTP handler.
func (s *Server) intent(op func(Service, context.Context) domain.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, op(s.service, r.Context()))
	}
}

// handleHealth answers the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleState returns the current status.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.service.State(r.Context()))
}

// handleLog returns the event log, newest entry first.
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	entries := s.service.Log()
	if entries == nil {
		entries = []domain.LogEntry{}
	}

	writeJSON(r.Context(), w, http.StatusOK, entries)
}

// handleMessage returns the shareable panic message.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: s.service.Message()})
}

// handleNote attaches a note to the alert.
func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, s.service.Note(r.Context(), req.Text))
}

// handleVolume updates the alarm volume.
func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	status, err := s.service.SetVolume(r.Context(), req.Volume)
	if err != nil {
		if errors.Is(err, service.ErrInvalidVolume) {
			writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Error: "unable to update volume"})

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, status)
}

// writeJSON serialises v with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.DebugKV(ctx, "Response write failed", "error", err)
	}
}

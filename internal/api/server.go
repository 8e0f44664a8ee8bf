// Package api exposes the invitation wizard as a JSON HTTP API, one wizard session per client.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fmuoria/interview-invite-agent/internal/directory"
	"github.com/fmuoria/interview-invite-agent/internal/logging"
	"github.com/fmuoria/interview-invite-agent/internal/mailer"
	"github.com/fmuoria/interview-invite-agent/internal/models"
	"github.com/fmuoria/interview-invite-agent/internal/session"
	"github.com/fmuoria/interview-invite-agent/internal/wizard"
)

// Version is reported by GET /
var Version = "1.0.0"

// Server handles HTTP requests
type Server struct {
	wizard   *wizard.Controller
	sessions *session.Store
	log      *slog.Logger
}

// NewServer creates a new API server
func NewServer(w *wizard.Controller, sessions *session.Store, log *slog.Logger) *Server {
	if sessions == nil {
		sessions = session.NewStore()
	}
	return &Server{
		wizard:   w,
		sessions: sessions,
		log:      logging.OrDefault(log),
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)
	r.Get("/candidates", s.handleCandidates)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/selection", s.handleSelection)
			r.Post("/compose", s.handleCompose)
			r.Post("/edit", s.handleEdit)
			r.Put("/body", s.handleBody)
			r.Post("/save", s.handleSave)
			r.Post("/send", s.handleSend)
			r.Post("/restart", s.handleRestart)
		})
	})

	return r
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "Interview Invite Agent",
		"version": Version,
		"endpoints": map[string]string{
			"GET /candidates":               "List candidates and interviewers",
			"POST /sessions":                "Start a wizard session",
			"GET /sessions/{id}":            "Get session state",
			"POST /sessions/{id}/selection": "Choose candidate and interviewer",
			"POST /sessions/{id}/compose":   "Generate the invitation",
			"POST /sessions/{id}/edit":      "Enter edit mode",
			"PUT /sessions/{id}/body":       "Replace the body while editing",
			"POST /sessions/{id}/save":      "Leave edit mode",
			"POST /sessions/{id}/send":      "Send the invitation",
			"POST /sessions/{id}/restart":   "Back to the selection page",
			"DELETE /sessions/{id}":         "End the session",
			"GET /health":                   "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	if err := s.wizard.DirectoryError(); err != nil {
		s.respondErr(w, err)
		return
	}

	candidates := s.wizard.Candidates()
	if candidates == nil {
		candidates = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"candidates":   candidates,
		"interviewers": s.wizard.Interviewers(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(s.wizard.Start())
	s.log.Info("session started", slog.String("session", sess.ID))
	s.respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type selectionRequest struct {
	Candidate   string `json:"candidate"`
	Interviewer string `json:"interviewer"`
}

func (req selectionRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Candidate, validation.Required),
		validation.Field(&req.Interviewer, validation.Required),
	)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !s.decode(w, r, &req) {
		return
	}

	sess, err := s.sessions.Update(chi.URLParam(r, "id"), func(sess wizard.Session) (wizard.Session, error) {
		return s.wizard.Select(sess, req.Candidate, req.Interviewer)
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

type composeRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (req composeRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Date, validation.Required, validation.Date(models.DateLayout)),
		validation.Field(&req.Time, validation.Required, validation.Date(models.TimeLayout)),
	)
}

type composeResponse struct {
	Session     wizard.Session     `json:"session"`
	Composition models.Composition `json:"composition"`
	Text        string             `json:"text"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if !s.decode(w, r, &req) {
		return
	}

	var result models.Composition
	sess, err := s.sessions.Update(chi.URLParam(r, "id"), func(sess wizard.Session) (wizard.Session, error) {
		next, composition, err := s.wizard.Compose(r.Context(), sess, req.Date, req.Time)
		result = composition
		return next, err
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}

	status := http.StatusOK
	if !result.OK() {
		status = http.StatusBadGateway
	}
	s.respondJSON(w, status, composeResponse{Session: sess, Composition: result, Text: result.Text()})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.wizard.BeginEdit)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.wizard.SaveEdit)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(sess wizard.Session) (wizard.Session, error) {
		return s.wizard.Restart(sess), nil
	})
}

type bodyRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleBody(w http.ResponseWriter, r *http.Request) {
	var req bodyRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.transition(w, r, func(sess wizard.Session) (wizard.Session, error) {
		return s.wizard.UpdateBody(sess, req.Body)
	})
}

type sendResponse struct {
	Session wizard.Session `json:"session"`
	Message string         `json:"message"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Update(chi.URLParam(r, "id"), func(sess wizard.Session) (wizard.Session, error) {
		return s.wizard.Send(r.Context(), sess)
	})
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sendResponse{Session: sess, Message: mailer.Describe(nil)})
}

// transition applies a synchronous wizard step to the session named in the URL
func (s *Server) transition(w http.ResponseWriter, r *http.Request, step func(wizard.Session) (wizard.Session, error)) {
	sess, err := s.sessions.Update(chi.URLParam(r, "id"), step)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

// decode reads a JSON body into v and validates it when v supports validation
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if val, ok := v.(validation.Validatable); ok {
		if err := val.Validate(); err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return false
		}
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrMissingState),
		errors.Is(err, wizard.ErrNothingComposed),
		errors.Is(err, wizard.ErrNotEditing),
		errors.Is(err, wizard.ErrNotOnSelection):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrEmptyDirectory),
		errors.Is(err, wizard.ErrUnknownCandidate),
		errors.Is(err, wizard.ErrIncompleteCandidate),
		errors.Is(err, wizard.ErrUnknownInterviewer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, directory.ErrNotFound),
		errors.Is(err, directory.ErrSchema),
		errors.Is(err, directory.ErrLoad):
		return http.StatusServiceUnavailable
	case errors.Is(err, mailer.ErrConfig):
		return http.StatusInternalServerError
	case errors.Is(err, mailer.ErrConnect):
		return http.StatusServiceUnavailable
	case errors.Is(err, mailer.ErrAuth), errors.Is(err, mailer.ErrSend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondErr maps err to a status and writes it; dispatcher errors carry the user-facing text
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if errors.Is(err, mailer.ErrConfig) || errors.Is(err, mailer.ErrAuth) ||
		errors.Is(err, mailer.ErrConnect) || errors.Is(err, mailer.ErrSend) {
		message = mailer.Describe(err)
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", slog.Int("status", status), slog.String("error", err.Error()))
	}
	s.respondError(w, status, message)
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Int("status", ww.Status()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Duration("duration", time.Since(start)))
	})
}

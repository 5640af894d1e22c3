package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/internal/logging"
	"github.com/aretw0/leadchat/internal/presentation/graph"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/runner"
	"github.com/aretw0/leadchat/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds request bodies; individual inputs are bounded by
// runner.SanitizeInput.
const maxBodyBytes = 64 << 10

// Server serves the chat API over a session manager.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	logger  *slog.Logger
	metrics http.Handler
	origin  string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures request failure logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams shares a StreamManager that is also registered as a
// session.Observer, so the events endpoint receives conversation diffs.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithAllowedOrigin sets Access-Control-Allow-Origin. Default "*".
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.origin = origin
		}
	}
}

// NewHandler creates the HTTP handler for the chat API.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
		origin:   "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/graph/mermaid", s.GetMermaid)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/chats", func(r chi.Router) {
		r.Post("/", s.StartChat)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetChat)
			r.Delete("/", s.DeleteChat)
			r.Post("/choices", s.Choose)
			r.Post("/lead", s.SubmitLead)
			r.Post("/reset", s.ResetChat)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/mermaid", s.GetChatMermaid)
		})
	})
	return r
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartRequest is the body of POST /chats. Both fields are optional.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// ChoiceRequest is the body of POST /chats/{id}/choices: a value or a
// zero-based index into the current options.
type ChoiceRequest struct {
	Value string `json:"value,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// ChoiceResponse answers a choice. Navigation is set when the option is a
// host navigation action; Turn is nil when no transition happened.
type ChoiceResponse struct {
	View       domain.View              `json:"view"`
	Turn       *domain.Turn             `json:"turn,omitempty"`
	Navigation *domain.NavigationAction `json:"navigation,omitempty"`
}

// LeadResponse answers a lead submission.
type LeadResponse struct {
	Result domain.LeadResult `json:"result"`
	View   domain.View       `json:"view"`
}

// GraphResponse describes the loaded graph.
type GraphResponse struct {
	Entry      string                    `json:"entry"`
	Thanks     string                    `json:"thanks"`
	Nodes      []domain.Node             `json:"nodes"`
	Navigation []domain.NavigationAction `json:"navigation,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer except lead outcomes.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StartChat handles POST /chats.
func (s *Server) StartChat(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if r.ContentLength != 0 {
		if !s.decode(w, r, &body) {
			return
		}
	}
	id, err := runner.SanitizeInput(strings.TrimSpace(body.SessionID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.Sessions.Start(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

// GetChat handles GET /chats/{id}.
func (s *Server) GetChat(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// DeleteChat handles DELETE /chats/{id}.
func (s *Server) DeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetChat handles POST /chats/{id}/reset.
func (s *Server) ResetChat(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// Choose handles POST /chats/{id}/choices.
func (s *Server) Choose(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body ChoiceRequest
	if !s.decode(w, r, &body) {
		return
	}
	value, err := runner.SanitizeInput(strings.TrimSpace(body.Value))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if value == "" && body.Index == nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "value or index is required"})
		return
	}

	index := -1
	if body.Index != nil {
		if *body.Index < 0 {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "index must not be negative"})
			return
		}
		index = *body.Index
	}

	sel, err := s.Sessions.Select(r.Context(), id, value, index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ChoiceResponse{View: sel.View, Turn: sel.Turn, Navigation: sel.Navigation})
}

// SubmitLead handles POST /chats/{id}/lead.
func (s *Server) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var fields domain.LeadFields
	if !s.decode(w, r, &fields) {
		return
	}
	fields, err := runner.SanitizeLead(fields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, view, err := s.Sessions.SubmitLead(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	switch res.Outcome {
	case domain.LeadInvalid:
		status = http.StatusUnprocessableEntity
	case domain.LeadFailed:
		status = http.StatusBadGateway
	case domain.LeadDiscarded:
		status = http.StatusConflict
	}
	s.writeJSON(w, status, LeadResponse{Result: res, View: view})
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.Sessions.Graph()
	s.writeJSON(w, http.StatusOK, GraphResponse{
		Entry:      g.EntryID(),
		Thanks:     g.ThanksID(),
		Nodes:      g.Nodes(),
		Navigation: g.NavigationActions(),
	})
}

// GetMermaid handles GET /graph/mermaid.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(s.Sessions.Graph(), nil))
}

// GetChatMermaid handles GET /chats/{id}/mermaid: the graph with the
// conversation path highlighted.
func (s *Server) GetChatMermaid(w http.ResponseWriter, r *http.Request) {
	conv, err := s.Sessions.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g := s.Sessions.Graph()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(g, graph.OverlayFor(g, conv)))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "leadchat-http",
		"version": strings.TrimSpace(leadchat.Version),
		"nodes":   s.Sessions.Graph().Len(),
	})
}

// SubscribeEvents handles GET /chats/{id}/events (SSE). Each event carries
// a ConversationDiff; ?watch=transcript,status,node,data filters them.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if _, err := s.Sessions.Snapshot(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}

	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			watch = append(watch, strings.TrimSpace(f))
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	s.logger.Debug("SSE: Subscribed", "session_id", sessionID)
	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: Client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 {
				var diff domain.ConversationDiff
				if err := json.Unmarshal([]byte(msg), &diff); err == nil && !matchesWatch(&diff, watch) {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownOption),
		errors.Is(err, domain.ErrNavigationOption),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrSubmissionInFlight):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

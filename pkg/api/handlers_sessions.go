package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/holographic"
	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/session"
)

// SessionsHandler serves session lifecycle and the memory operations of
// each session. A nil hub disables event broadcasts.
type SessionsHandler struct {
	manager *session.Manager
	hub     *Hub
}

// NewSessionsHandler creates a handler over manager.
func NewSessionsHandler(manager *session.Manager, hub *Hub) *SessionsHandler {
	return &SessionsHandler{manager: manager, hub: hub}
}

// RegisterRoutes registers the session routes on the router.
func (h *SessionsHandler) RegisterRoutes(router *Router) {
	router.GET("/api/sessions", h.ListSessions)
	router.POST("/api/sessions", h.CreateSession)
	router.GET("/api/sessions/:id", h.GetSession)
	router.DELETE("/api/sessions/:id", h.DeleteSession)
	router.POST("/api/sessions/:id/end", h.EndSession)
	router.POST("/api/sessions/:id/export", h.ExportSession)

	router.POST("/api/sessions/:id/ingest", h.Ingest)
	router.POST("/api/sessions/:id/generate", h.Generate)
	router.POST("/api/sessions/:id/turn", h.Turn)
	router.POST("/api/sessions/:id/process", h.Process)
	router.GET("/api/sessions/:id/metrics", h.GetMetrics)
	router.GET("/api/sessions/:id/messages", h.GetMessages)
}

// -----------------------------------------------------------------------------
// API Request Types
// -----------------------------------------------------------------------------

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	Name string `json:"name"`
}

// TextRequest is the body of ingest and turn requests.
type TextRequest struct {
	Text string `json:"text"`
}

// GenerateRequest is the body of POST /api/sessions/:id/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// ProcessRequest is the body of POST /api/sessions/:id/process.
type ProcessRequest struct {
	Samples []float64 `json:"samples"`
}

// ExportRequest is the optional body of POST /api/sessions/:id/export.
type ExportRequest struct {
	Dir string `json:"dir,omitempty"`
}

// -----------------------------------------------------------------------------
// API Response Types
// -----------------------------------------------------------------------------

// SessionListResponse is the response for GET /api/sessions.
type SessionListResponse struct {
	Sessions []session.Summary `json:"sessions"`
	Total    int               `json:"total"`
}

// SingleSessionResponse is the response for single-session endpoints.
type SingleSessionResponse struct {
	Session session.Summary `json:"session"`
	Metrics session.Metrics `json:"metrics"`
}

// IngestResponse is the response for POST /api/sessions/:id/ingest.
// Warning is set when some words did not fit in memory.
type IngestResponse struct {
	Report  holographic.IngestReport `json:"report"`
	Metrics session.Metrics          `json:"metrics"`
	Warning string                   `json:"warning,omitempty"`
}

// GenerateResponse is the response for POST /api/sessions/:id/generate.
type GenerateResponse struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// ProcessResponse is the response for POST /api/sessions/:id/process.
type ProcessResponse struct {
	Output  []float64       `json:"output"`
	Metrics session.Metrics `json:"metrics"`
}

// MessagesResponse is the response for GET /api/sessions/:id/messages.
type MessagesResponse struct {
	Messages []session.Message `json:"messages"`
	Total    int               `json:"total"`
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// lookup resolves :id or writes the error and returns nil.
func (h *SessionsHandler) lookup(w http.ResponseWriter, r *http.Request) *session.Session {
	s, err := h.manager.Get(PathParam(r, "id"))
	if err != nil {
		WriteErr(w, err)
		return nil
	}
	return s
}

// decode reads the body into target or writes a 400 and returns false.
func decode(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := ReadJSON(r, target); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json",
			"Invalid JSON in request body: "+err.Error())
		return false
	}
	return true
}

func (h *SessionsHandler) publishMetrics(s *session.Session, m session.Metrics) {
	if h.hub == nil {
		return
	}
	if err := h.hub.BroadcastMetrics(s.ID, m); err != nil {
		log.Printf("[api] metrics broadcast failed: %v", err)
	}
}

// -----------------------------------------------------------------------------
// Lifecycle Handlers
// -----------------------------------------------------------------------------

// ListSessions handles GET /api/sessions.
func (h *SessionsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	list := h.manager.List()
	WriteJSON(w, http.StatusOK, SessionListResponse{Sessions: list, Total: len(list)})
}

// CreateSession handles POST /api/sessions. An empty body uses the
// configured session name.
func (h *SessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	s, err := h.manager.Create(strings.TrimSpace(req.Name))
	if err != nil {
		WriteErr(w, err)
		return
	}
	log.Printf("[api] session %s created (%s)", s.ID, s.Name)
	WriteJSON(w, http.StatusCreated, SingleSessionResponse{
		Session: session.Summarize(s),
		Metrics: s.Metrics(),
	})
}

// GetSession handles GET /api/sessions/:id.
func (h *SessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s := h.lookup(w, r)
	if s == nil {
		return
	}
	WriteJSON(w, http.StatusOK, SingleSessionResponse{
		Session: session.Summarize(s),
		Metrics: s.Metrics(),
	})
}

// DeleteSession handles DELETE /api/sessions/:id.
func (h *SessionsHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "id")
	if err := h.manager.Delete(id); err != nil {
		WriteErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true})
}

// EndSession handles POST /api/sessions/:id/end.
func (h *SessionsHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	s := h.lookup(w, r)
	if s == nil {
		return
	}
	s.End()
	WriteJSON(w, http.StatusOK, SingleSessionResponse{
		Session: session.Summarize(s),
		Metrics: s.Metrics(),
	})
}

// ExportSession handles POST /api/sessions/:id/export.
func (h *SessionsHandler) ExportSession(w http.ResponseWriter, r *http.Request) {
	s := h.lookup(w, r)
	if s == nil {
		return
	}
	var req ExportRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	path, err := s.Export(req.Dir)
	if err != nil {
		WriteErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"path": path})
}

// -----------------------------------------------------------------------------
// Memory Handlers
// -----------------------------------------------------------------------------

// Ingest handles POST /api/sessions/:id/ingest. Words that overflow the
// memory are reported in a warning while the rest of the text is kept.
func (h *SessionsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	s := h.lookup(w, r)
	if s == nil {
		return
	}
	var req TextRequest
	if !decode(w, r, &req) {
		return
	}

	report, err := s.Ingest(req.Text)
	resp := IngestResponse{Report: report}
	if err != nil {
		if !nerrors.IsCode(err, nerrors.ErrCapacityExceeded) {
			WriteErr(w, err)
			return
		}
		resp.Warning = err.Error()
	}
	resp.Metrics = s.Metrics()
	h.publishMetrics(s, resp.Metrics)
	WriteJSON(w, http.StatusOK, resp)
}

// Generate handles POST /api/sessions/:id/generate.
func (h *SessionsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	s := h.lookup(w, r)
	if s == nil {
		return
	}
	var req GenerateRequest
	if !decode(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusOK, GenerateResponse{
		Prompt:   req.Prompt,
		Response: s.Generate(req.Prompt),
	})
}

// Turn handles POST /api/sessions/:id/turn.
func (h *SessionsHandler) Turn(w http.ResponseWriter, r *http.Request) {
	s := h.lookup(w, r)
	if s == nil {
		return
	}
	var req TextRequest
	if !decode(w, r, &req) {
		return
	}

	turn, err := s.Submit(req.Text)
	if err != nil {
		WriteErr(w, err)
		return
	}
	if turn == nil {
		WriteError(w, http.StatusBadRequest, "missing_text", "Text is required")
		return
	}

	if h.hub != nil {
		h.hub.PublishTurn(s.ID, turn)
	}
	WriteJSON(w, http.StatusOK, turn)
}

// Process handles POST /api/sessions/:id/process.
func (h *SessionsHandler) Process(w http.ResponseWriter, r *http.Request) {
	s := h.lookup(w, r)
	if s == nil {
		return
	}
	var req ProcessRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := s.Process(req.Samples)
	if err != nil {
		WriteErr(w, err)
		return
	}
	m := s.Metrics()
	h.publishMetrics(s, m)
	WriteJSON(w, http.StatusOK, ProcessResponse{Output: out, Metrics: m})
}

// GetMetrics handles GET /api/sessions/:id/metrics.
func (h *SessionsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	s := h.lookup(w, r)
	if s == nil {
		return
	}
	WriteJSON(w, http.StatusOK, s.Metrics())
}

// GetMessages handles GET /api/sessions/:id/messages?limit=N.
func (h *SessionsHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	s := h.lookup(w, r)
	if s == nil {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteErr(w, nerrors.ValidationErrorf(nerrors.ErrValidationFailed,
				"limit must be a non-negative integer, got %q", v).
				WithContext("field", "limit"))
			return
		}
		limit = n
	}

	msgs := s.History(limit)
	WriteJSON(w, http.StatusOK, MessagesResponse{Messages: msgs, Total: len(msgs)})
}

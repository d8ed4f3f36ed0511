package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/bom"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/canvas"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/producer"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/session"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/symbols"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/resilience"
)

type server struct {
	store         *session.Store
	logger        *slog.Logger
	producerState func() resilience.State
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", met.Handler())

	mux.HandleFunc("POST /api/sessions", s.handleCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleSnapshot))
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDelete)
	mux.HandleFunc("PUT /api/sessions/{id}/graph", s.withSession(s.handleLoad))
	mux.HandleFunc("GET /api/sessions/{id}/scene", s.withSession(s.handleScene))
	mux.HandleFunc("POST /api/sessions/{id}/events", s.withSession(s.handleEvent))
	mux.HandleFunc("POST /api/sessions/{id}/generate", s.withSession(s.handleGenerate))
	mux.HandleFunc("PUT /api/sessions/{id}/components/{cid}/value", s.withSession(s.handleValue))
	mux.HandleFunc("PUT /api/sessions/{id}/style", s.withSession(s.handleStyle))
	mux.HandleFunc("POST /api/sessions/{id}/connections/{connId}/rewire", s.withSession(s.handleRewire))
	mux.HandleFunc("GET /api/sessions/{id}/bom.csv", s.withSession(s.handleBOM))
	return mux
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

func (s *server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.store.Get(r.PathValue("id"))
		if err != nil {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h(w, r, sess)
	}
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "status", status, "err", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"producer": s.producerState().String(),
	})
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Create()
	mSessions.Set(int64(s.store.Len()))
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID()})
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	mSessions.Set(int64(s.store.Len()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSnapshot(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *server) handleScene(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.writeJSON(w, http.StatusOK, sess.Scene())
}

func (s *server) handleLoad(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	g, err := schematic.Decode(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Load(r.Context(), g))
}

func (s *server) handleEvent(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var ev canvas.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snap, err := sess.Handle(r.Context(), ev)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// GenerateRequest is the JSON body for POST .../generate.
type GenerateRequest struct {
	Description string `json:"description"`
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snap, err := sess.Generate(r.Context(), req.Description)
	if err != nil {
		status := generateStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("generate failed", "session", sess.ID(), "err", err)
		}
		s.writeJSON(w, status, map[string]any{"error": err.Error(), "snapshot": snap})
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func generateStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrStaleGeneration):
		return http.StatusConflict
	case errors.Is(err, producer.ErrEmptyDescription):
		return http.StatusBadRequest
	case errors.Is(err, resilience.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, session.ErrNoProducer):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (s *server) handleValue(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.writeJSON(w, http.StatusOK, sess.QuickEditValue(r.Context(), r.PathValue("cid"), req.Value))
}

func (s *server) handleStyle(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req struct {
		Style string `json:"style"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	style, err := symbols.ParseStyle(req.Style)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sess.SetStyle(r.Context(), style))
}

func (s *server) handleRewire(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req struct {
		FromID string `json:"fromId"`
		ToID   string `json:"toId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.writeJSON(w, http.StatusOK, sess.RewireConnection(r.Context(), r.PathValue("connId"), req.FromID, req.ToID))
}

func (s *server) handleBOM(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+bom.Filename+`"`)
	if err := sess.WriteBOM(w); err != nil {
		s.logger.Error("write bom", "session", sess.ID(), "err", err)
	}
}

// internal/httpapi/server.go
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/hydrolix-assistant/internal/auditstore"
	"github.com/user/hydrolix-assistant/internal/types"
)

// TurnHandler processes one inbound prompt within its session and returns
// the assembled answer.
type TurnHandler func(ctx context.Context, ev types.InboundEvent) (*types.Answer, error)

// Server is a lightweight HTTP handler for the invocation endpoints.
type Server struct {
	handler TurnHandler
	audits  auditstore.Store
	mux     *http.ServeMux
}

// NewServer creates a Server with the given turn handler and audit store.
// audits may be nil; the turn-results endpoint then reports unavailable.
func NewServer(handler TurnHandler, audits auditstore.Store) *Server {
	s := &Server{
		handler: handler,
		audits:  audits,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /ping", s.handlePing)
	s.mux.HandleFunc("POST /invocations", s.handleInvocation)
	s.mux.HandleFunc("GET /api/turns/", s.handleTurnResults)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// invocationRequest is the JSON body for POST /invocations.
type invocationRequest struct {
	Prompt     string `json:"prompt"`
	PromptUUID string `json:"prompt_uuid"`
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id"`
	Timezone   string `json:"user_timezone"`
	LastKTurns int    `json:"last_k_turns"`
}

func (s *Server) handleInvocation(w http.ResponseWriter, r *http.Request) {
	var req invocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	if req.Prompt == "" || req.SessionID == "" {
		http.Error(w, `{"error":"prompt and session_id are required"}`, http.StatusBadRequest)
		return
	}

	ev := types.InboundEvent{
		Source:     "http",
		SessionKey: types.SessionKey(req.SessionID),
		UserID:     req.UserID,
		Text:       req.Prompt,
		Timezone:   req.Timezone,
		TurnID:     types.TurnID(req.PromptUUID),
		LastK:      req.LastKTurns,
	}

	ans, err := s.handler(r.Context(), ev)
	if err != nil {
		slog.Error("invocation failed", "session_id", req.SessionID, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ans)
}

func (s *Server) handleTurnResults(w http.ResponseWriter, r *http.Request) {
	if s.audits == nil {
		http.Error(w, `{"error":"audit store not configured"}`, http.StatusServiceUnavailable)
		return
	}

	// Path: /api/turns/{id}/results
	path := strings.TrimPrefix(r.URL.Path, "/api/turns/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] != "results" {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	turnID := types.TurnID(parts[0])

	records, err := s.audits.ResultsForTurn(r.Context(), turnID)
	if err != nil {
		slog.Error("load turn results failed", "turn_id", string(turnID), "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []auditstore.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

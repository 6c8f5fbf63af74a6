package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ai "github.com/codypharm/pharma-sidekick"
	"github.com/codypharm/pharma-sidekick/loop"
	"github.com/codypharm/pharma-sidekick/store"
)

// RunRequest is the body of POST /run. A missing session_id starts a
// new conversation; passing one back continues it.
type RunRequest struct {
	Message         string       `json:"message"`
	SuccessCriteria string       `json:"success_criteria,omitempty"`
	History         []loop.Entry `json:"history,omitempty"`
	SessionID       string       `json:"session_id,omitempty"`
}

// RunResponse is the body returned by POST /run.
type RunResponse struct {
	History     []loop.Entry `json:"history"`
	SessionID   string       `json:"session_id"`
	Termination string       `json:"termination,omitempty"`
}

// SidekickFactory creates a sidekick bound to a session key.
type SidekickFactory func(sessionID string) *loop.Sidekick

// RunHandler drives one supervision superstep per request. Each
// session key gets its own sidekick so checkpoints for different
// conversations never mix. Callers must not issue concurrent requests
// for the same session.
type RunHandler struct {
	factory SidekickFactory
	timeout time.Duration

	mu        sync.Mutex
	sidekicks map[string]*loop.Sidekick
}

// NewRunHandler creates a handler that builds sidekicks on demand.
func NewRunHandler(factory SidekickFactory, timeout time.Duration) *RunHandler {
	return &RunHandler{
		factory:   factory,
		timeout:   timeout,
		sidekicks: make(map[string]*loop.Sidekick),
	}
}

// sidekickFor returns the sidekick for a session key, generating a
// fresh key when none is supplied.
func (h *RunHandler) sidekickFor(sessionID string) (*loop.Sidekick, string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionID == "" {
		sessionID = store.GenerateSessionID()
	}
	sk, ok := h.sidekicks[sessionID]
	if !ok {
		sk = h.factory(sessionID)
		h.sidekicks[sessionID] = sk
	}
	return sk, sessionID
}

// ServeHTTP handles POST /run. Loop failures are reported inside the
// returned history as an explicit assistant error entry so the
// conversation surface always reflects what happened.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		slog.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sidekick, sessionID := h.sidekickFor(req.SessionID)

	log := slog.With("session_id", sessionID)
	log.Info("run started", "history_len", len(req.History))

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	history, err := sidekick.Run(ctx, req.Message, req.SuccessCriteria, req.History)
	if err != nil {
		log.Error("run failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		history = append(history, loop.Entry{
			Role:    string(ai.RoleAssistant),
			Content: fmt.Sprintf("Processing error: %v", err),
		})
	} else {
		log.Info("run completed",
			"duration_ms", time.Since(start).Milliseconds(),
			"termination", sidekick.Termination,
		)
	}

	writeJSON(w, log, RunResponse{
		History:     history,
		SessionID:   sessionID,
		Termination: string(sidekick.Termination),
	})
}

// PrescriptionHandler renders a structured prescription form into the
// validation message sent to the loop.
type PrescriptionHandler struct{}

// ServeHTTP handles POST /prescription and GET /prescription/examples.
func (h *PrescriptionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, slog.Default(), Examples)
	case http.MethodPost:
		var p Prescription
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		message, err := p.BuildMessage()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, slog.Default(), map[string]string{
			"message":          message,
			"success_criteria": loop.DefaultSuccessCriteria,
		})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response", "error", err)
	}
}

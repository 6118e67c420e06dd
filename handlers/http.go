// Package handlers serves the pipeline state over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noxouille/fps-monitor-overlay/monitor"
)

// Handler bundles the JSON endpoints around one monitor session.
type Handler struct {
	mon *monitor.Monitor
	log zerolog.Logger
}

// New creates a Handler.
func New(mon *monitor.Monitor, log zerolog.Logger) *Handler {
	return &Handler{mon: mon, log: log}
}

// Snapshot serves the composite pipeline snapshot.
// GET /api/snapshot
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.mon.Snapshot())
}

// Drops serves the drop history, optionally bounded by ?window=30s.
// GET /api/drops
func (h *Handler) Drops(w http.ResponseWriter, r *http.Request) {
	det := h.mon.Detector()

	if raw := r.URL.Query().Get("window"); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid window duration")
			return
		}
		h.writeJSON(w, http.StatusOK, det.RecentDrops(window))
		return
	}

	h.writeJSON(w, http.StatusOK, det.Drops())
}

// Reset clears the session: samples, statistics and drop history.
// POST /api/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	h.mon.Reset()
	h.log.Info().Msg("Session reset via API")
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Healthz reports liveness.
// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(h.mon.Uptime().Seconds()),
		"samples":        h.mon.Calculator().SampleCount(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

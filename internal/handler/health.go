package handler

import (
	"net/http"

	"github.com/dodorico/property-assistant/internal/queue"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	queueClient *queue.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(queueClient *queue.Client) *HealthHandler {
	return &HealthHandler{
		queueClient: queueClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.queueClient == nil || !h.queueClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "queue not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

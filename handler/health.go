package handler

import (
	"net/http"
	"time"
)

// HealthCheck reports service liveness
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *FormHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "madeiyese-homecare",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

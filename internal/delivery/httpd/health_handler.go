package httpd

import (
	"net/http"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/models"
)

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "clubtrack",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.connector.Status())
}

// Connect is the only call that reports a backend failure to the caller.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	var req models.ConnectRequest
	if !h.decode(w, r, &req) {
		return
	}

	override := &models.ConnectionOverride{URL: req.URL, Key: req.Key}
	if err := h.connector.Connect(r.Context(), override); err != nil {
		h.logger.Warn().Err(err).Msg("Manual connect failed")
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"message": err.Error(),
			"data":    h.connector.Status(),
		})
		return
	}

	writeSuccess(w, h.connector.Status())
}

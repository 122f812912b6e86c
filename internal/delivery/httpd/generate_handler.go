package httpd

import (
	"net/http"

	"github.com/RubachokBoss/clubtrack/internal/models"
)

// Генерация всегда отвечает 200, пустой результат означает сбой модели
func (h *Handler) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateLessonRequest
	if !h.decode(w, r, &req) {
		return
	}

	if h.services.Content == nil {
		writeError(w, http.StatusServiceUnavailable, "Content generation is not configured")
		return
	}

	content := h.services.Content.GenerateLesson(r.Context(), req.Subject, req.Objective)
	writeSuccess(w, map[string]string{"content": content})
}

func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if !h.decode(w, r, &req) {
		return
	}

	if h.services.Content == nil {
		writeError(w, http.StatusServiceUnavailable, "Content generation is not configured")
		return
	}

	quiz := h.services.Content.GenerateQuiz(r.Context(), req.Subject, req.Content)
	writeSuccess(w, map[string]interface{}{"quiz": quiz})
}

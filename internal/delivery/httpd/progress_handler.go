package httpd

import (
	"net/http"

	"github.com/RubachokBoss/clubtrack/internal/models"
)

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeSuccess(w, h.services.Progress.GetAll(r.Context()))
		return
	}

	progress, err := h.services.Progress.GetForStudent(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, progress)
}

func (h *Handler) ToggleSubject(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleSubjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	progress, err := h.services.Progress.ToggleSubject(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, progress)
}

func (h *Handler) CompleteSubject(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteSubjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.services.Progress.CompleteSubject(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}

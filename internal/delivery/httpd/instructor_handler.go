package httpd

import (
	"net/http"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetInstructors(w http.ResponseWriter, r *http.Request) {
	instructors := h.services.Instructors.GetAll(r.Context())

	views := make([]models.InstructorView, 0, len(instructors))
	for _, i := range instructors {
		views = append(views, i.View())
	}

	writeSuccess(w, views)
}

func (h *Handler) AddInstructor(w http.ResponseWriter, r *http.Request) {
	var req models.InstructorRequest
	if !h.decode(w, r, &req) {
		return
	}

	instructor, err := h.services.Instructors.Add(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeCreated(w, instructor.View())
}

func (h *Handler) DeleteInstructor(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Instructors.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

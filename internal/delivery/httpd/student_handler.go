package httpd

import (
	"net/http"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/go-chi/chi/v5"
)

func studentViews(students []models.Student) []models.StudentView {
	views := make([]models.StudentView, 0, len(students))
	for _, s := range students {
		views = append(views, s.View())
	}
	return views
}

func (h *Handler) GetStudents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if classID := r.URL.Query().Get("class_id"); classID != "" {
		students, err := h.services.Students.GetByClass(ctx, classID)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		writeSuccess(w, studentViews(students))
		return
	}

	writeSuccess(w, studentViews(h.services.Students.GetAll(ctx)))
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.services.Students.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, student.View())
}

func (h *Handler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	var req models.StudentRequest
	if !h.decode(w, r, &req) {
		return
	}

	student, err := h.services.Students.Enroll(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeCreated(w, student.View())
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.StudentRequest
	if !h.decode(w, r, &req) {
		return
	}

	student, err := h.services.Students.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, student.View())
}

func (h *Handler) ResetStudentPassword(w http.ResponseWriter, r *http.Request) {
	student, err := h.services.Students.ResetPassword(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, student.View())
}

func (h *Handler) ChangeStudentPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.services.Students.ChangePassword(r.Context(), chi.URLParam(r, "id"), &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, nil)
}

func (h *Handler) GetStudentSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.services.Sessions.VisibleTo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, sessions)
}

func (h *Handler) GetStudentProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.services.Progress.GetForStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, progress)
}

package httpd

import (
	"net/http"

	"github.com/RubachokBoss/clubtrack/internal/models"
)

func (h *Handler) LoginStaff(w http.ResponseWriter, r *http.Request) {
	var req models.StaffLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.services.Auth.LoginStaff(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, session)
}

func (h *Handler) LoginStudent(w http.ResponseWriter, r *http.Request) {
	var req models.StudentLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.services.Auth.LoginStudent(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, session)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Auth.Logout(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, nil)
}

func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.services.Auth.Current(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, session)
}

package httpd

import (
	"net/http"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	classID := r.URL.Query().Get("class_id")
	if classID == "" {
		writeSuccess(w, h.services.Sessions.GetAll(r.Context()))
		return
	}

	sessions, err := h.services.Sessions.GetByClass(r.Context(), classID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, sessions)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.services.Sessions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, session)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.services.Sessions.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeCreated(w, session)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.services.Sessions.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, session)
}

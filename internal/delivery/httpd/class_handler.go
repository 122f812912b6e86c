package httpd

import (
	"net/http"
	"strings"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetClasses(w http.ResponseWriter, r *http.Request) {
	club := r.URL.Query().Get("club")
	if club == "" {
		writeSuccess(w, h.services.Classes.GetAll(r.Context()))
		return
	}

	classes, err := h.services.Classes.GetByClub(r.Context(), models.Club(strings.ToUpper(club)))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, classes)
}

func (h *Handler) SetClassIcon(w http.ResponseWriter, r *http.Request) {
	var req models.ClassIconRequest
	if !h.decode(w, r, &req) {
		return
	}

	classes, err := h.services.Classes.SetIcon(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, classes)
}

package httpd

import (
	"net/http"
	"strings"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetClubLogos(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.services.Club.Logos(r.Context()))
}

func (h *Handler) SetClubLogo(w http.ResponseWriter, r *http.Request) {
	var req models.ClubLogoRequest
	if !h.decode(w, r, &req) {
		return
	}

	club := models.Club(strings.ToUpper(chi.URLParam(r, "club")))
	logos, err := h.services.Club.SetLogo(r.Context(), club, req.Logo)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, logos)
}

func (h *Handler) ResetClubLogos(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.services.Club.ResetLogos(r.Context()))
}

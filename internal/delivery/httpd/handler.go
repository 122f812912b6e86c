package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Connector is the backend connection owner.
type Connector interface {
	Connect(ctx context.Context, override *models.ConnectionOverride) error
	Status() models.StatusResponse
}

type Handler struct {
	services  *service.Services
	connector Connector
	validate  *validator.Validate
	logger    zerolog.Logger
}

func NewHandler(services *service.Services, connector Connector, logger zerolog.Logger) *Handler {
	return &Handler{
		services:  services,
		connector: connector,
		validate:  validator.New(),
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	// Health check
	router.Get("/health", h.HealthCheck)
	router.Get("/status", h.GetStatus)

	// Versioned API
	router.Route("/api/v1", func(api chi.Router) {
		api.Post("/connect", h.Connect)

		api.Route("/auth", func(r chi.Router) {
			r.Post("/login/staff", h.LoginStaff)
			r.Post("/login/student", h.LoginStudent)
			r.Post("/logout", h.Logout)
			r.Get("/session", h.CurrentSession)
		})

		api.Route("/students", func(r chi.Router) {
			r.Get("/", h.GetStudents)
			r.Post("/", h.EnrollStudent)
			r.Get("/{id}", h.GetStudent)
			r.Put("/{id}", h.UpdateStudent)
			r.Post("/{id}/reset-password", h.ResetStudentPassword)
			r.Put("/{id}/password", h.ChangeStudentPassword)
			r.Get("/{id}/sessions", h.GetStudentSessions)
			r.Get("/{id}/progress", h.GetStudentProgress)
		})

		api.Route("/classes", func(r chi.Router) {
			r.Get("/", h.GetClasses)
			r.Put("/{id}/icon", h.SetClassIcon)
		})

		api.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.GetSessions)
			r.Post("/", h.CreateSession)
			r.Get("/{id}", h.GetSession)
			r.Put("/{id}", h.UpdateSession)
		})

		api.Route("/progress", func(r chi.Router) {
			r.Get("/", h.GetProgress)
			r.Post("/toggle", h.ToggleSubject)
			r.Post("/complete", h.CompleteSubject)
		})

		api.Route("/messages", func(r chi.Router) {
			r.Get("/", h.GetConversation)
			r.Post("/", h.SendMessage)
			r.Post("/read", h.MarkConversationRead)
			r.Get("/unread-senders", h.GetUnreadSenders)
		})

		api.Route("/instructors", func(r chi.Router) {
			r.Get("/", h.GetInstructors)
			r.Post("/", h.AddInstructor)
			r.Delete("/{id}", h.DeleteInstructor)
		})

		api.Route("/club-logos", func(r chi.Router) {
			r.Get("/", h.GetClubLogos)
			r.Post("/reset", h.ResetClubLogos)
			r.Put("/{club}", h.SetClubLogo)
		})

		api.Route("/generate", func(r chi.Router) {
			r.Post("/lesson", h.GenerateLesson)
			r.Post("/quiz", h.GenerateQuiz)
		})
	})
}

// Вспомогательные функции
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, verrs[0].Field()+" failed on "+verrs[0].Tag())
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrInstructorNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotLoggedIn):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAdminDeletion):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidIcon),
		errors.Is(err, service.ErrInvalidClub),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidQuiz),
		errors.Is(err, service.ErrInvalidParticipant):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Internal error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}

func writeCreated(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

package httpd

import (
	"net/http"

	"github.com/RubachokBoss/clubtrack/internal/models"
)

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student_id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "student_id is required")
		return
	}

	messages, err := h.services.Messages.Conversation(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, messages)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	message, err := h.services.Messages.Send(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeCreated(w, message)
}

func (h *Handler) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	var req models.MarkReadRequest
	if !h.decode(w, r, &req) {
		return
	}

	marked := h.services.Messages.MarkConversationRead(r.Context(), &req)
	writeSuccess(w, map[string]int{"marked": marked})
}

func (h *Handler) GetUnreadSenders(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.services.Messages.UnreadSenders(r.Context()))
}

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type MessageService interface {
	Send(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error)
	Conversation(ctx context.Context, studentID string) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, req *models.MarkReadRequest) int
	UnreadSenders(ctx context.Context) []string
}

type messageService struct {
	coord  *coordinator.Coordinator
	now    func() time.Time
	logger zerolog.Logger
}

func NewMessageService(coord *coordinator.Coordinator, now func() time.Time, logger zerolog.Logger) MessageService {
	return &messageService{
		coord:  coord,
		now:    now,
		logger: logger.With().Str("component", "message_service").Logger(),
	}
}

func (s *messageService) Send(ctx context.Context, req *models.SendMessageRequest) (*models.Message, error) {
	var studentID string
	switch {
	case req.SenderID == models.AdminChannel && req.ReceiverID != models.AdminChannel:
		studentID = req.ReceiverID
	case req.ReceiverID == models.AdminChannel && req.SenderID != models.AdminChannel:
		studentID = req.SenderID
	default:
		return nil, ErrInvalidParticipant
	}
	if _, ok := s.coord.Store().Students.Get(studentID); !ok {
		return nil, ErrStudentNotFound
	}

	msg := models.Message{
		ID:         uuid.New().String(),
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Content:    strings.TrimSpace(req.Content),
		Timestamp:  models.Timestamp(s.now()),
	}

	s.coord.UpdateMessages(func(prev []models.Message) []models.Message {
		return append(prev, msg)
	})

	s.logger.Debug().
		Str("message_id", msg.ID).
		Str("sender_id", msg.SenderID).
		Str("receiver_id", msg.ReceiverID).
		Msg("Message sent")

	return &msg, nil
}

func (s *messageService) Conversation(ctx context.Context, studentID string) ([]models.Message, error) {
	if _, ok := s.coord.Store().Students.Get(studentID); !ok {
		return nil, ErrStudentNotFound
	}
	return s.coord.Store().Conversation(studentID), nil
}

// MarkConversationRead flags as read every message the reader received from
// the counterpart. Only the recipient side is touched.
func (s *messageService) MarkConversationRead(ctx context.Context, req *models.MarkReadRequest) int {
	marked := 0
	s.coord.UpdateMessages(func(prev []models.Message) []models.Message {
		for i := range prev {
			m := &prev[i]
			if m.ReceiverID == req.ReaderID && m.SenderID == req.CounterpartID && !m.IsRead {
				m.IsRead = true
				marked++
			}
		}
		return prev
	})
	return marked
}

// UnreadSenders lists the students with unread messages for staff.
func (s *messageService) UnreadSenders(ctx context.Context) []string {
	seen := make(map[string]bool)
	for _, m := range s.coord.Store().Messages.Snapshot() {
		if m.ReceiverID == models.AdminChannel && !m.IsRead {
			seen[m.SenderID] = true
		}
	}

	senders := make([]string, 0, len(seen))
	for id := range seen {
		senders = append(senders, id)
	}
	sort.Strings(senders)
	return senders
}

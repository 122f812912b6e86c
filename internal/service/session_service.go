package service

import (
	"context"
	"strings"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SessionService interface {
	GetAll(ctx context.Context) []models.Session
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetByClass(ctx context.Context, classID string) ([]models.Session, error)
	Create(ctx context.Context, req *models.SessionRequest) (*models.Session, error)
	Update(ctx context.Context, id string, req *models.SessionRequest) (*models.Session, error)
	VisibleTo(ctx context.Context, studentID string) ([]models.Session, error)
}

type sessionService struct {
	coord  *coordinator.Coordinator
	now    func() time.Time
	logger zerolog.Logger
}

func NewSessionService(coord *coordinator.Coordinator, now func() time.Time, logger zerolog.Logger) SessionService {
	return &sessionService{
		coord:  coord,
		now:    now,
		logger: logger.With().Str("component", "session_service").Logger(),
	}
}

func (s *sessionService) GetAll(ctx context.Context) []models.Session {
	return s.coord.Store().Sessions.Snapshot()
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*models.Session, error) {
	session, ok := s.coord.Store().Sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *sessionService) GetByClass(ctx context.Context, classID string) ([]models.Session, error) {
	if _, ok := s.coord.Store().Classes.Get(classID); !ok {
		return nil, ErrClassNotFound
	}
	return s.coord.Store().SessionsInClass(classID), nil
}

func buildSubjects(reqs []models.SubjectRequest) ([]models.Subject, error) {
	subjects := make([]models.Subject, 0, len(reqs))
	for _, r := range reqs {
		for _, q := range r.Quiz {
			if !q.Valid() {
				return nil, ErrInvalidQuiz
			}
		}
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		subjects = append(subjects, models.Subject{
			ID:            id,
			Name:          strings.TrimSpace(r.Name),
			Prerequisites: r.Prerequisites,
			Content:       r.Content,
			Quiz:          r.Quiz,
		})
	}
	return subjects, nil
}

// Create appends a session to the class, numbered after the existing ones.
// The availability date defaults to today.
func (s *sessionService) Create(ctx context.Context, req *models.SessionRequest) (*models.Session, error) {
	class, ok := s.coord.Store().Classes.Get(req.ClassID)
	if !ok {
		return nil, ErrClassNotFound
	}
	subjects, err := buildSubjects(req.Subjects)
	if err != nil {
		return nil, err
	}

	session := models.Session{
		ID:               uuid.New().String(),
		Club:             class.Club,
		ClassID:          class.ID,
		Subjects:         subjects,
		AvailabilityDate: req.AvailabilityDate,
	}
	if session.AvailabilityDate == "" {
		session.AvailabilityDate = models.Today(s.now())
	}

	s.coord.UpdateSessions(func(prev []models.Session) []models.Session {
		count := 0
		for _, existing := range prev {
			if existing.ClassID == class.ID {
				count++
			}
		}
		session.Number = count + 1
		return append(prev, session)
	})

	s.logger.Info().
		Str("session_id", session.ID).
		Str("class_id", session.ClassID).
		Int("number", session.Number).
		Msg("Session created")

	return &session, nil
}

// Update replaces the class, subjects and availability of a session. The club
// follows the class. The number never changes.
func (s *sessionService) Update(ctx context.Context, id string, req *models.SessionRequest) (*models.Session, error) {
	class, ok := s.coord.Store().Classes.Get(req.ClassID)
	if !ok {
		return nil, ErrClassNotFound
	}
	subjects, err := buildSubjects(req.Subjects)
	if err != nil {
		return nil, err
	}

	var (
		out   models.Session
		found bool
	)
	s.coord.UpdateSessions(func(prev []models.Session) []models.Session {
		existing, ok := findSession(prev, id)
		if !ok {
			return prev
		}
		found = true
		existing.ClassID = class.ID
		existing.Club = class.Club
		existing.Subjects = subjects
		if req.AvailabilityDate != "" {
			existing.AvailabilityDate = req.AvailabilityDate
		}
		out = existing
		return store.With(prev, existing, store.SessionKey)
	})

	if !found {
		return nil, ErrSessionNotFound
	}
	return &out, nil
}

func findSession(sessions []models.Session, id string) (models.Session, bool) {
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return models.Session{}, false
}

// VisibleTo returns the sessions of the student's class already available today.
func (s *sessionService) VisibleTo(ctx context.Context, studentID string) ([]models.Session, error) {
	student, ok := s.coord.Store().Students.Get(studentID)
	if !ok {
		return nil, ErrStudentNotFound
	}

	today := models.Today(s.now())
	var visible []models.Session
	for _, session := range s.coord.Store().SessionsInClass(student.ClassID) {
		if session.AvailableOn(today) {
			visible = append(visible, session)
		}
	}
	return visible, nil
}

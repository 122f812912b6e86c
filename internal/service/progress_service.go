package service

import (
	"context"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/progress"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/rs/zerolog"
)

type ProgressService interface {
	GetAll(ctx context.Context) []models.Progress
	GetForStudent(ctx context.Context, studentID string) ([]models.Progress, error)
	ToggleSubject(ctx context.Context, req *models.ToggleSubjectRequest) (*models.Progress, error)
	CompleteSubject(ctx context.Context, req *models.CompleteSubjectRequest) (*models.CompleteSubjectResponse, error)
}

type progressService struct {
	coord  *coordinator.Coordinator
	now    func() time.Time
	logger zerolog.Logger
}

func NewProgressService(coord *coordinator.Coordinator, now func() time.Time, logger zerolog.Logger) ProgressService {
	return &progressService{
		coord:  coord,
		now:    now,
		logger: logger.With().Str("component", "progress_service").Logger(),
	}
}

func (s *progressService) GetAll(ctx context.Context) []models.Progress {
	return s.coord.Store().Progress.Snapshot()
}

func (s *progressService) GetForStudent(ctx context.Context, studentID string) ([]models.Progress, error) {
	if _, ok := s.coord.Store().Students.Get(studentID); !ok {
		return nil, ErrStudentNotFound
	}
	return s.coord.Store().ProgressForStudent(studentID), nil
}

// lookup resolves the session and subject a progress change refers to.
func (s *progressService) lookup(studentID, sessionID, subjectID string) (models.Session, models.Subject, error) {
	st := s.coord.Store()
	if _, ok := st.Students.Get(studentID); !ok {
		return models.Session{}, models.Subject{}, ErrStudentNotFound
	}
	session, ok := st.Sessions.Get(sessionID)
	if !ok {
		return models.Session{}, models.Subject{}, ErrSessionNotFound
	}
	subject, ok := session.Subject(subjectID)
	if !ok {
		return models.Session{}, models.Subject{}, ErrSubjectNotFound
	}
	return session, subject, nil
}

// record applies calc to the stored progress of the pair, creating it when
// absent, and returns the committed record.
func (s *progressService) record(studentID, sessionID string, calc func(completed []string) progress.Result) models.Progress {
	key := models.ProgressKey{StudentID: studentID, SessionID: sessionID}

	var out models.Progress
	s.coord.UpdateProgress(func(prev []models.Progress) []models.Progress {
		p := models.Progress{StudentID: studentID, SessionID: sessionID}
		for _, existing := range prev {
			if existing.Key() == key {
				p = existing
				break
			}
		}
		out = progress.Apply(p, calc(p.CompletedSubjects))
		return store.With(prev, out, store.ProgressKey)
	})
	return out
}

func (s *progressService) ToggleSubject(ctx context.Context, req *models.ToggleSubjectRequest) (*models.Progress, error) {
	session, _, err := s.lookup(req.StudentID, req.SessionID, req.SubjectID)
	if err != nil {
		return nil, err
	}

	p := s.record(req.StudentID, req.SessionID, func(completed []string) progress.Result {
		return progress.Toggle(session.SubjectIDs(), completed, req.SubjectID, s.now())
	})

	s.logger.Debug().
		Str("student_id", req.StudentID).
		Str("session_id", req.SessionID).
		Str("subject_id", req.SubjectID).
		Int("score", p.Score).
		Msg("Subject toggled")

	return &p, nil
}

// CompleteSubject grades the quiz and marks the subject done when the
// score reaches the pass threshold. A subject without a quiz passes at 100.
func (s *progressService) CompleteSubject(ctx context.Context, req *models.CompleteSubjectRequest) (*models.CompleteSubjectResponse, error) {
	session, subject, err := s.lookup(req.StudentID, req.SessionID, req.SubjectID)
	if err != nil {
		return nil, err
	}

	score, passed := 100, true
	if len(subject.Quiz) > 0 {
		score, passed = progress.GradeQuiz(subject.Quiz, req.Answers)
	}

	resp := &models.CompleteSubjectResponse{Score: score, Passed: passed}
	if !passed {
		key := models.ProgressKey{StudentID: req.StudentID, SessionID: req.SessionID}
		if p, ok := s.coord.Store().Progress.Get(key); ok {
			resp.Progress = p
		} else {
			resp.Progress = models.Progress{StudentID: req.StudentID, SessionID: req.SessionID}
		}
		return resp, nil
	}

	resp.Progress = s.record(req.StudentID, req.SessionID, func(completed []string) progress.Result {
		return progress.Complete(session.SubjectIDs(), completed, req.SubjectID, s.now())
	})

	s.logger.Info().
		Str("student_id", req.StudentID).
		Str("session_id", req.SessionID).
		Str("subject_id", req.SubjectID).
		Int("quiz_score", score).
		Bool("session_completed", resp.Progress.Completed).
		Msg("Subject completed")

	return resp, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/RubachokBoss/clubtrack/internal/auth"
	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/rs/zerolog"
)

type AuthService interface {
	LoginStaff(ctx context.Context, req *models.StaffLoginRequest) (*models.ActiveSession, error)
	LoginStudent(ctx context.Context, req *models.StudentLoginRequest) (*models.ActiveSession, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (*models.ActiveSession, error)
}

type authService struct {
	coord    *coordinator.Coordinator
	verifier auth.Verifier
	sessions SessionCache
	logger   zerolog.Logger
}

func NewAuthService(coord *coordinator.Coordinator, verifier auth.Verifier, sessions SessionCache, logger zerolog.Logger) AuthService {
	return &authService{
		coord:    coord,
		verifier: verifier,
		sessions: sessions,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) LoginStaff(ctx context.Context, req *models.StaffLoginRequest) (*models.ActiveSession, error) {
	username := strings.TrimSpace(req.Username)
	for _, i := range s.coord.Store().Instructors.Snapshot() {
		if !strings.EqualFold(i.Username, username) {
			continue
		}
		if err := auth.CheckInstructor(s.verifier, i, req.Password); err != nil {
			break
		}
		return s.open(models.ActiveSession{Type: models.SessionStaff, ID: i.ID, Role: i.Role})
	}

	s.logger.Warn().Str("username", username).Msg("Staff login rejected")
	return nil, ErrInvalidCredentials
}

func (s *authService) LoginStudent(ctx context.Context, req *models.StudentLoginRequest) (*models.ActiveSession, error) {
	name := strings.TrimSpace(req.FullName)
	for _, st := range s.coord.Store().Students.Snapshot() {
		if !strings.EqualFold(strings.TrimSpace(st.FullName), name) {
			continue
		}
		// Homonyms: the first matching credential wins.
		if err := auth.CheckStudent(s.verifier, st, req.Password); err != nil {
			continue
		}
		return s.open(models.ActiveSession{Type: models.SessionStudent, ID: st.ID})
	}

	s.logger.Warn().Str("full_name", name).Msg("Student login rejected")
	return nil, ErrInvalidCredentials
}

func (s *authService) open(session models.ActiveSession) (*models.ActiveSession, error) {
	if err := s.sessions.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info().
		Str("type", string(session.Type)).
		Str("id", session.ID).
		Msg("Session opened")

	return &session, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if err := s.sessions.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *authService) Current(ctx context.Context) (*models.ActiveSession, error) {
	session, ok := s.sessions.LoadSession()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return session, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/RubachokBoss/clubtrack/internal/auth"
	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type InstructorService interface {
	GetAll(ctx context.Context) []models.Instructor
	Add(ctx context.Context, req *models.InstructorRequest) (*models.Instructor, error)
	Delete(ctx context.Context, id string) error
}

type instructorService struct {
	coord    *coordinator.Coordinator
	verifier auth.Verifier
	logger   zerolog.Logger
}

func NewInstructorService(coord *coordinator.Coordinator, verifier auth.Verifier, logger zerolog.Logger) InstructorService {
	return &instructorService{
		coord:    coord,
		verifier: verifier,
		logger:   logger.With().Str("component", "instructor_service").Logger(),
	}
}

func (s *instructorService) GetAll(ctx context.Context) []models.Instructor {
	return s.coord.Store().Instructors.Snapshot()
}

func (s *instructorService) Add(ctx context.Context, req *models.InstructorRequest) (*models.Instructor, error) {
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := s.verifier.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to add instructor: %w", err)
	}

	instructor := models.Instructor{
		ID:           uuid.New().String(),
		FullName:     strings.TrimSpace(req.FullName),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Role:         req.Role,
	}

	taken := false
	s.coord.UpdateInstructors(func(prev []models.Instructor) []models.Instructor {
		for _, i := range prev {
			if strings.EqualFold(i.Username, instructor.Username) {
				taken = true
				return prev
			}
		}
		return append(prev, instructor)
	})
	if taken {
		return nil, ErrUsernameTaken
	}

	s.logger.Info().
		Str("instructor_id", instructor.ID).
		Str("role", string(instructor.Role)).
		Msg("Instructor added")

	return &instructor, nil
}

// Delete removes a club instructor. ADMIN accounts are kept.
func (s *instructorService) Delete(ctx context.Context, id string) error {
	var err error
	s.coord.UpdateInstructors(func(prev []models.Instructor) []models.Instructor {
		for _, i := range prev {
			if i.ID != id {
				continue
			}
			if i.Role == models.RoleAdmin {
				err = ErrAdminDeletion
				return prev
			}
			return store.Without(prev, id, store.InstructorKey)
		}
		err = ErrInstructorNotFound
		return prev
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("instructor_id", id).Msg("Instructor deleted")
	return nil
}

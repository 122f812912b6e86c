package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/auth"
	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/RubachokBoss/clubtrack/pkg/utils"
	"github.com/rs/zerolog"
)

type StudentService interface {
	GetAll(ctx context.Context) []models.Student
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByClass(ctx context.Context, classID string) ([]models.Student, error)
	Enroll(ctx context.Context, req *models.StudentRequest) (*models.Student, error)
	Update(ctx context.Context, id string, req *models.StudentRequest) (*models.Student, error)
	ResetPassword(ctx context.Context, id string) (*models.Student, error)
	ChangePassword(ctx context.Context, id string, req *models.ChangePasswordRequest) error
}

type studentService struct {
	coord    *coordinator.Coordinator
	verifier auth.Verifier
	now      func() time.Time
	logger   zerolog.Logger
}

func NewStudentService(coord *coordinator.Coordinator, verifier auth.Verifier, now func() time.Time, logger zerolog.Logger) StudentService {
	return &studentService{
		coord:    coord,
		verifier: verifier,
		now:      now,
		logger:   logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) GetAll(ctx context.Context) []models.Student {
	return s.coord.Store().Students.Snapshot()
}

func (s *studentService) GetByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := s.coord.Store().Students.Get(id)
	if !ok {
		return nil, ErrStudentNotFound
	}
	return &student, nil
}

func (s *studentService) GetByClass(ctx context.Context, classID string) ([]models.Student, error) {
	if _, ok := s.coord.Store().Classes.Get(classID); !ok {
		return nil, ErrClassNotFound
	}
	return s.coord.Store().StudentsInClass(classID), nil
}

func (s *studentService) apply(student *models.Student, req *models.StudentRequest) {
	student.FullName = strings.TrimSpace(req.FullName)
	student.BirthDate = req.BirthDate
	student.Age = models.AgeFromBirthDate(req.BirthDate, s.now())
	student.ClassID = req.ClassID
	student.Photo = req.Photo
	student.Address = req.Address
	student.FatherName = req.FatherName
	student.MotherName = req.MotherName
	student.Diseases = req.Diseases
	student.Allergies = req.Allergies
	student.Medications = req.Medications
	student.EmergencyContacts = req.EmergencyContacts
}

func (s *studentService) Enroll(ctx context.Context, req *models.StudentRequest) (*models.Student, error) {
	if _, ok := s.coord.Store().Classes.Get(req.ClassID); !ok {
		return nil, ErrClassNotFound
	}

	code, err := utils.TemporaryPassword()
	if err != nil {
		return nil, err
	}

	student := models.Student{
		ID:                utils.GenerateUUID(),
		TemporaryPassword: code,
	}
	s.apply(&student, req)

	s.coord.UpdateStudents(func(prev []models.Student) []models.Student {
		return append(prev, student)
	})

	s.logger.Info().
		Str("student_id", student.ID).
		Str("class_id", student.ClassID).
		Msg("Student enrolled")

	return &student, nil
}

// modify runs fn on the stored student inside one store update.
func (s *studentService) modify(id string, fn func(*models.Student) error) (*models.Student, error) {
	var (
		out   models.Student
		found bool
		fnErr error
	)
	s.coord.UpdateStudents(func(prev []models.Student) []models.Student {
		for i := range prev {
			if prev[i].ID != id {
				continue
			}
			found = true
			next := prev[i]
			if fnErr = fn(&next); fnErr != nil {
				return prev
			}
			out = next
			return store.With(prev, next, store.StudentKey)
		}
		return prev
	})

	if !found {
		return nil, ErrStudentNotFound
	}
	if fnErr != nil {
		return nil, fnErr
	}
	return &out, nil
}

func (s *studentService) Update(ctx context.Context, id string, req *models.StudentRequest) (*models.Student, error) {
	if _, ok := s.coord.Store().Classes.Get(req.ClassID); !ok {
		return nil, ErrClassNotFound
	}
	return s.modify(id, func(student *models.Student) error {
		s.apply(student, req)
		return nil
	})
}

// ResetPassword issues a new temporary code and drops the permanent password.
func (s *studentService) ResetPassword(ctx context.Context, id string) (*models.Student, error) {
	code, err := utils.TemporaryPassword()
	if err != nil {
		return nil, err
	}

	student, err := s.modify(id, func(student *models.Student) error {
		student.TemporaryPassword = code
		student.PasswordHash = ""
		student.PasswordChanged = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("student_id", id).Msg("Student password reset")
	return student, nil
}

// ChangePassword replaces the current credential with a permanent password.
func (s *studentService) ChangePassword(ctx context.Context, id string, req *models.ChangePasswordRequest) error {
	hash, err := s.verifier.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	_, err = s.modify(id, func(student *models.Student) error {
		if err := auth.CheckStudent(s.verifier, *student, req.CurrentPassword); err != nil {
			return err
		}
		student.PasswordHash = hash
		student.TemporaryPassword = ""
		student.PasswordChanged = true
		return nil
	})
	return err
}

package service

import (
	"errors"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/assets"
	"github.com/RubachokBoss/clubtrack/internal/auth"
	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/service/integration"
	"github.com/rs/zerolog"
)

var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrAdminDeletion      = errors.New("admin accounts cannot be deleted")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidIcon        = errors.New("invalid icon")
	ErrInvalidClub        = errors.New("invalid club")
	ErrInvalidRole        = errors.New("invalid instructor role")
	ErrInvalidQuiz        = errors.New("quiz questions need four options and a valid answer")
	ErrInvalidParticipant = errors.New("messages go between a student and the admin channel")
	ErrNotLoggedIn        = errors.New("no active session")
	ErrInvalidCredentials = auth.ErrInvalidCredentials
)

// SessionCache persists the identity logged in on this device.
type SessionCache interface {
	SaveSession(s models.ActiveSession) error
	LoadSession() (*models.ActiveSession, bool)
	ClearSession() error
}

type Deps struct {
	Coordinator  *coordinator.Coordinator
	Verifier     auth.Verifier
	Sessions     SessionCache
	Images       assets.ImageStore
	Generator    integration.ContentGenerator
	DefaultLogos []models.ClubLogo
	Clock        func() time.Time
	Logger       zerolog.Logger
}

type Services struct {
	Progress    ProgressService
	Messages    MessageService
	Students    StudentService
	Sessions    SessionService
	Classes     ClassService
	Instructors InstructorService
	Club        ClubService
	Auth        AuthService
	Content     integration.ContentGenerator
}

func NewServices(d Deps) *Services {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Images == nil {
		d.Images = assets.NewPassthroughStore()
	}

	return &Services{
		Progress:    NewProgressService(d.Coordinator, d.Clock, d.Logger),
		Messages:    NewMessageService(d.Coordinator, d.Clock, d.Logger),
		Students:    NewStudentService(d.Coordinator, d.Verifier, d.Clock, d.Logger),
		Sessions:    NewSessionService(d.Coordinator, d.Clock, d.Logger),
		Classes:     NewClassService(d.Coordinator, d.Images, d.Logger),
		Instructors: NewInstructorService(d.Coordinator, d.Verifier, d.Logger),
		Club:        NewClubService(d.Coordinator, d.Images, d.DefaultLogos, d.Logger),
		Auth:        NewAuthService(d.Coordinator, d.Verifier, d.Sessions, d.Logger),
		Content:     d.Generator,
	}
}

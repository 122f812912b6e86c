package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/RubachokBoss/clubtrack/internal/assets"
	"github.com/RubachokBoss/clubtrack/internal/coordinator"
	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/RubachokBoss/clubtrack/internal/store"
	"github.com/rs/zerolog"
)

type ClassService interface {
	GetAll(ctx context.Context) []models.ClassLevel
	GetByClub(ctx context.Context, club models.Club) ([]models.ClassLevel, error)
	SetIcon(ctx context.Context, classID string, req *models.ClassIconRequest) ([]models.ClassLevel, error)
}

type classService struct {
	coord  *coordinator.Coordinator
	images assets.ImageStore
	logger zerolog.Logger
}

func NewClassService(coord *coordinator.Coordinator, images assets.ImageStore, logger zerolog.Logger) ClassService {
	return &classService{
		coord:  coord,
		images: images,
		logger: logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) GetAll(ctx context.Context) []models.ClassLevel {
	return s.coord.Store().Classes.Snapshot()
}

func (s *classService) GetByClub(ctx context.Context, club models.Club) ([]models.ClassLevel, error) {
	if !club.Valid() {
		return nil, ErrInvalidClub
	}
	return s.coord.Store().ClassesInClub(club), nil
}

// normalizeIcon classifies untagged icons and moves inline images to the
// image store.
func (s *classService) normalizeIcon(ctx context.Context, icon models.Icon) (models.Icon, error) {
	if icon.Kind == "" {
		icon = models.ParseLegacyIcon(icon.Value)
	}
	icon.Value = strings.TrimSpace(icon.Value)
	if !icon.Valid() {
		return models.Icon{}, ErrInvalidIcon
	}
	if !icon.IsImage() {
		return icon, nil
	}

	ref, err := s.images.Resolve(ctx, "icons", icon.Value)
	if err != nil {
		return models.Icon{}, fmt.Errorf("%w: %v", ErrInvalidIcon, err)
	}
	return models.ImageIcon(ref), nil
}

// SetIcon changes the icon of one class, or of every class of its club when
// ApplyToAll is set. It returns the classes that now carry the icon.
func (s *classService) SetIcon(ctx context.Context, classID string, req *models.ClassIconRequest) ([]models.ClassLevel, error) {
	class, ok := s.coord.Store().Classes.Get(classID)
	if !ok {
		return nil, ErrClassNotFound
	}

	icon, err := s.normalizeIcon(ctx, req.Icon)
	if err != nil {
		return nil, err
	}

	if req.ApplyToAll {
		s.coord.UpdateClubIcons(class.Club, icon)
		s.logger.Info().
			Str("club", string(class.Club)).
			Str("icon_kind", string(icon.Kind)).
			Msg("Club icons updated")
		return s.coord.Store().ClassesInClub(class.Club), nil
	}

	class.Icon = icon
	s.coord.UpdateClasses(func(prev []models.ClassLevel) []models.ClassLevel {
		return store.With(prev, class, store.ClassKey)
	})
	return []models.ClassLevel{class}, nil
}

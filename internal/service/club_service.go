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

type ClubService interface {
	Logos(ctx context.Context) map[models.Club]string
	SetLogo(ctx context.Context, club models.Club, logo string) (map[models.Club]string, error)
	ResetLogos(ctx context.Context) map[models.Club]string
}

type clubService struct {
	coord    *coordinator.Coordinator
	images   assets.ImageStore
	defaults []models.ClubLogo
	logger   zerolog.Logger
}

func NewClubService(coord *coordinator.Coordinator, images assets.ImageStore, defaults []models.ClubLogo, logger zerolog.Logger) ClubService {
	return &clubService{
		coord:    coord,
		images:   images,
		defaults: defaults,
		logger:   logger.With().Str("component", "club_service").Logger(),
	}
}

func (s *clubService) Logos(ctx context.Context) map[models.Club]string {
	return s.coord.Store().Logos()
}

func (s *clubService) SetLogo(ctx context.Context, club models.Club, logo string) (map[models.Club]string, error) {
	if !club.Valid() {
		return nil, ErrInvalidClub
	}

	ref, err := s.images.Resolve(ctx, "logos", strings.TrimSpace(logo))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIcon, err)
	}

	s.coord.UpdateClubLogos(func(prev []models.ClubLogo) []models.ClubLogo {
		return store.With(prev, models.ClubLogo{Club: club, Logo: ref}, store.ClubLogoKey)
	})

	s.logger.Info().Str("club", string(club)).Msg("Club logo updated")
	return s.coord.Store().Logos(), nil
}

func (s *clubService) ResetLogos(ctx context.Context) map[models.Club]string {
	s.coord.UpdateClubLogos(func(prev []models.ClubLogo) []models.ClubLogo {
		next := prev
		for _, l := range s.defaults {
			next = store.With(next, l, store.ClubLogoKey)
		}
		return next
	})
	return s.coord.Store().Logos()
}

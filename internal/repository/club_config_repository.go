package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/rs/zerolog"
)

type ClubConfigRepository interface {
	GetAll(ctx context.Context) ([]models.ClubLogo, error)
	GetByID(ctx context.Context, club models.Club) (*models.ClubLogo, error)
	Upsert(ctx context.Context, logo models.ClubLogo) (bool, error)
}

type clubConfigRepository struct {
	*PostgresRepository
}

func NewClubConfigRepository(db *sql.DB, logger zerolog.Logger) ClubConfigRepository {
	return &clubConfigRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *clubConfigRepository) GetAll(ctx context.Context) ([]models.ClubLogo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, logo FROM club_config ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get club config: %w", err)
	}
	defer rows.Close()

	var logos []models.ClubLogo
	for rows.Next() {
		var l models.ClubLogo
		if err := rows.Scan(&l.Club, &l.Logo); err != nil {
			return nil, fmt.Errorf("failed to scan club config: %w", err)
		}
		logos = append(logos, l)
	}

	return logos, rows.Err()
}

func (r *clubConfigRepository) GetByID(ctx context.Context, club models.Club) (*models.ClubLogo, error) {
	var l models.ClubLogo
	err := r.db.QueryRowContext(ctx, `SELECT id, logo FROM club_config WHERE id = $1`, club).Scan(&l.Club, &l.Logo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get club config %s: %w", club, err)
	}

	return &l, nil
}

func (r *clubConfigRepository) Upsert(ctx context.Context, l models.ClubLogo) (bool, error) {
	query := `
		INSERT INTO club_config (id, logo, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET logo = EXCLUDED.logo, updated_at = NOW()
		RETURNING (xmax = 0)
	`

	var inserted bool
	if err := r.db.QueryRowContext(ctx, query, l.Club, l.Logo).Scan(&inserted); err != nil {
		return false, fmt.Errorf("failed to upsert club config %s: %w", l.Club, err)
	}

	return inserted, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/rs/zerolog"
)

type SessionRepository interface {
	GetAll(ctx context.Context) ([]models.Session, error)
	Upsert(ctx context.Context, session models.Session) (bool, error)
}

type sessionRepository struct {
	*PostgresRepository
}

func NewSessionRepository(db *sql.DB, logger zerolog.Logger) SessionRepository {
	return &sessionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *sessionRepository) GetAll(ctx context.Context) ([]models.Session, error) {
	query := `
		SELECT id, club, class_id, number, subjects, availability_date
		FROM sessions
		ORDER BY class_id, number
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var subjects []byte
		if err := rows.Scan(&s.ID, &s.Club, &s.ClassID, &s.Number, &subjects, &s.AvailabilityDate); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if len(subjects) > 0 {
			if err := json.Unmarshal(subjects, &s.Subjects); err != nil {
				return nil, fmt.Errorf("failed to decode subjects of session %s: %w", s.ID, err)
			}
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func (r *sessionRepository) Upsert(ctx context.Context, s models.Session) (bool, error) {
	subjects := []byte("[]")
	if len(s.Subjects) > 0 {
		var err error
		subjects, err = json.Marshal(s.Subjects)
		if err != nil {
			return false, fmt.Errorf("failed to encode subjects: %w", err)
		}
	}

	query := `
		INSERT INTO sessions (id, club, class_id, number, subjects, availability_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			club = EXCLUDED.club,
			class_id = EXCLUDED.class_id,
			number = EXCLUDED.number,
			subjects = EXCLUDED.subjects,
			availability_date = EXCLUDED.availability_date,
			updated_at = NOW()
		RETURNING (xmax = 0)
	`

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		s.ID,
		s.Club,
		s.ClassID,
		s.Number,
		subjects,
		s.AvailabilityDate,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert session %s: %w", s.ID, err)
	}

	return inserted, nil
}

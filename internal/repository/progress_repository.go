package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

type ProgressRepository interface {
	GetAll(ctx context.Context) ([]models.Progress, error)
	GetByKey(ctx context.Context, key models.ProgressKey) (*models.Progress, error)
	Upsert(ctx context.Context, progress models.Progress) (bool, error)
}

type progressRepository struct {
	*PostgresRepository
}

func NewProgressRepository(db *sql.DB, logger zerolog.Logger) ProgressRepository {
	return &progressRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const progressColumns = `student_id, session_id, score, completed, completed_subjects, completion_date`

func scanProgress(row scanner) (models.Progress, error) {
	var p models.Progress
	var completionDate sql.NullTime

	err := row.Scan(
		&p.StudentID,
		&p.SessionID,
		&p.Score,
		&p.Completed,
		pq.Array(&p.CompletedSubjects),
		&completionDate,
	)
	if err != nil {
		return p, err
	}
	if completionDate.Valid {
		p.CompletionDate = models.Timestamp(completionDate.Time)
	}

	return p, nil
}

func (r *progressRepository) GetAll(ctx context.Context) ([]models.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM progress ORDER BY student_id, session_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	defer rows.Close()

	var records []models.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

func (r *progressRepository) GetByKey(ctx context.Context, key models.ProgressKey) (*models.Progress, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE student_id = $1 AND session_id = $2`

	p, err := scanProgress(r.db.QueryRowContext(ctx, query, key.StudentID, key.SessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress %s/%s: %w", key.StudentID, key.SessionID, err)
	}

	return &p, nil
}

func (r *progressRepository) Upsert(ctx context.Context, p models.Progress) (bool, error) {
	query := `
		INSERT INTO progress (
			student_id, session_id, score, completed, completed_subjects, completion_date, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (student_id, session_id) DO UPDATE SET
			score = EXCLUDED.score,
			completed = EXCLUDED.completed,
			completed_subjects = EXCLUDED.completed_subjects,
			completion_date = EXCLUDED.completion_date,
			updated_at = NOW()
		RETURNING (xmax = 0)
	`

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		p.StudentID,
		p.SessionID,
		p.Score,
		p.Completed,
		pq.Array(nonNil(p.CompletedSubjects)),
		nullTime(p.CompletionDate),
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert progress %s/%s: %w", p.StudentID, p.SessionID, err)
	}

	return inserted, nil
}

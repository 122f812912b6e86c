package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/rs/zerolog"
)

type InstructorRepository interface {
	GetAll(ctx context.Context) ([]models.Instructor, error)
	Sync(ctx context.Context, instructors []models.Instructor) error
	Delete(ctx context.Context, id string) error
}

type instructorRepository struct {
	*PostgresRepository
}

func NewInstructorRepository(db *sql.DB, logger zerolog.Logger) InstructorRepository {
	return &instructorRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *instructorRepository) GetAll(ctx context.Context) ([]models.Instructor, error) {
	query := `
		SELECT id, full_name, username, password_hash, role
		FROM instructors
		ORDER BY role, full_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get instructors: %w", err)
	}
	defer rows.Close()

	var instructors []models.Instructor
	for rows.Next() {
		var i models.Instructor
		if err := rows.Scan(&i.ID, &i.FullName, &i.Username, &i.PasswordHash, &i.Role); err != nil {
			return nil, fmt.Errorf("failed to scan instructor: %w", err)
		}
		instructors = append(instructors, i)
	}

	return instructors, rows.Err()
}

// Sync upserts every instructor of the list. Rows missing from the list are
// left alone: other devices may have added them. Removal goes through Delete.
func (r *instructorRepository) Sync(ctx context.Context, instructors []models.Instructor) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO instructors (id, full_name, username, password_hash, role, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			updated_at = NOW()
	`

	for _, i := range instructors {
		if _, err := tx.ExecContext(ctx, upsert, i.ID, i.FullName, i.Username, i.PasswordHash, i.Role); err != nil {
			return fmt.Errorf("failed to upsert instructor %s: %w", i.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit instructors: %w", err)
	}

	r.logger.Debug().
		Int("synced", len(instructors)).
		Msg("Instructors synced")

	return nil
}

func (r *instructorRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM instructors WHERE id = $1 AND role <> $2`

	result, err := r.db.ExecContext(ctx, query, id, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to delete instructor: %w", err)
	}

	removed, _ := result.RowsAffected()
	r.logger.Debug().
		Str("instructor_id", id).
		Int64("removed", removed).
		Msg("Instructor deleted")

	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/rs/zerolog"
)

type ClassRepository interface {
	GetAll(ctx context.Context) ([]models.ClassLevel, error)
	Upsert(ctx context.Context, class models.ClassLevel) (bool, error)
	UpdateIconByClub(ctx context.Context, club models.Club, icon models.Icon) (int64, error)
	Probe(ctx context.Context) error
}

type classRepository struct {
	*PostgresRepository
}

func NewClassRepository(db *sql.DB, logger zerolog.Logger) ClassRepository {
	return &classRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *classRepository) GetAll(ctx context.Context) ([]models.ClassLevel, error) {
	query := `
		SELECT id, name, age, club, icon_kind, icon
		FROM classes
		ORDER BY club, age, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get classes: %w", err)
	}
	defer rows.Close()

	var classes []models.ClassLevel
	for rows.Next() {
		var c models.ClassLevel
		var kind string
		if err := rows.Scan(&c.ID, &c.Name, &c.Age, &c.Club, &kind, &c.Icon.Value); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		c.Icon.Kind = models.IconKind(kind)
		if c.Icon.Kind == "" {
			c.Icon = models.ParseLegacyIcon(c.Icon.Value)
		}
		classes = append(classes, c)
	}

	return classes, rows.Err()
}

func (r *classRepository) Upsert(ctx context.Context, class models.ClassLevel) (bool, error) {
	query := `
		INSERT INTO classes (id, name, age, club, icon_kind, icon, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			club = EXCLUDED.club,
			icon_kind = EXCLUDED.icon_kind,
			icon = EXCLUDED.icon,
			updated_at = NOW()
		RETURNING (xmax = 0)
	`

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		class.ID,
		class.Name,
		class.Age,
		class.Club,
		class.Icon.Kind,
		class.Icon.Value,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert class %s: %w", class.ID, err)
	}

	return inserted, nil
}

func (r *classRepository) UpdateIconByClub(ctx context.Context, club models.Club, icon models.Icon) (int64, error) {
	query := `UPDATE classes SET icon_kind = $1, icon = $2, updated_at = NOW() WHERE club = $3`

	result, err := r.db.ExecContext(ctx, query, icon.Kind, icon.Value, club)
	if err != nil {
		return 0, fmt.Errorf("failed to update icons of club %s: %w", club, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Debug().
		Str("club", string(club)).
		Int64("updated", affected).
		Msg("Class icons updated")

	return affected, nil
}

// Probe checks that the backend answers a trivial query on the classes table.
func (r *classRepository) Probe(ctx context.Context) error {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM classes LIMIT 1`).Scan(&id)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("probe failed: %w", err)
	}
	return nil
}

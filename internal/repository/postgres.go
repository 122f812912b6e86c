package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

type PostgresRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPostgresRepository(db *sql.DB, logger zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Repositories groups the table repositories of one backend connection.
type Repositories struct {
	Classes     ClassRepository
	Instructors InstructorRepository
	Students    StudentRepository
	Sessions    SessionRepository
	Progress    ProgressRepository
	Messages    MessageRepository
	ClubConfig  ClubConfigRepository
}

func NewRepositories(db *sql.DB, logger zerolog.Logger) *Repositories {
	return &Repositories{
		Classes:     NewClassRepository(db, logger),
		Instructors: NewInstructorRepository(db, logger),
		Students:    NewStudentRepository(db, logger),
		Sessions:    NewSessionRepository(db, logger),
		Progress:    NewProgressRepository(db, logger),
		Messages:    NewMessageRepository(db, logger),
		ClubConfig:  NewClubConfigRepository(db, logger),
	}
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

type StudentRepository interface {
	GetAll(ctx context.Context) ([]models.Student, error)
	GetByID(ctx context.Context, id string) (*models.Student, error)
	Upsert(ctx context.Context, student models.Student) (bool, error)
}

type studentRepository struct {
	*PostgresRepository
}

func NewStudentRepository(db *sql.DB, logger zerolog.Logger) StudentRepository {
	return &studentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const studentColumns = `
	id, full_name, birth_date, age, class_id, photo, address, father_name, mother_name,
	diseases, allergies, medications, emergency_contacts,
	password_hash, temporary_password, password_changed
`

func scanStudent(row scanner) (models.Student, error) {
	var s models.Student
	var contacts []byte

	err := row.Scan(
		&s.ID,
		&s.FullName,
		&s.BirthDate,
		&s.Age,
		&s.ClassID,
		&s.Photo,
		&s.Address,
		&s.FatherName,
		&s.MotherName,
		pq.Array(&s.Diseases),
		pq.Array(&s.Allergies),
		pq.Array(&s.Medications),
		&contacts,
		&s.PasswordHash,
		&s.TemporaryPassword,
		&s.PasswordChanged,
	)
	if err != nil {
		return s, err
	}

	if len(contacts) > 0 {
		if err := json.Unmarshal(contacts, &s.EmergencyContacts); err != nil {
			return s, fmt.Errorf("failed to decode emergency contacts: %w", err)
		}
	}

	return s, nil
}

func (r *studentRepository) GetAll(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY full_name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	s, err := scanStudent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student %s: %w", id, err)
	}

	return &s, nil
}

func (r *studentRepository) Upsert(ctx context.Context, s models.Student) (bool, error) {
	contacts, err := json.Marshal(s.EmergencyContacts)
	if err != nil {
		return false, fmt.Errorf("failed to encode emergency contacts: %w", err)
	}
	if s.EmergencyContacts == nil {
		contacts = []byte("[]")
	}

	query := `
		INSERT INTO students (
			id, full_name, birth_date, age, class_id, photo, address, father_name, mother_name,
			diseases, allergies, medications, emergency_contacts,
			password_hash, temporary_password, password_changed, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			birth_date = EXCLUDED.birth_date,
			age = EXCLUDED.age,
			class_id = EXCLUDED.class_id,
			photo = EXCLUDED.photo,
			address = EXCLUDED.address,
			father_name = EXCLUDED.father_name,
			mother_name = EXCLUDED.mother_name,
			diseases = EXCLUDED.diseases,
			allergies = EXCLUDED.allergies,
			medications = EXCLUDED.medications,
			emergency_contacts = EXCLUDED.emergency_contacts,
			password_hash = EXCLUDED.password_hash,
			temporary_password = EXCLUDED.temporary_password,
			password_changed = EXCLUDED.password_changed,
			updated_at = NOW()
		RETURNING (xmax = 0)
	`

	var inserted bool
	err = r.db.QueryRowContext(ctx, query,
		s.ID,
		s.FullName,
		s.BirthDate,
		s.Age,
		s.ClassID,
		s.Photo,
		s.Address,
		s.FatherName,
		s.MotherName,
		pq.Array(nonNil(s.Diseases)),
		pq.Array(nonNil(s.Allergies)),
		pq.Array(nonNil(s.Medications)),
		contacts,
		s.PasswordHash,
		s.TemporaryPassword,
		s.PasswordChanged,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert student %s: %w", s.ID, err)
	}

	return inserted, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/rs/zerolog"
)

type MessageRepository interface {
	GetAll(ctx context.Context) ([]models.Message, error)
	GetByID(ctx context.Context, id string) (*models.Message, error)
	Insert(ctx context.Context, message models.Message) error
	MarkAsRead(ctx context.Context, id string) (*models.Message, error)
}

type messageRepository struct {
	*PostgresRepository
}

func NewMessageRepository(db *sql.DB, logger zerolog.Logger) MessageRepository {
	return &messageRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const messageColumns = `id, sender_id, receiver_id, content, timestamp, is_read`

func scanMessage(row scanner) (models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Timestamp, &m.IsRead)
	m.Timestamp = models.Timestamp(m.Timestamp)
	return m, err
}

func (r *messageRepository) GetAll(ctx context.Context) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY timestamp, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	return &m, nil
}

// Insert stores a new message. Re-sending an existing id is ignored.
func (r *messageRepository) Insert(ctx context.Context, m models.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, timestamp, is_read)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.SenderID,
		m.ReceiverID,
		m.Content,
		m.Timestamp,
		m.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message %s: %w", m.ID, err)
	}

	return nil
}

func (r *messageRepository) MarkAsRead(ctx context.Context, id string) (*models.Message, error) {
	query := `UPDATE messages SET is_read = TRUE WHERE id = $1 RETURNING ` + messageColumns

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark message %s as read: %w", id, err)
	}

	return &m, nil
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"convohub/internal/domain/entity"
	"convohub/internal/domain/repository"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(m *entity.Message) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, recipient_id, text, image_url)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		RETURNING id, created_at
	`, m.SenderID, m.RecipientID, m.Text, m.ImageURL)

	return row.Scan(&m.ID, &m.CreatedAt)
}

func (r *MessageRepository) ListBetween(userA, userB string) ([]*entity.Message, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, recipient_id, COALESCE(text, ''), COALESCE(image_url, ''), created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at ASC
	`, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]*entity.Message, 0)
	for rows.Next() {
		m := &entity.Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Text, &m.ImageURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

var _ repository.MessageRepository = (*MessageRepository)(nil)

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/planner/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, room, sender_id, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Room, m.SenderID, m.Content, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("messageRepo.Create: %w", mapWriteErr(err))
	}

	return nil
}

// ListByRoom returns the most recent limit messages of room, oldest first.
func (r *MessageRepo) ListByRoom(ctx context.Context, room string, limit int) ([]*domain.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, room, sender_id, sender_name, content, created_at FROM (
		     SELECT m.id, m.room, m.sender_id, COALESCE(u.username, '') AS sender_name, m.content, m.created_at
		     FROM messages m LEFT JOIN users u ON u.id = m.sender_id
		     WHERE m.room = $1
		     ORDER BY m.created_at DESC
		     LIMIT $2
		 ) recent ORDER BY created_at`,
		room, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("messageRepo.ListByRoom: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Room, &m.SenderID, &m.SenderName, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("messageRepo.ListByRoom: scan: %w", err)
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messageRepo.ListByRoom: rows: %w", err)
	}

	return msgs, nil
}

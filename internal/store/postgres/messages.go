package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"portfolioserver/internal/domain"
)

type MessagesStore struct {
	db DB
}

func NewMessagesStore(db DB) *MessagesStore {
	return &MessagesStore{db: db}
}

func (s *MessagesStore) CreateMessage(ctx context.Context, m domain.Message) (domain.Message, error) {
	const q = `
		INSERT INTO messages (sender_name, subject, message, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id pgtype.UUID
	if err := s.db.QueryRow(ctx, q, m.SenderName, m.Subject, m.Message, m.CreatedAt).Scan(&id); err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}
	m.ID = uuidOrEmpty(id)
	return m, nil
}

func (s *MessagesStore) ListMessages(ctx context.Context) ([]domain.Message, error) {
	const q = `
		SELECT id, sender_name, subject, message, created_at
		FROM messages
		ORDER BY created_at DESC, id
	`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		var (
			m  domain.Message
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &m.SenderName, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ID = uuidOrEmpty(id)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

func (s *MessagesStore) DeleteMessage(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "messages", id)
}

// deleteByID reports ErrNotFound when no row matched.
func deleteByID(ctx context.Context, db DB, table, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"portfolioserver/internal/domain"
)

type TimelineStore struct {
	db DB
}

func NewTimelineStore(db DB) *TimelineStore {
	return &TimelineStore{db: db}
}

func (s *TimelineStore) CreateTimelineEntry(ctx context.Context, e domain.TimelineEntry) (domain.TimelineEntry, error) {
	const q = `
		INSERT INTO timeline_entries (title, description, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id pgtype.UUID
	if err := s.db.QueryRow(ctx, q, e.Title, e.Description, e.From, e.To, e.CreatedAt).Scan(&id); err != nil {
		return domain.TimelineEntry{}, fmt.Errorf("create timeline entry: %w", err)
	}
	e.ID = uuidOrEmpty(id)
	return e, nil
}

func (s *TimelineStore) DeleteTimelineEntry(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "timeline_entries", id)
}

func (s *TimelineStore) ListTimelineEntries(ctx context.Context) ([]domain.TimelineEntry, error) {
	const q = `
		SELECT id, title, description, starts_at, ends_at, created_at
		FROM timeline_entries
		ORDER BY starts_at, id
	`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list timeline entries: %w", err)
	}
	defer rows.Close()

	out := []domain.TimelineEntry{}
	for rows.Next() {
		var (
			e    domain.TimelineEntry
			id   pgtype.UUID
			ends pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &e.Title, &e.Description, &e.From, &ends, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		e.ID = uuidOrEmpty(id)
		e.To = timestamptzPtr(ends)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list timeline entries: %w", err)
	}
	return out, nil
}

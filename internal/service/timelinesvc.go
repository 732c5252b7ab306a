package service

import (
	"context"
	"strings"
	"time"

	"portfolioserver/internal/domain"
	"portfolioserver/internal/validation"
)

type TimelineStore interface {
	CreateTimelineEntry(ctx context.Context, e domain.TimelineEntry) (domain.TimelineEntry, error)
	DeleteTimelineEntry(ctx context.Context, id string) error
	ListTimelineEntries(ctx context.Context) ([]domain.TimelineEntry, error)
}

type TimelineInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	From        string `json:"from" validate:"required"`
	To          string `json:"to"`
}

type TimelineService struct {
	Store TimelineStore
	Now   func() time.Time
}

func (s *TimelineService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *TimelineService) Add(ctx context.Context, in TimelineInput) (domain.TimelineEntry, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return domain.TimelineEntry{}, err
	}

	from, err := parseDate(in.From)
	if err != nil {
		return domain.TimelineEntry{}, domain.NewValidationError(map[string]string{"from": "must be a date (YYYY-MM-DD or RFC 3339)"})
	}
	entry := domain.TimelineEntry{
		Title:       in.Title,
		Description: in.Description,
		From:        from,
		CreatedAt:   s.now().UTC(),
	}
	if strings.TrimSpace(in.To) != "" {
		to, err := parseDate(in.To)
		if err != nil {
			return domain.TimelineEntry{}, domain.NewValidationError(map[string]string{"to": "must be a date (YYYY-MM-DD or RFC 3339)"})
		}
		if to.Before(from) {
			return domain.TimelineEntry{}, domain.NewValidationError(map[string]string{"to": "must not be before from"})
		}
		entry.To = &to
	}
	return s.Store.CreateTimelineEntry(ctx, entry)
}

func (s *TimelineService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteTimelineEntry(ctx, id)
}

func (s *TimelineService) List(ctx context.Context) ([]domain.TimelineEntry, error) {
	return s.Store.ListTimelineEntries(ctx)
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

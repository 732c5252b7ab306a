package service

import (
	"context"
	"strings"
	"time"

	"portfolioserver/internal/domain"
	"portfolioserver/internal/validation"
)

type MessagesStore interface {
	CreateMessage(ctx context.Context, m domain.Message) (domain.Message, error)
	ListMessages(ctx context.Context) ([]domain.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

type MessageInput struct {
	SenderName string `json:"senderName" validate:"required,min=2,max=50"`
	Subject    string `json:"subject" validate:"required,min=2,max=100"`
	Message    string `json:"message" validate:"required,min=2,max=500"`
}

type MessageService struct {
	Store MessagesStore
	Now   func() time.Time
}

func (s *MessageService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *MessageService) Send(ctx context.Context, in MessageInput) (domain.Message, error) {
	in.SenderName = strings.TrimSpace(in.SenderName)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return domain.Message{}, err
	}
	return s.Store.CreateMessage(ctx, domain.Message{
		SenderName: in.SenderName,
		Subject:    in.Subject,
		Message:    in.Message,
		CreatedAt:  s.now().UTC(),
	})
}

// List returns messages newest first.
func (s *MessageService) List(ctx context.Context) ([]domain.Message, error) {
	return s.Store.ListMessages(ctx)
}

func (s *MessageService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteMessage(ctx, id)
}

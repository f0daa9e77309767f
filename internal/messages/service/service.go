package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"globe_backend/internal/messages/repository"
	"globe_backend/internal/messages/transport"
	"globe_backend/platform/apperr"
	"globe_backend/platform/logger"
	"globe_backend/platform/sanitize"
)

// Service provides business logic for messages.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new messages service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// List retrieves all messages, oldest first.
func (s *Service) List(ctx context.Context) (transport.MessageListResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return transport.MessageListResponse{}, s.storeErr("messages.list", err)
	}

	resp := transport.MessageListResponse{
		Items: make([]transport.MessageResponse, 0, len(items)),
		Total: len(items),
	}
	for _, m := range items {
		resp.Items = append(resp.Items, toResponse(m))
	}
	return resp, nil
}

// GetByID retrieves a message by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.MessageResponse, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.MessageResponse{}, s.storeErr("messages.get", err)
	}
	return toResponse(m), nil
}

// Create stores a new message stamped with the current time. Markup is
// stripped from the content before it is stored.
func (s *Service) Create(ctx context.Context, req transport.CreateMessageRequest) (transport.MessageResponse, error) {
	content := sanitize.Text(req.Content)
	if err := requireContent(content); err != nil {
		return transport.MessageResponse{}, err
	}

	m, err := s.repo.Create(ctx, repository.CreateParams{
		Content:   content,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return transport.MessageResponse{}, s.storeErr("messages.create", err)
	}

	s.log.Info("message created", "id", m.ID)
	return toResponse(m), nil
}

// Update replaces a message's content. created_at never changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateMessageRequest) (transport.MessageResponse, error) {
	content := sanitize.Text(req.Content)
	if err := requireContent(content); err != nil {
		return transport.MessageResponse{}, err
	}

	m, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:        id,
		Content:   content,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return transport.MessageResponse{}, s.storeErr("messages.update", err)
	}

	s.log.Info("message updated", "id", m.ID)
	return toResponse(m), nil
}

// Delete removes a message.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeErr("messages.delete", err)
	}
	s.log.Info("message deleted", "id", id)
	return nil
}

// storeErr logs storage failures. Domain errors such as NotFound are
// returned without logging.
func (s *Service) storeErr(operation string, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		s.log.DatabaseError(operation, err)
	}
	return err
}

func requireContent(content string) error {
	if content == "" {
		return apperr.Validation("content is required").
			WithDetails([]map[string]string{{"field": "content", "rule": "required"}})
	}
	return nil
}

func toResponse(m repository.Message) transport.MessageResponse {
	return transport.MessageResponse{
		ID:        m.ID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

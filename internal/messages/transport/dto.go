package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateMessageRequest contains data for creating a message.
type CreateMessageRequest struct {
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

// UpdateMessageRequest contains data for replacing a message's content.
type UpdateMessageRequest struct {
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageListResponse wraps a list of messages.
type MessageListResponse struct {
	Items []MessageResponse `json:"items"`
	Total int               `json:"total"`
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is a persisted free-text message.
type Message struct {
	ID        uuid.UUID `db:"id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CreateParams contains parameters for creating a message.
type CreateParams struct {
	Content   string
	CreatedAt time.Time
}

// UpdateParams contains parameters for updating a message.
type UpdateParams struct {
	ID        uuid.UUID
	Content   string
	UpdatedAt time.Time
}

// MessageReader provides read operations for messages.
type MessageReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Message, error)
	List(ctx context.Context) ([]Message, error)
}

// MessageWriter provides write operations for messages.
type MessageWriter interface {
	Create(ctx context.Context, params CreateParams) (Message, error)
	Update(ctx context.Context, params UpdateParams) (Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository combines all message repository operations.
type Repository interface {
	MessageReader
	MessageWriter
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"globe_backend/platform/apperr"
)

const messageNotFoundMessage = "message not found"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new messages repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a message by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Message, error) {
	query := `
		SELECT id, content, created_at, updated_at
		FROM messages
		WHERE id = $1`

	var m Message
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, apperr.NotFound(messageNotFoundMessage)
		}
		return Message{}, fmt.Errorf("get message by id: %w", err)
	}
	return m, nil
}

// List retrieves all messages, oldest first.
func (r *Repo) List(ctx context.Context) ([]Message, error) {
	query := `
		SELECT id, content, created_at, updated_at
		FROM messages
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[Message])
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}
	return items, nil
}

// Create inserts a new message. The ID is assigned by the database.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Message, error) {
	query := `
		INSERT INTO messages (content, created_at, updated_at)
		VALUES ($1, $2, $2)
		RETURNING id, content, created_at, updated_at`

	var m Message
	err := r.pool.QueryRow(ctx, query, params.Content, params.CreatedAt).Scan(&m.ID, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// Update replaces the content of an existing message.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Message, error) {
	query := `
		UPDATE messages
		SET content = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, content, created_at, updated_at`

	var m Message
	err := r.pool.QueryRow(ctx, query, params.ID, params.Content, params.UpdatedAt).Scan(&m.ID, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, apperr.NotFound(messageNotFoundMessage)
		}
		return Message{}, fmt.Errorf("update message: %w", err)
	}
	return m, nil
}

// Delete removes a message.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(messageNotFoundMessage)
	}
	return nil
}

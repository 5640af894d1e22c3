package ports

import (
	"context"

	"github.com/aretw0/leadchat/pkg/domain"
)

// ConversationStore defines the interface for persisting conversation snapshots.
// This lets stateless hosts (HTTP, MCP) resume a conversation on any request.
type ConversationStore interface {
	// Save persists the snapshot for a given session ID.
	Save(ctx context.Context, sessionID string, conv *domain.Conversation) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Conversation, error)

	// Delete removes the snapshot for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/cell-commander/pkg/story"
)

// SessionRecord describes a session without its game state. Records outlive
// the in-memory engine so callers can tell an expired session from one that
// never existed.
type SessionRecord struct {
	ID        uuid.UUID   `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	LastSeen  time.Time   `json:"last_seen"`
	Scene     story.Scene `json:"scene"`
	Ended     string      `json:"ended,omitempty"` // why the engine stopped, empty while live
}

// Storage keeps session records.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	SaveSession(ctx context.Context, rec SessionRecord) error
	// LoadSession returns nil, nil when no record exists.
	LoadSession(ctx context.Context, id uuid.UUID) (*SessionRecord, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

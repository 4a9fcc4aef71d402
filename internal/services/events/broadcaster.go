package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/cell-commander/pkg/engine"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeConnected     EventType = "connected"
	EventTypeSessionClosed EventType = "session.closed"
	EventTypeStateSnapshot EventType = "game.state_snapshot"
)

const eventTypeSignalPrefix = "game."

// SignalEventType maps an engine signal onto the event stream, e.g.
// scene_changed becomes game.scene_changed.
func SignalEventType(t engine.SignalType) EventType {
	return EventType(eventTypeSignalPrefix + string(t))
}

// Event represents a generic event structure
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Scene     string         `json:"scene,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel is the pub/sub channel carrying one session's events.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-events:%s", sessionID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishSignal forwards an engine signal.
func (b *Broadcaster) PublishSignal(ctx context.Context, sessionID uuid.UUID, sig engine.Signal) error {
	return b.publish(ctx, sessionID, Event{
		Type:      SignalEventType(sig.Type),
		SessionID: sessionID.String(),
		Scene:     string(sig.Scene),
		Data:      sig.Data,
	})
}

// PublishSnapshot publishes the full view so subscribers can redraw.
func (b *Broadcaster) PublishSnapshot(ctx context.Context, sessionID uuid.UUID, view engine.View) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeStateSnapshot,
		SessionID: sessionID.String(),
		Scene:     string(view.State.CurrentScene),
		Data:      map[string]any{"view": view},
	})
}

// PublishSessionClosed tells subscribers the session is gone.
func (b *Broadcaster) PublishSessionClosed(ctx context.Context, sessionID uuid.UUID, reason string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeSessionClosed,
		SessionID: sessionID.String(),
		Data:      map[string]any{"reason": reason},
	})
}

// Subscribe opens a subscription to one session's channel. The caller closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(sessionID))
}

func (b *Broadcaster) publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session record operations (Redis-backed)

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func (r *RedisStorage) SaveSession(ctx context.Context, rec SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal session record", "session_id", rec.ID, "error", err)
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(rec.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session record", "session_id", rec.ID, "error", err)
		return fmt.Errorf("failed to save session record: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (*SessionRecord, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Session record not found", "session_id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load session record", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load session record: %w", err)
	}

	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Error("Failed to unmarshal session record", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session record: %w", err)
	}
	return &rec, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete session record", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}

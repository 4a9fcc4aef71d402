package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/cell-commander/pkg/story"
)

func newTestRedisStorage(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewRedisStorageWithClient(client, ttl, logger)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func testRecord() SessionRecord {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return SessionRecord{
		ID:        uuid.New(),
		CreatedAt: created,
		LastSeen:  created.Add(5 * time.Minute),
		Scene:     story.SceneShop,
	}
}

func TestRedisStorage_SaveAndLoad(t *testing.T) {
	s, _ := newTestRedisStorage(t, time.Hour)
	ctx := context.Background()
	rec := testRecord()

	require.NoError(t, s.SaveSession(ctx, rec))

	loaded, err := s.LoadSession(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, rec.ID, loaded.ID)
	assert.True(t, rec.CreatedAt.Equal(loaded.CreatedAt))
	assert.True(t, rec.LastSeen.Equal(loaded.LastSeen))
	assert.Equal(t, story.SceneShop, loaded.Scene)
	assert.Empty(t, loaded.Ended)

	rec.Ended = "expired"
	require.NoError(t, s.SaveSession(ctx, rec))
	loaded, err = s.LoadSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", loaded.Ended)
}

func TestRedisStorage_LoadMissing(t *testing.T) {
	s, _ := newTestRedisStorage(t, time.Hour)

	loaded, err := s.LoadSession(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_Expiry(t *testing.T) {
	s, mr := newTestRedisStorage(t, time.Minute)
	ctx := context.Background()
	rec := testRecord()

	require.NoError(t, s.SaveSession(ctx, rec))
	assert.Equal(t, time.Minute, mr.TTL(sessionKey(rec.ID)))

	mr.FastForward(2 * time.Minute)
	loaded, err := s.LoadSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_Delete(t *testing.T) {
	s, mr := newTestRedisStorage(t, time.Hour)
	ctx := context.Background()
	rec := testRecord()

	require.NoError(t, s.SaveSession(ctx, rec))
	require.NoError(t, s.DeleteSession(ctx, rec.ID))
	assert.False(t, mr.Exists(sessionKey(rec.ID)))
}

func TestRedisStorage_CorruptRecord(t *testing.T) {
	s, mr := newTestRedisStorage(t, time.Hour)
	id := uuid.New()
	require.NoError(t, mr.Set(sessionKey(id), "{not json"))

	_, err := s.LoadSession(context.Background(), id)
	assert.Error(t, err)
}

func TestRedisStorage_Ping(t *testing.T) {
	s, _ := newTestRedisStorage(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.WaitForConnection(ctx, 1, time.Millisecond))

	dead := NewRedisStorage("127.0.0.1:1", time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer dead.Close()
	assert.Error(t, dead.Ping(ctx))
	assert.Error(t, dead.WaitForConnection(ctx, 2, time.Millisecond))
}

func TestMockStorage(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()
	rec := testRecord()

	loaded, err := m.LoadSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, m.SaveSession(ctx, rec))
	loaded, err = m.LoadSession(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, *loaded)
	assert.Equal(t, 1, m.Saves())

	require.NoError(t, m.DeleteSession(ctx, rec.ID))
	loaded, _ = m.LoadSession(ctx, rec.ID)
	assert.Nil(t, loaded)
}

package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/cell-commander/pkg/engine"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

func newTestBroadcaster(t *testing.T) *Broadcaster {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBroadcaster(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func receive(t *testing.T, ch <-chan *redis.Message) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestBroadcaster_PublishSignal(t *testing.T) {
	b := newTestBroadcaster(t)
	ctx := context.Background()
	id := uuid.New()

	sub := b.Subscribe(ctx, id)
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	other := uuid.New()
	require.NoError(t, b.PublishSignal(ctx, other, engine.Signal{Type: engine.SignalShake}))
	require.NoError(t, b.PublishSignal(ctx, id, engine.Signal{
		Type:  engine.SignalSceneChanged,
		Scene: story.SceneArtery,
		Data:  map[string]any{"from": story.SceneBedroom, "to": story.SceneArtery},
	}))

	ev := receive(t, sub.Channel())
	assert.Equal(t, EventType("game.scene_changed"), ev.Type)
	assert.Equal(t, id.String(), ev.SessionID)
	assert.Equal(t, "ARTERY", ev.Scene)
	assert.Equal(t, "BEDROOM", ev.Data["from"])
}

func TestBroadcaster_PublishSnapshotAndClose(t *testing.T) {
	b := newTestBroadcaster(t)
	ctx := context.Background()
	id := uuid.New()

	sub := b.Subscribe(ctx, id)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	view := engine.New(story.MustDefault(), nil).View()
	require.NoError(t, b.PublishSnapshot(ctx, id, view))
	require.NoError(t, b.PublishSessionClosed(ctx, id, "expired"))

	ch := sub.Channel()
	ev := receive(t, ch)
	assert.Equal(t, EventTypeStateSnapshot, ev.Type)
	assert.Equal(t, "BEDROOM", ev.Scene)
	require.Contains(t, ev.Data, "view")

	ev = receive(t, ch)
	assert.Equal(t, EventTypeSessionClosed, ev.Type)
	assert.Equal(t, "expired", ev.Data["reason"])
}

func TestSignalEventType(t *testing.T) {
	assert.Equal(t, EventType("game.video_phase"), SignalEventType(engine.SignalVideoPhase))
	assert.Equal(t, "session-events:00000000-0000-0000-0000-000000000000", Channel(uuid.Nil))
}

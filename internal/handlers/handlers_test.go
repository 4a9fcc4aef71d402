package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/cell-commander/internal/services/events"
	"github.com/jwebster45206/cell-commander/internal/session"
	"github.com/jwebster45206/cell-commander/internal/storage"
	"github.com/jwebster45206/cell-commander/pkg/engine"
	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

type testEnv struct {
	registry    *session.Registry
	store       *storage.MockStorage
	broadcaster *events.Broadcaster
	sched       *engine.ManualScheduler
	logger      *slog.Logger
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := testEnv{
		store:       storage.NewMockStorage(),
		broadcaster: events.NewBroadcaster(client, logger),
		sched:       engine.NewManualScheduler(),
		logger:      logger,
	}
	env.registry = session.NewRegistry(story.MustDefault(), time.Hour, logger).
		WithStorage(env.store).
		WithPublisher(env.broadcaster).
		WithClock(time.Now, func() engine.Scheduler { return env.sched })
	return env
}

func (env testEnv) sessions() *SessionHandler {
	return NewSessionHandler(env.registry, env.logger)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out), rr.Body.String())
	return out
}

func createSession(t *testing.T, env testEnv) SessionResponse {
	t.Helper()
	rr := do(t, env.sessions(), http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[SessionResponse](t, rr)
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)
	createSession(t, env)

	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantHealth string
		wantRedis  string
	}{
		{"healthy", nil, http.StatusOK, "healthy", "healthy"},
		{"redis down", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded", "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockStorage()
			store.SetPingError(tt.pingErr)
			rr := do(t, NewHealthHandler(store, env.registry, env.logger), http.MethodGet, "/health", "")

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			resp := decode[HealthResponse](t, rr)
			assert.Equal(t, tt.wantHealth, resp.Status)
			assert.Equal(t, "cell-commander", resp.Service)
			assert.Equal(t, tt.wantRedis, resp.Components["redis"])
			assert.EqualValues(t, 1, resp.Components["sessions"])
			assert.WithinDuration(t, time.Now(), resp.Timestamp, time.Second)
		})
	}
}

func TestSessionHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	h := env.sessions()

	created := createSession(t, env)
	assert.Equal(t, story.SceneBedroom, created.View.State.CurrentScene)
	assert.Equal(t, 3, created.View.State.HP)
	require.NotNil(t, created.View.Line)
	assert.Equal(t, "0_1", created.View.Line.ID)

	rr := do(t, h, http.MethodGet, "/v1/sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.ID, decode[SessionResponse](t, rr).ID)

	rr = do(t, h, http.MethodDelete, "/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, h, http.MethodDelete, "/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionHandler_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	h := env.sessions()
	created := createSession(t, env)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"list is not supported", http.MethodGet, "/v1/sessions", http.StatusMethodNotAllowed},
		{"invalid id", http.MethodGet, "/v1/sessions/not-a-uuid", http.StatusBadRequest},
		{"nil id", http.MethodGet, "/v1/sessions/00000000-0000-0000-0000-000000000000", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/v1/sessions/7f1c3d5e-9a1b-4c1d-8e2f-0a1b2c3d4e5f", http.StatusNotFound},
		{"patch", http.MethodPatch, "/v1/sessions/" + created.ID, http.StatusMethodNotAllowed},
		{"unknown sub-resource", http.MethodPost, "/v1/sessions/" + created.ID + "/moves", http.StatusNotFound},
		{"get intents", http.MethodGet, "/v1/sessions/" + created.ID + "/intents", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, "")
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, rr).Error)
		})
	}
}

func TestSessionHandler_Intents(t *testing.T) {
	env := newTestEnv(t)
	h := env.sessions()
	created := createSession(t, env)
	path := "/v1/sessions/" + created.ID + "/intents"

	rr := do(t, h, http.MethodPost, path, `{"type":"advance"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, decode[SessionResponse](t, rr).View.State.DialogueIndex)

	rr = do(t, h, http.MethodPost, path, `{"type":"travel","scene":"BONE_MARROW"}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	refused := decode[ErrorResponse](t, rr)
	assert.Contains(t, refused.Error, "locked")
	require.NotNil(t, refused.View)
	assert.Equal(t, story.SceneBedroom, refused.View.State.CurrentScene)

	rr = do(t, h, http.MethodPost, path, `{"type":"open_modal","modal":"phone"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[SessionResponse](t, rr).View.UI.IsOpen(state.ModalPhone))

	// The session record is refreshed after each accepted intent.
	assert.GreaterOrEqual(t, env.store.Saves(), 3)
}

func TestSessionHandler_BuyUsesCatalogPrice(t *testing.T) {
	env := newTestEnv(t)
	h := env.sessions()
	created := createSession(t, env)
	path := "/v1/sessions/" + created.ID + "/intents"

	rr := do(t, h, http.MethodPost, path, `{"type":"buy","item":"key"}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, decode[ErrorResponse](t, rr).Error, "insufficient points")

	rr = do(t, h, http.MethodPost, path, `{"type":"buy","item":"key","cost":0}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	v := decode[SessionResponse](t, rr).View
	assert.True(t, v.State.Owns(story.ItemKey))
	assert.True(t, v.State.IsUnlocked(story.SceneThymusPrison))
}

func TestSessionHandler_IntentErrors(t *testing.T) {
	env := newTestEnv(t)
	h := env.sessions()
	created := createSession(t, env)
	path := "/v1/sessions/" + created.ID + "/intents"

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"not json", `{type`, http.StatusBadRequest},
		{"unknown field", `{"type":"advance","speed":2}`, http.StatusBadRequest},
		{"missing type", `{}`, http.StatusBadRequest},
		{"unknown type", `{"type":"dance"}`, http.StatusBadRequest},
		{"missing option", `{"type":"answer_option"}`, http.StatusBadRequest},
		{"missing jump index", `{"type":"meet","character":"B_CELL"}`, http.StatusBadRequest},
		{"missing amount", `{"type":"damage"}`, http.StatusBadRequest},
		{"missing correct", `{"type":"answer_quiz","reward_hp":1}`, http.StatusBadRequest},
		{"wrong scene", `{"type":"call","character":"MACROPHAGE"}`, http.StatusConflict},
		{"locked modal", `{"type":"open_modal","modal":"shop"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}

	rr := do(t, h, http.MethodPost, "/v1/sessions/7f1c3d5e-9a1b-4c1d-8e2f-0a1b2c3d4e5f/intents", `{"type":"advance"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionHandler_ClosedEngine(t *testing.T) {
	env := newTestEnv(t)
	h := env.sessions()
	created := createSession(t, env)

	rr := do(t, h, http.MethodGet, "/v1/sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	id := decode[SessionResponse](t, rr).ID
	s, err := env.registry.Get(context.Background(), mustParse(t, id))
	require.NoError(t, err)
	s.Engine.Close()

	rr = do(t, h, http.MethodPost, "/v1/sessions/"+id+"/intents", `{"type":"advance"}`)
	assert.Equal(t, http.StatusGone, rr.Code)
}

func TestSessionHandler_ExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	env.registry.WithClock(func() time.Time { return now }, func() engine.Scheduler { return env.sched })
	h := env.sessions()
	created := createSession(t, env)

	now = now.Add(2 * time.Hour)
	require.Equal(t, 1, env.registry.Sweep(context.Background()))

	rr := do(t, h, http.MethodGet, "/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Equal(t, "Session has expired", decode[ErrorResponse](t, rr).Error)

	rr = do(t, h, http.MethodDelete, "/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionHandler_TimersAdvanceTheView(t *testing.T) {
	env := newTestEnv(t)
	h := env.sessions()
	created := createSession(t, env)
	path := "/v1/sessions/" + created.ID + "/intents"

	rr := do(t, h, http.MethodPost, path, `{"type":"damage","amount":1}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[SessionResponse](t, rr).View.UI.Shake)

	env.sched.Advance(time.Second)
	rr = do(t, h, http.MethodGet, "/v1/sessions/"+created.ID, "")
	assert.False(t, decode[SessionResponse](t, rr).View.UI.Shake)
}

func TestCatalogHandler(t *testing.T) {
	env := newTestEnv(t)
	h := NewCatalogHandler(story.MustDefault(), env.logger)

	rr := do(t, h, http.MethodGet, "/v1/catalog", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[CatalogResponse](t, rr)
	assert.Len(t, resp.Scenes, len(story.AllScenes))
	assert.Len(t, resp.Items, 3)
	assert.Equal(t, []string{"video", "diary", "key"}, resp.ShopItems)
	assert.Equal(t, 5, resp.QuizQuestions)
	assert.Equal(t, 4, resp.DiaryPages)

	for _, s := range resp.Scenes {
		if s.ID == story.SceneLungBattle {
			assert.True(t, s.MapNode)
			assert.True(t, s.AlwaysReachable)
		}
		if s.ID == story.SceneVictory {
			assert.False(t, s.MapNode)
		}
	}

	rr = do(t, h, http.MethodPost, "/v1/catalog", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func mustParse(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, ok := parseSessionID(s)
	require.True(t, ok, s)
	return id
}

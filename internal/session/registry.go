// Package session keeps the live engines of an API process, one per player,
// keyed by uuid. Idle sessions are evicted after a TTL. When a storage is
// configured each session also leaves a record behind, so a lookup can tell
// an expired session from an unknown id. Game state itself is never stored.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/cell-commander/internal/logger"
	"github.com/jwebster45206/cell-commander/internal/storage"
	"github.com/jwebster45206/cell-commander/pkg/engine"
	"github.com/jwebster45206/cell-commander/pkg/story"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Reasons a session stops.
const (
	EndDeleted  = "deleted"
	EndExpired  = "expired"
	EndShutdown = "shutdown"
)

const publishTimeout = 2 * time.Second

// Publisher fans session events out to subscribers.
type Publisher interface {
	PublishSignal(ctx context.Context, sessionID uuid.UUID, sig engine.Signal) error
	PublishSnapshot(ctx context.Context, sessionID uuid.UUID, view engine.View) error
	PublishSessionClosed(ctx context.Context, sessionID uuid.UUID, reason string) error
}

// Session is one live engine.
type Session struct {
	ID        uuid.UUID
	Engine    *engine.Engine
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time

	// recordMu orders record writes against the session ending. Once ended
	// is set no further record is written.
	recordMu sync.Mutex
	ended    string
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen is the time of the last lookup.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// retire marks the session ended without writing a record.
func (s *Session) retire(reason string) {
	s.recordMu.Lock()
	defer s.recordMu.Unlock()
	if s.ended == "" {
		s.ended = reason
	}
}

// Registry owns every live session.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	catalog      *story.Catalog
	ttl          time.Duration
	timings      engine.Timings
	store        storage.Storage
	publisher    Publisher
	logger       *slog.Logger
	now          func() time.Time
	newScheduler func() engine.Scheduler
}

// NewRegistry creates an empty registry. Sessions idle for longer than ttl
// are evicted by Sweep.
func NewRegistry(cat *story.Catalog, ttl time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		sessions:     make(map[uuid.UUID]*Session),
		catalog:      cat,
		ttl:          ttl,
		timings:      engine.DefaultTimings(),
		logger:       logger,
		now:          time.Now,
		newScheduler: func() engine.Scheduler { return engine.RealScheduler{} },
	}
}

// WithStorage keeps a record of every session.
// Returns the Registry for method chaining
func (r *Registry) WithStorage(s storage.Storage) *Registry {
	r.store = s
	return r
}

// WithPublisher broadcasts engine signals and snapshots.
// Returns the Registry for method chaining
func (r *Registry) WithPublisher(p Publisher) *Registry {
	r.publisher = p
	return r
}

// WithTimings sets the delays of every new engine.
// Returns the Registry for method chaining
func (r *Registry) WithTimings(t engine.Timings) *Registry {
	r.timings = t
	return r
}

// WithClock replaces time.Now and the engine scheduler, for tests.
// Returns the Registry for method chaining
func (r *Registry) WithClock(now func() time.Time, newScheduler func() engine.Scheduler) *Registry {
	r.now = now
	r.newScheduler = newScheduler
	return r
}

// Catalog returns the content every session plays.
func (r *Registry) Catalog() *story.Catalog {
	return r.catalog
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Create starts a new session in the initial state.
func (r *Registry) Create(ctx context.Context) *Session {
	s := r.newSession(uuid.New())
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.save(ctx, s, "")
	r.logger.Info("Session created", "session_id", s.ID)
	return s
}

// Get returns a live session. An id the storage remembers but no engine
// serves returns ErrExpired; any other miss returns ErrNotFound.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.touch(r.now())
		return s, nil
	}

	rec, err := r.lookupRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return nil, fmt.Errorf("session %s ended (%s): %w", id, rec.Ended, ErrExpired)
	}
	return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
}

// Delete ends a session and forgets its record.
func (r *Registry) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	s, live := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if live {
		s.Engine.Close()
		s.retire(EndDeleted)
	} else {
		rec, err := r.lookupRecord(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
	}

	if r.store != nil {
		if err := r.store.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
	}
	if live {
		r.publishClosed(ctx, id, EndDeleted)
	}
	r.logger.Info("Session deleted", "session_id", id)
	return nil
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were evicted.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		r.end(ctx, s, EndExpired)
		r.logger.Info("Session expired", "session_id", s.ID, "last_seen", s.LastSeen())
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done, then ends every session.
func (r *Registry) Run(ctx context.Context) {
	interval := max(r.ttl/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			r.closeAll(shutdownCtx)
			cancel()
			return
		case <-ticker.C:
			if n := r.Sweep(ctx); n > 0 {
				r.logger.Debug("Sweep finished", "evicted", n, "live", r.Len())
			}
		}
	}
}

func (r *Registry) closeAll(ctx context.Context) {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		sessions = append(sessions, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		r.end(ctx, s, EndShutdown)
	}
}

// end stops an evicted session's engine and marks its record.
func (r *Registry) end(ctx context.Context, s *Session, reason string) {
	s.Engine.Close()
	r.save(ctx, s, reason)
	r.publishClosed(ctx, s.ID, reason)
}

// newSession builds the engine and wires its notifier.
func (r *Registry) newSession(id uuid.UUID) *Session {
	log := logger.WithSessionID(r.logger, id.String())
	now := r.now()
	s := &Session{ID: id, CreatedAt: now}
	s.touch(now)

	n := &notifier{session: s, registry: r, logger: log}
	s.Engine = engine.New(r.catalog, log).
		WithScheduler(r.newScheduler()).
		WithTimings(r.timings).
		WithNotifier(n)
	return s
}

func (r *Registry) lookupRecord(ctx context.Context, id uuid.UUID) (*storage.SessionRecord, error) {
	if r.store == nil {
		return nil, nil
	}
	rec, err := r.store.LoadSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up session %s: %w", id, err)
	}
	return rec, nil
}

// save writes the session record. A non-empty ended writes the final
// record; saves arriving after that are dropped.
func (r *Registry) save(ctx context.Context, s *Session, ended string) {
	if r.store == nil {
		return
	}
	s.recordMu.Lock()
	defer s.recordMu.Unlock()
	if s.ended != "" {
		return
	}
	s.ended = ended

	rec := storage.SessionRecord{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		LastSeen:  s.LastSeen(),
		Scene:     s.Engine.View().State.CurrentScene,
		Ended:     ended,
	}
	if err := r.store.SaveSession(ctx, rec); err != nil {
		logger.WithError(r.logger, err).Warn("Failed to save session record", "session_id", s.ID)
	}
}

func (r *Registry) publishClosed(ctx context.Context, id uuid.UUID, reason string) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishSessionClosed(ctx, id, reason); err != nil {
		r.logger.Warn("Failed to publish session close", "session_id", id, "error", err)
	}
}

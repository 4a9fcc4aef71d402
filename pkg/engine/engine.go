// Package engine drives one play session: it interprets scene scripts, applies
// player intents, evaluates scene-transition reactions and owns the delayed
// transitions. All mutation happens under a single lock, so intents and timer
// callbacks never interleave.
package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/cell-commander/pkg/state"
	"github.com/jwebster45206/cell-commander/pkg/story"
	"github.com/jwebster45206/cell-commander/pkg/textfilter"
)

// Timings holds every delay the engine schedules.
type Timings struct {
	Alarm      time.Duration // bone marrow to alarm
	Dying      time.Duration // death animation before the quiz
	Resurrect  time.Duration // correct quiz answer to the battle
	Penalty    time.Duration // second wrong answer to the thymus
	Shake      time.Duration
	ModalShake time.Duration
	VideoPhase time.Duration // each of the four antigen presentation phases
}

// DefaultTimings returns the production delays.
func DefaultTimings() Timings {
	return Timings{
		Alarm:      1500 * time.Millisecond,
		Dying:      2 * time.Second,
		Resurrect:  time.Second,
		Penalty:    time.Second,
		Shake:      500 * time.Millisecond,
		ModalShake: 500 * time.Millisecond,
		VideoPhase: 4 * time.Second,
	}
}

// Scaled multiplies every delay by f. Non-positive factors leave t unchanged.
func (t Timings) Scaled(f float64) Timings {
	if f <= 0 {
		return t
	}
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * f)
	}
	return Timings{
		Alarm:      scale(t.Alarm),
		Dying:      scale(t.Dying),
		Resurrect:  scale(t.Resurrect),
		Penalty:    scale(t.Penalty),
		Shake:      scale(t.Shake),
		ModalShake: scale(t.ModalShake),
		VideoPhase: scale(t.VideoPhase),
	}
}

// Notifier receives UI signals after each mutation. Notify is called without
// the engine lock held, so it may call back into the engine.
type Notifier interface {
	Notify(sig Signal)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(sig Signal)

func (f NotifierFunc) Notify(sig Signal) { f(sig) }

type timerKey string

const (
	timerAlarm      timerKey = "alarm"
	timerDying      timerKey = "dying"
	timerResurrect  timerKey = "resurrect"
	timerPenalty    timerKey = "penalty"
	timerShake      timerKey = "shake"
	timerModalShake timerKey = "modal_shake"
	timerVideo      timerKey = "video"
)

type pendingTimer struct {
	timer Timer
	gen   uint64
}

// errStale marks a timer callback that lost its slot to a cancel or reschedule.
var errStale = errors.New("stale timer")

// Engine owns the GameState and UIState of one session.
type Engine struct {
	mu       sync.Mutex
	catalog  *story.Catalog
	matcher  *textfilter.AnswerMatcher
	gs       *state.GameState
	ui       *state.UIState
	sched    Scheduler
	timings  Timings
	logger   *slog.Logger
	notifier Notifier

	timers map[timerKey]pendingTimer
	gen    uint64
	outbox []Signal
	closed bool
}

// New creates an engine in the starting state.
func New(cat *story.Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog: cat,
		matcher: textfilter.NewAnswerMatcher(cat.ThymusAnswer),
		gs:      state.New(cat),
		ui:      state.NewUI(),
		sched:   RealScheduler{},
		timings: DefaultTimings(),
		logger:  logger,
		timers:  make(map[timerKey]pendingTimer),
	}
}

// WithScheduler sets the scheduler for delayed transitions.
// Returns the Engine for method chaining
func (e *Engine) WithScheduler(s Scheduler) *Engine {
	e.sched = s
	return e
}

// WithTimings overrides the default delays.
// Returns the Engine for method chaining
func (e *Engine) WithTimings(t Timings) *Engine {
	e.timings = t
	return e
}

// WithNotifier sets the receiver of UI signals.
// Returns the Engine for method chaining
func (e *Engine) WithNotifier(n Notifier) *Engine {
	e.notifier = n
	return e
}

// Catalog returns the static content the engine plays.
func (e *Engine) Catalog() *story.Catalog {
	return e.catalog
}

// Close cancels every pending timer. Intents on a closed engine return
// ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for key := range e.timers {
		e.cancel(key)
	}
}

// do runs fn under the lock, evaluates the reactions, then hands the queued
// signals to the notifier once the lock is released.
func (e *Engine) do(fn func() error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	err := fn()
	e.react()
	if err == nil || len(e.outbox) > 0 {
		e.emit(SignalStateUpdated, nil)
	}
	signals := e.outbox
	e.outbox = nil
	notifier := e.notifier
	e.mu.Unlock()

	if notifier != nil {
		for _, sig := range signals {
			notifier.Notify(sig)
		}
	}
	if errors.Is(err, errStale) {
		return nil
	}
	return err
}

func (e *Engine) emit(t SignalType, data map[string]any) {
	e.outbox = append(e.outbox, Signal{Type: t, Scene: e.gs.CurrentScene, Data: data})
}

// schedule arms the timer for key, replacing any pending one. The callback
// runs under the lock and only if the slot still belongs to this arming.
func (e *Engine) schedule(key timerKey, d time.Duration, fn func()) {
	e.cancel(key)
	e.gen++
	gen := e.gen
	t := e.sched.AfterFunc(d, func() {
		e.fire(key, gen, fn)
	})
	e.timers[key] = pendingTimer{timer: t, gen: gen}
}

func (e *Engine) fire(key timerKey, gen uint64, fn func()) {
	_ = e.do(func() error {
		p, ok := e.timers[key]
		if !ok || p.gen != gen {
			return errStale
		}
		delete(e.timers, key)
		e.logger.Debug("timer fired", "timer", string(key), "scene", e.gs.CurrentScene)
		fn()
		return nil
	})
}

func (e *Engine) cancel(key timerKey) {
	p, ok := e.timers[key]
	if !ok {
		return
	}
	p.timer.Stop()
	delete(e.timers, key)
	e.logger.Debug("timer cancelled", "timer", string(key), "scene", e.gs.CurrentScene)
}

func (e *Engine) pending(key timerKey) bool {
	_, ok := e.timers[key]
	return ok
}

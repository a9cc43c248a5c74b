// Package ticker advances running timers once per period and reports halfway
// and completion crossings.
package ticker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/timerd/internal/model"
	"github.com/sandeepkv93/timerd/internal/timers"
)

var ErrEngineStopped = errors.New("ticker: engine stopped")

const DefaultInterval = time.Second

// Store is the part of timers.Store the engine needs.
type Store interface {
	Timers() []model.Timer
	CompareAndUpdate(ctx context.Context, prev, next model.Timer) (bool, error)
}

type Option func(*Engine)

func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

func WithBuffer(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.out = make(chan Event, n)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

type Engine struct {
	store    Store
	log      *slog.Logger
	now      func() time.Time
	interval time.Duration

	flagsMu sync.Mutex
	halfway map[string]bool

	mu      sync.Mutex
	out     chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		interval: DefaultInterval,
		halfway:  make(map[string]bool),
		out:      make(chan Event, 64),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Interval() time.Duration {
	return e.interval
}

// Tick performs one pass over the running timers. Every next value is
// computed from the same snapshot before any of them is written back. A timer
// that a user action changed after the snapshot keeps that change and is
// skipped until the next pass.
func (e *Engine) Tick(ctx context.Context) []Event {
	snapshot := e.store.Timers()
	at := e.now()

	type pending struct {
		prev     model.Timer
		next     model.Timer
		halfway  bool
		complete bool
	}
	updates := make([]pending, 0, len(snapshot))

	e.flagsMu.Lock()
	for _, t := range snapshot {
		if t.Status != model.TimerStatusRunning {
			continue
		}
		p := pending{prev: t, next: t}
		if p.next.RemainingTime > 0 {
			p.next.RemainingTime--
			p.halfway = p.next.RemainingTime == p.next.HalfwayPoint() && !e.halfway[t.ID]
		}
		// a timer started with nothing left completes on this tick
		if p.next.RemainingTime == 0 {
			p.next.Status = model.TimerStatusCompleted
			p.complete = true
		}
		updates = append(updates, p)
	}
	e.flagsMu.Unlock()

	out := make([]Event, 0)
	for _, p := range updates {
		recorded, err := e.store.CompareAndUpdate(ctx, p.prev, p.next)
		if errors.Is(err, timers.ErrTimerChanged) {
			e.log.Debug("tick skipped changed timer", "id", p.next.ID)
			continue
		}
		if err != nil {
			// the timer went away between snapshot and write-back
			e.log.Warn("tick update dropped", "id", p.next.ID, "err", err)
			continue
		}

		events := make([]Event, 0, 2)
		e.flagsMu.Lock()
		if p.halfway && !e.halfway[p.next.ID] {
			e.halfway[p.next.ID] = true
			events = append(events, Event{Type: EventHalfway, Timer: p.next, At: at})
		}
		if p.complete {
			delete(e.halfway, p.next.ID)
			events = append(events, Event{Type: EventCompleted, Timer: p.next, At: at, Recorded: recorded})
		}
		e.flagsMu.Unlock()

		for _, ev := range events {
			e.log.Info("timer event", "type", string(ev.Type), "id", ev.Timer.ID, "name", ev.Timer.Name, "remaining", ev.Timer.RemainingTime)
			out = append(out, ev)
		}
	}
	return out
}

// ClearHalfway forgets the halfway flag for id so the next run can fire it
// again. Registered with Store.OnReset.
func (e *Engine) ClearHalfway(id string) {
	e.flagsMu.Lock()
	delete(e.halfway, id)
	e.flagsMu.Unlock()
}

func (e *Engine) HalfwayNotified(id string) bool {
	e.flagsMu.Lock()
	defer e.flagsMu.Unlock()
	return e.halfway[id]
}

// C delivers events produced by the background loop. It is closed by Stop.
func (e *Engine) C() <-chan Event {
	return e.out
}

// Start runs Tick every interval on its own goroutine until Stop or ctx is
// done. Events that do not fit in the buffer are dropped and counted.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	if e.started {
		return nil
	}
	e.started = true
	go e.loop(ctx)
	return nil
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop(ctx context.Context) {
	defer close(e.doneCh)
	defer close(e.out)

	t := time.NewTicker(e.interval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			for _, ev := range e.Tick(ctx) {
				select {
				case e.out <- ev:
				default:
					n := atomic.AddUint64(&e.dropped, 1)
					e.log.Warn("event dropped", "type", string(ev.Type), "id", ev.Timer.ID, "dropped_total", n)
				}
			}
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		}
	}
}

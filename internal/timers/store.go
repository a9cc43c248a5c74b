// Package timers owns the active timer collection and the completed-timer
// history. Every mutation goes through Store and is written through to the
// backing key-value storage before the call returns.
package timers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/timerd/internal/model"
	"github.com/sandeepkv93/timerd/internal/storage"
)

const (
	KeyTimers  = "timers"
	KeyHistory = "timerHistory"
)

var (
	ErrTimerNotFound    = errors.New("timers: timer not found")
	ErrTimerCompleted   = errors.New("timers: timer already completed")
	ErrTimerChanged     = errors.New("timers: timer changed since snapshot")
	ErrDecode           = errors.New("timers: decode stored state")
	ErrInvalidPolicy    = errors.New("timers: invalid completion policy")
	errNilStorage       = errors.New("timers: nil storage")
	errNameRequired     = errors.New("timers: name is required")
	errCategoryRequired = errors.New("timers: category is required")
)

// CompletionPolicy decides whether a completion is recorded in history.
type CompletionPolicy string

const (
	// CompletionOncePerID records a completion only if no history row has the
	// same timer id. A timer that is reset and completes again is not recorded
	// a second time.
	CompletionOncePerID CompletionPolicy = "once_per_id"
	// CompletionEveryRun records every transition into Completed.
	CompletionEveryRun CompletionPolicy = "every_run"
)

func ParseCompletionPolicy(raw string) (CompletionPolicy, error) {
	p := CompletionPolicy(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case CompletionOncePerID, CompletionEveryRun:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, raw)
	}
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func WithCompletionPolicy(p CompletionPolicy) Option {
	return func(s *Store) {
		if p != "" {
			s.policy = p
		}
	}
}

type Store struct {
	mu      sync.Mutex
	kv      storage.KV
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
	policy  CompletionPolicy
	timers  []model.Timer
	history []model.CompletedTimer
	onReset []func(id string)
}

func New(kv storage.KV, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errNilStorage
	}
	s := &Store{
		kv:      kv,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
		policy:  CompletionOncePerID,
		timers:  make([]model.Timer, 0),
		history: make([]model.CompletedTimer, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Policy() CompletionPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// OnReset registers fn to be called with the id of every timer that is reset,
// individually or in bulk.
func (s *Store) OnReset(fn func(id string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onReset = append(s.onReset, fn)
	s.mu.Unlock()
}

// Load replaces both collections with what is in storage. On any failure both
// collections are left empty and the error is returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timers = make([]model.Timer, 0)
	s.history = make([]model.CompletedTimer, 0)

	timers := make([]model.Timer, 0)
	if err := s.loadKey(ctx, KeyTimers, &timers); err != nil {
		s.log.Error("load timers failed", "key", KeyTimers, "err", err)
		return err
	}
	for _, t := range timers {
		if err := t.Validate(); err != nil {
			err = fmt.Errorf("%w %s: %w", ErrDecode, KeyTimers, err)
			s.log.Error("load timers failed", "key", KeyTimers, "err", err)
			return err
		}
	}
	history := make([]model.CompletedTimer, 0)
	if err := s.loadKey(ctx, KeyHistory, &history); err != nil {
		s.log.Error("load history failed", "key", KeyHistory, "err", err)
		return err
	}
	for _, row := range history {
		if err := row.Timer.Validate(); err != nil {
			err = fmt.Errorf("%w %s: %w", ErrDecode, KeyHistory, err)
			s.log.Error("load history failed", "key", KeyHistory, "err", err)
			return err
		}
	}

	s.timers = timers
	s.history = history
	s.log.Info("state loaded", "timers", len(timers), "history", len(history))
	return nil
}

func (s *Store) loadKey(ctx context.Context, key string, dst any) error {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !found || strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w %s: %w", ErrDecode, key, err)
	}
	return nil
}

// Persist writes both collections.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.writeLocked(ctx, KeyTimers), s.writeLocked(ctx, KeyHistory))
}

// persistLocked is the write-through path of mutating operations. Failures
// are logged and the in-memory state is kept.
func (s *Store) persistLocked(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.writeLocked(ctx, key); err != nil {
			s.log.Error("persist failed", "key", key, "err", err)
		}
	}
}

func (s *Store) writeLocked(ctx context.Context, key string) error {
	var payload []byte
	var err error
	switch key {
	case KeyTimers:
		payload, err = json.Marshal(s.timers)
	case KeyHistory:
		payload, err = json.Marshal(s.history)
	default:
		return fmt.Errorf("timers: unknown key %q", key)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Create adds a paused timer with the full duration remaining.
func (s *Store) Create(ctx context.Context, name string, duration int, category string) (model.Timer, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" {
		return model.Timer{}, errNameRequired
	}
	if duration <= 0 {
		return model.Timer{}, fmt.Errorf("%w: %d", model.ErrInvalidDuration, duration)
	}
	if category == "" {
		return model.Timer{}, errCategoryRequired
	}

	t := model.Timer{
		ID:            s.newID(),
		Name:          name,
		Duration:      duration,
		Category:      category,
		RemainingTime: duration,
		Status:        model.TimerStatusPaused,
	}

	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.persistLocked(ctx, KeyTimers)
	s.mu.Unlock()

	s.log.Info("timer created", "id", t.ID, "name", t.Name, "category", t.Category, "duration", t.Duration)
	return t, nil
}

// Update replaces the timer with the same id. A completed timer at zero is
// recorded in history according to the completion policy; recorded reports
// whether a history row was appended.
func (s *Store) Update(ctx context.Context, t model.Timer) (recorded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(t.ID)
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", ErrTimerNotFound, t.ID)
	}
	return s.replaceLocked(ctx, idx, t), nil
}

// CompareAndUpdate is Update guarded by the value the caller computed from.
// When the stored timer no longer equals prev it is left alone and
// ErrTimerChanged is returned.
func (s *Store) CompareAndUpdate(ctx context.Context, prev, next model.Timer) (recorded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(next.ID)
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", ErrTimerNotFound, next.ID)
	}
	if s.timers[idx] != prev {
		return false, fmt.Errorf("%w: %s", ErrTimerChanged, next.ID)
	}
	return s.replaceLocked(ctx, idx, next), nil
}

func (s *Store) replaceLocked(ctx context.Context, idx int, t model.Timer) (recorded bool) {
	prev := s.timers[idx]
	s.timers[idx] = t

	if t.Status == model.TimerStatusCompleted && t.RemainingTime == 0 && s.shouldRecordLocked(prev, t.ID) {
		row := model.NewCompletedTimer(t, s.now())
		s.history = append(s.history, row)
		recorded = true
		s.log.Info("timer completed", "id", t.ID, "name", t.Name, "completed_at", row.CompletedAt)
	}

	if recorded {
		s.persistLocked(ctx, KeyTimers, KeyHistory)
	} else {
		s.persistLocked(ctx, KeyTimers)
	}
	return recorded
}

func (s *Store) shouldRecordLocked(prev model.Timer, id string) bool {
	if s.policy == CompletionEveryRun {
		// one row per run: an update that restates an already completed timer
		// is not a new completion.
		return prev.Status != model.TimerStatusCompleted
	}
	for _, row := range s.history {
		if row.ID == id {
			return false
		}
	}
	return true
}

// BulkAction applies action to every timer whose category matches exactly
// and returns how many timers it touched.
func (s *Store) BulkAction(ctx context.Context, category string, action model.BulkAction) (int, error) {
	if !action.IsValid() {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidAction, action)
	}

	s.mu.Lock()
	affected := make([]string, 0)
	for i := range s.timers {
		if s.timers[i].Category != category {
			continue
		}
		s.timers[i] = s.timers[i].Apply(action)
		affected = append(affected, s.timers[i].ID)
	}
	if len(affected) > 0 {
		s.persistLocked(ctx, KeyTimers)
	}
	hooks := s.resetHooksLocked(action)
	s.mu.Unlock()

	for _, id := range affected {
		for _, fn := range hooks {
			fn(id)
		}
	}
	s.log.Info("bulk action", "category", category, "action", string(action), "affected", len(affected))
	return len(affected), nil
}

// Start runs a single timer. Completed timers must be reset first.
func (s *Store) Start(ctx context.Context, id string) (model.Timer, error) {
	return s.transition(ctx, id, model.BulkActionStart)
}

func (s *Store) Pause(ctx context.Context, id string) (model.Timer, error) {
	return s.transition(ctx, id, model.BulkActionPause)
}

func (s *Store) Reset(ctx context.Context, id string) (model.Timer, error) {
	return s.transition(ctx, id, model.BulkActionReset)
}

func (s *Store) transition(ctx context.Context, id string, action model.BulkAction) (model.Timer, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Timer{}, fmt.Errorf("%w: %s", ErrTimerNotFound, id)
	}
	if action == model.BulkActionStart && s.timers[idx].Status == model.TimerStatusCompleted {
		s.mu.Unlock()
		return model.Timer{}, fmt.Errorf("%w: %s", ErrTimerCompleted, id)
	}
	s.timers[idx] = s.timers[idx].Apply(action)
	out := s.timers[idx]
	s.persistLocked(ctx, KeyTimers)
	hooks := s.resetHooksLocked(action)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(id)
	}
	return out, nil
}

func (s *Store) resetHooksLocked(action model.BulkAction) []func(string) {
	if action != model.BulkActionReset || len(s.onReset) == 0 {
		return nil
	}
	return append([]func(string){}, s.onReset...)
}

// RemoveHistoryItem drops every history row for id and returns how many were
// removed.
func (s *Store) RemoveHistoryItem(ctx context.Context, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]model.CompletedTimer, 0, len(s.history))
	for _, row := range s.history {
		if row.ID != id {
			kept = append(kept, row)
		}
	}
	removed := len(s.history) - len(kept)
	s.history = kept
	s.persistLocked(ctx, KeyHistory)
	return removed
}

func (s *Store) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make([]model.CompletedTimer, 0)
	s.persistLocked(ctx, KeyHistory)
	s.log.Info("history cleared")
}

// Timers returns a copy of the active timers in creation order.
func (s *Store) Timers() []model.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Timer{}, s.timers...)
}

// History returns a copy of the completed timers in completion order.
func (s *Store) History() []model.CompletedTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CompletedTimer{}, s.history...)
}

func (s *Store) Get(id string) (model.Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Timer{}, false
	}
	return s.timers[idx], true
}

// Categories lists distinct categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.timers))
	out := make([]string, 0)
	for _, t := range s.timers {
		if seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	return out
}

// Filter returns the timers in category, or all timers for model.CategoryAll.
func (s *Store) Filter(category string) []model.Timer {
	all := s.Timers()
	if category == "" || category == model.CategoryAll {
		return all
	}
	out := make([]model.Timer, 0, len(all))
	for _, t := range all {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	for i := range s.timers {
		if s.timers[i].ID == id {
			return i
		}
	}
	return -1
}

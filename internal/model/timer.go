package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid timer status")
	ErrInvalidDuration = errors.New("model: invalid timer duration")
	ErrInvalidAction   = errors.New("model: invalid bulk action")
)

type TimerStatus string

const (
	TimerStatusRunning   TimerStatus = "Running"
	TimerStatusPaused    TimerStatus = "Paused"
	TimerStatusCompleted TimerStatus = "Completed"
)

func (s TimerStatus) IsValid() bool {
	switch s {
	case TimerStatusRunning, TimerStatusPaused, TimerStatusCompleted:
		return true
	default:
		return false
	}
}

type BulkAction string

const (
	BulkActionStart BulkAction = "start"
	BulkActionPause BulkAction = "pause"
	BulkActionReset BulkAction = "reset"
)

func (a BulkAction) IsValid() bool {
	switch a {
	case BulkActionStart, BulkActionPause, BulkActionReset:
		return true
	default:
		return false
	}
}

func ParseBulkAction(raw string) (BulkAction, error) {
	a := BulkAction(strings.ToLower(strings.TrimSpace(raw)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
	return a, nil
}

// CategoryAll is the filter value that matches every category.
const CategoryAll = "All"

var DefaultCategories = []string{
	"Workout",
	"Study",
	"Break",
	"Interview",
	"Meeting",
}

// Timer is a named countdown. Durations are whole seconds.
type Timer struct {
	ID            string      `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name"`
	Duration      int         `json:"duration" yaml:"duration"`
	Category      string      `json:"category" yaml:"category"`
	RemainingTime int         `json:"remainingTime" yaml:"remainingTime"`
	Status        TimerStatus `json:"status" yaml:"status"`
}

func (t Timer) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: timer id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: timer name is required")
	}
	if t.Duration <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, t.Duration)
	}
	if t.RemainingTime < 0 || t.RemainingTime > t.Duration {
		return fmt.Errorf("model: remaining time %d outside [0, %d]", t.RemainingTime, t.Duration)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	return nil
}

// HalfwayPoint is the remaining time at which the halfway event fires.
func (t Timer) HalfwayPoint() int {
	return t.Duration / 2
}

// Progress reports the elapsed fraction in [0, 1].
func (t Timer) Progress() float64 {
	if t.Duration <= 0 {
		return 0
	}
	p := float64(t.Duration-t.RemainingTime) / float64(t.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Apply returns the timer after a bulk transition. Completed timers are not
// guarded: start on a completed timer yields Running with nothing left.
func (t Timer) Apply(action BulkAction) Timer {
	switch action {
	case BulkActionStart:
		t.Status = TimerStatusRunning
	case BulkActionPause:
		t.Status = TimerStatusPaused
	case BulkActionReset:
		t.Status = TimerStatusPaused
		t.RemainingTime = t.Duration
	}
	return t
}

// CompletedTimer is a history row. CompletedAt is epoch milliseconds.
type CompletedTimer struct {
	Timer       `yaml:",inline"`
	CompletedAt int64 `json:"completedAt" yaml:"completedAt"`
}

func NewCompletedTimer(t Timer, at time.Time) CompletedTimer {
	return CompletedTimer{Timer: t, CompletedAt: at.UnixMilli()}
}

func (c CompletedTimer) CompletedTime() time.Time {
	return time.UnixMilli(c.CompletedAt).UTC()
}

// FormatClock renders seconds as MM:SS.
func FormatClock(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSec/60, totalSec%60)
}

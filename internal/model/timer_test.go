package model

import (
	"errors"
	"testing"
	"time"
)

func TestTimerValidateSuccess(t *testing.T) {
	timer := Timer{
		ID:            "timer-1",
		Name:          "Sprint",
		Duration:      10,
		Category:      "Work",
		RemainingTime: 10,
		Status:        TimerStatusPaused,
	}
	if err := timer.Validate(); err != nil {
		t.Fatalf("expected valid timer, got error: %v", err)
	}
}

func TestTimerValidateRejectsBadFields(t *testing.T) {
	base := Timer{ID: "timer-1", Name: "Sprint", Duration: 10, RemainingTime: 5, Status: TimerStatusRunning}

	bad := base
	bad.Status = TimerStatus("Stopped")
	if err := bad.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got: %v", err)
	}

	bad = base
	bad.Duration = 0
	bad.RemainingTime = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got: %v", err)
	}

	bad = base
	bad.RemainingTime = 11
	if err := bad.Validate(); err == nil {
		t.Fatal("expected remaining time range error")
	}

	bad = base
	bad.Name = "   "
	if err := bad.Validate(); err == nil || err.Error() != "model: timer name is required" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTimerHalfwayPointFloors(t *testing.T) {
	cases := []struct {
		duration int
		want     int
	}{
		{10, 5},
		{7, 3},
		{1, 0},
	}
	for _, tc := range cases {
		if got := (Timer{Duration: tc.duration}).HalfwayPoint(); got != tc.want {
			t.Fatalf("halfway(%d) = %d, want %d", tc.duration, got, tc.want)
		}
	}
}

func TestTimerApplyBulkActions(t *testing.T) {
	completed := Timer{ID: "t", Name: "n", Duration: 30, RemainingTime: 0, Status: TimerStatusCompleted}

	started := completed.Apply(BulkActionStart)
	if started.Status != TimerStatusRunning || started.RemainingTime != 0 {
		t.Fatalf("start on completed should resurrect without reset, got %+v", started)
	}

	paused := started.Apply(BulkActionPause)
	if paused.Status != TimerStatusPaused || paused.RemainingTime != 0 {
		t.Fatalf("unexpected pause result: %+v", paused)
	}

	reset := completed.Apply(BulkActionReset)
	if reset.Status != TimerStatusPaused || reset.RemainingTime != 30 {
		t.Fatalf("unexpected reset result: %+v", reset)
	}
}

func TestParseBulkAction(t *testing.T) {
	got, err := ParseBulkAction(" Start ")
	if err != nil || got != BulkActionStart {
		t.Fatalf("expected start, got %q err=%v", got, err)
	}
	if _, err := ParseBulkAction("stop"); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestTimerProgressClamped(t *testing.T) {
	timer := Timer{Duration: 10, RemainingTime: 5}
	if p := timer.Progress(); p != 0.5 {
		t.Fatalf("expected 0.5, got %v", p)
	}
	if p := (Timer{}).Progress(); p != 0 {
		t.Fatalf("expected 0 for zero duration, got %v", p)
	}
}

func TestCompletedTimerEpochMillis(t *testing.T) {
	at := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	row := NewCompletedTimer(Timer{ID: "t-1"}, at)
	if row.CompletedAt != at.UnixMilli() {
		t.Fatalf("unexpected completedAt: %d", row.CompletedAt)
	}
	if !row.CompletedTime().Equal(at) {
		t.Fatalf("unexpected completed time: %s", row.CompletedTime())
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(125); got != "02:05" {
		t.Fatalf("unexpected clock: %q", got)
	}
	if got := FormatClock(-4); got != "00:00" {
		t.Fatalf("unexpected clamped clock: %q", got)
	}
}

package ticker

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/sandeepkv93/timerd/internal/model"
)

func TestTickAdvancesManyTimersExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store, engine := newStoreAndEngine(t)

	const total = 300
	for i := 0; i < total; i++ {
		tm, err := store.Create(ctx, fmt.Sprintf("t-%d", i), 3600+i, "Load")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := store.Start(ctx, tm.ID); err != nil {
			t.Fatalf("start: %v", err)
		}
	}

	for tick := 1; tick <= 3; tick++ {
		engine.Tick(ctx)
		for i, tm := range store.Timers() {
			if want := 3600 + i - tick; tm.RemainingTime != want {
				t.Fatalf("tick %d timer %d: remaining=%d want=%d", tick, i, tm.RemainingTime, want)
			}
		}
	}
}

func TestTickConcurrentWithUserActions(t *testing.T) {
	ctx := context.Background()
	store, engine := newStoreAndEngine(t)

	const total = 200
	for i := 0; i < total; i++ {
		tm, _ := store.Create(ctx, fmt.Sprintf("t-%d", i), 50, fmt.Sprintf("cat-%d", i%4))
		_, _ = store.Start(ctx, tm.ID)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			engine.Tick(ctx)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, _ = store.BulkAction(ctx, fmt.Sprintf("cat-%d", i%4), model.BulkActionReset)
			_, _ = store.BulkAction(ctx, fmt.Sprintf("cat-%d", i%4), model.BulkActionStart)
		}
		for c := 0; c < 4; c++ {
			_, _ = store.BulkAction(ctx, fmt.Sprintf("cat-%d", c), model.BulkActionReset)
		}
	}()
	wg.Wait()

	// the final resets happened while ticks were still running and must stick
	for _, tm := range store.Timers() {
		if err := tm.Validate(); err != nil {
			t.Fatalf("timer left in invalid state: %v", err)
		}
		if tm.Status != model.TimerStatusPaused || tm.RemainingTime != tm.Duration {
			t.Fatalf("reset was overwritten by a tick: %+v", tm)
		}
	}
}

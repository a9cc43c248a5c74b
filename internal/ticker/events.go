package ticker

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/timerd/internal/model"
)

type EventType string

const (
	EventHalfway   EventType = "halfway"
	EventCompleted EventType = "completed"
)

// Event is a threshold crossing observed during one tick. Timer holds the
// post-tick value. Recorded is set on completion events that appended a
// history row.
type Event struct {
	Type     EventType
	Timer    model.Timer
	At       time.Time
	Recorded bool
}

func (e Event) Title() string {
	switch e.Type {
	case EventHalfway:
		return "Halfway there"
	case EventCompleted:
		return "Timer completed"
	default:
		return string(e.Type)
	}
}

func (e Event) Message() string {
	switch e.Type {
	case EventHalfway:
		return fmt.Sprintf("%s is halfway done (%s left)", e.Timer.Name, model.FormatClock(e.Timer.RemainingTime))
	case EventCompleted:
		return fmt.Sprintf("%s has completed", e.Timer.Name)
	default:
		return e.Timer.Name
	}
}

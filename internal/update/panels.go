package update

import (
	"strings"
	"time"

	"github.com/sandeepkv93/timerd/internal/ticker"
	"github.com/sandeepkv93/timerd/internal/views"
)

const (
	maxNotifications = 40
	maxEvents        = 20
)

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) lastNotification() (Notification, bool) {
	if len(m.Notifications) == 0 {
		return Notification{}, false
	}
	return m.Notifications[len(m.Notifications)-1], true
}

// applyEvents records tick events and surfaces each one as a notification.
func (m *Model) applyEvents(events []ticker.Event) {
	for _, ev := range events {
		m.Events = append(m.Events, ev)
		level := "info"
		if ev.Type == ticker.EventCompleted {
			level = "success"
		}
		m.notify(ev.Title(), ev.Message(), level)
		m.Status = StatusBar{Text: ev.Message()}
	}
	if len(m.Events) > maxEvents {
		m.Events = m.Events[len(m.Events)-maxEvents:]
	}
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		if err := m.notifier.Send(n); err != nil {
			m.log.Warn("desktop notification failed", "title", title, "err", err)
		}
	}
}

func (m *Model) setError(err error) {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.log.Error("action failed", "view", string(m.CurrentView), "err", err)
}

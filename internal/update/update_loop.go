package update

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/timerd/internal/model"
	"github.com/sandeepkv93/timerd/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.engine == nil {
		return nil
	}
	return tea.Batch(tickCmd(m.tickInterval), m.runSpinner.Tick)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(at time.Time) tea.Msg { return TickMsg{At: at} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case TickMsg:
		if m.engine == nil {
			return m, nil
		}
		m.applyEvents(m.engine.Tick(m.ctx))
		return m, tickCmd(m.tickInterval)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.runSpinner, cmd = m.runSpinner.Update(typed)
		return m, cmd
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			m.setError(typed.Err)
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Palette.Active {
		if keyStr == m.Keys.Help {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		return m.handlePaletteKey(msg), nil
	}
	if m.Form.Active {
		return m.handleFormKey(msg), nil
	}
	if m.ConfirmClear {
		return m.handleConfirmClearKey(msg), nil
	}

	switch keyStr {
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.Focus()
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active", IsError: false}
		return m, nil
	case m.Keys.Timers:
		m.CurrentView = ViewTimers
		return m, nil
	case m.Keys.History:
		m.CurrentView = ViewHistory
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewTimers:
		return m.handleTimersKey(msg), nil
	case ViewHistory:
		return m.handleHistoryKey(msg), nil
	}
	return m, nil
}

func (m *Model) syncBubbleData() {
	if m.store == nil {
		return
	}
	history := m.store.History()
	m.historyTable.SetRows(historyTableRows(history))
	if len(history) > 0 {
		m.historyTable.SetCursor(clamp(m.HistoryCursor, 0, len(history)-1))
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}

	if t, ok := m.selectedTimer(); ok {
		// re-render only when the detail changed
		if md := views.TimerDetailMarkdown(m.timerDetailData(t)); md != m.detailSource {
			m.detailSource = md
			m.detailView.SetContent(views.RenderMarkdown(md))
		}
	}
}

func (m Model) runningCount() int {
	if m.store == nil {
		return 0
	}
	n := 0
	for _, t := range m.store.Timers() {
		if t.Status == model.TimerStatusRunning {
			n++
		}
	}
	return n
}

func (m Model) View() string {
	if m.store == nil {
		return "timerd: no store configured"
	}

	var leftPane, rightPane string
	switch {
	case m.Form.Active:
		leftPane = m.renderFormView()
	case m.CurrentView == ViewHistory:
		leftPane = m.renderHistoryView()
		rightPane = views.RenderHistoryDetail(m.selectedHistoryRow())
	default:
		leftPane = m.renderTimersView()
		rightPane = m.renderTimerDetail()
	}
	rightPane = strings.TrimSpace(strings.Join([]string{rightPane, m.renderCommandPalette(), m.renderHelpIfVisible()}, "\n\n"))

	data := views.AppData{
		View:        string(m.CurrentView),
		Filter:      m.Filter,
		Running:     m.runningCount(),
		Spinner:     m.runSpinner.View(),
		LeftPane:    leftPane,
		RightPane:   rightPane,
		Status:      m.Status.Text,
		StatusError: m.Status.IsError,
		Keys: []string{
			m.Keys.Timers + " timers",
			m.Keys.History + " history",
			"/ cmd",
			m.Keys.Help + " help",
			m.Keys.Quit + " quit",
		},
	}
	if n, ok := m.lastNotification(); ok {
		data.Notification = views.RenderNotification(n.Level, n.Title, n.Body)
		data.NotificationLevel = n.Level
	}
	return views.RenderApp(data)
}

func isKnownView(v View) bool {
	switch v {
	case ViewTimers, ViewHistory:
		return true
	default:
		return false
	}
}

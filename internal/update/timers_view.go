package update

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/timerd/internal/model"
	"github.com/sandeepkv93/timerd/internal/timers"
	"github.com/sandeepkv93/timerd/internal/views"
)

// timerRow is one cursor stop in the Timers view. A folded category is a
// single row with no timer.
type timerRow struct {
	Category string
	Timer    *model.Timer
}

// timerRows groups the filtered timers by category in first-seen order.
func (m Model) timerRows() []timerRow {
	if m.store == nil {
		return nil
	}
	visible := m.store.Filter(m.Filter)
	order := make([]string, 0)
	grouped := make(map[string][]model.Timer)
	for _, t := range visible {
		if _, ok := grouped[t.Category]; !ok {
			order = append(order, t.Category)
		}
		grouped[t.Category] = append(grouped[t.Category], t)
	}

	rows := make([]timerRow, 0, len(visible))
	for _, cat := range order {
		if m.Collapsed[cat] {
			rows = append(rows, timerRow{Category: cat})
			continue
		}
		for i := range grouped[cat] {
			t := grouped[cat][i]
			rows = append(rows, timerRow{Category: cat, Timer: &t})
		}
	}
	return rows
}

func (m Model) selectedRow() (timerRow, bool) {
	rows := m.timerRows()
	if len(rows) == 0 {
		return timerRow{}, false
	}
	return rows[clamp(m.Cursor, 0, len(rows)-1)], true
}

func (m Model) selectedTimer() (model.Timer, bool) {
	row, ok := m.selectedRow()
	if !ok || row.Timer == nil {
		return model.Timer{}, false
	}
	return *row.Timer, true
}

func (m Model) handleTimersKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		m.Cursor = clamp(m.Cursor+1, 0, len(m.timerRows())-1)
	case "k", "up":
		m.Cursor = clamp(m.Cursor-1, 0, len(m.timerRows())-1)
	case " ":
		m.toggleSelected()
	case "r":
		t, ok := m.selectedTimer()
		if !ok {
			return m
		}
		if _, err := m.store.Reset(m.ctx, t.ID); err != nil {
			m.setError(err)
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("reset %s", t.Name)}
	case "S":
		m.bulkOnSelected(model.BulkActionStart)
	case "P":
		m.bulkOnSelected(model.BulkActionPause)
	case "R":
		m.bulkOnSelected(model.BulkActionReset)
	case "f":
		m.cycleFilter()
	case "z":
		if row, ok := m.selectedRow(); ok {
			m.Collapsed[row.Category] = !m.Collapsed[row.Category]
			m.Cursor = m.rowIndexOfCategory(row.Category)
		}
	case "a":
		m.openForm()
	}
	return m
}

func (m *Model) toggleSelected() {
	t, ok := m.selectedTimer()
	if !ok {
		return
	}
	if t.Status == model.TimerStatusRunning {
		if _, err := m.store.Pause(m.ctx, t.ID); err != nil {
			m.setError(err)
			return
		}
		m.Status = StatusBar{Text: fmt.Sprintf("paused %s", t.Name)}
		return
	}
	if _, err := m.store.Start(m.ctx, t.ID); err != nil {
		if errors.Is(err, timers.ErrTimerCompleted) {
			m.Status = StatusBar{Text: fmt.Sprintf("%s is completed; press r to reset", t.Name), IsError: true}
			return
		}
		m.setError(err)
		return
	}
	m.Status = StatusBar{Text: fmt.Sprintf("started %s", t.Name)}
}

func (m *Model) bulkOnSelected(action model.BulkAction) {
	row, ok := m.selectedRow()
	if !ok {
		return
	}
	n, err := m.store.BulkAction(m.ctx, row.Category, action)
	if err != nil {
		m.setError(err)
		return
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s: %d timer(s) in %s", action, n, row.Category)}
}

func (m *Model) cycleFilter() {
	options := append([]string{model.CategoryAll}, m.store.Categories()...)
	next := 0
	for i, opt := range options {
		if opt == m.Filter {
			next = (i + 1) % len(options)
			break
		}
	}
	m.Filter = options[next]
	m.Cursor = 0
	m.Status = StatusBar{Text: fmt.Sprintf("filter: %s", m.Filter)}
}

func (m Model) rowIndexOfCategory(category string) int {
	for i, row := range m.timerRows() {
		if row.Category == category {
			return i
		}
	}
	return 0
}

func (m Model) renderTimersView() string {
	rows := m.timerRows()
	cursor := clamp(m.Cursor, 0, len(rows)-1)
	groups := make([]views.TimerGroupData, 0)
	index := make(map[string]int)
	counts := make(map[string]int)
	for _, t := range m.store.Filter(m.Filter) {
		counts[t.Category]++
	}
	for i, row := range rows {
		gi, ok := index[row.Category]
		if !ok {
			gi = len(groups)
			index[row.Category] = gi
			groups = append(groups, views.TimerGroupData{
				Category:  row.Category,
				Count:     counts[row.Category],
				Collapsed: m.Collapsed[row.Category],
			})
		}
		if row.Timer == nil {
			groups[gi].Selected = i == cursor
			continue
		}
		t := *row.Timer
		groups[gi].Timers = append(groups[gi].Timers, views.TimerRowData{
			ID:       t.ID,
			Name:     t.Name,
			Clock:    model.FormatClock(t.RemainingTime),
			Status:   string(t.Status),
			Progress: progressBar(remainingFraction(t), 30),
			Selected: i == cursor,
		})
	}
	return views.RenderTimersPanel(views.TimersPanelData{Filter: m.Filter, Groups: groups})
}

func (m Model) renderTimerDetail() string {
	t, ok := m.selectedTimer()
	if !ok {
		return "detail:\n(no selection)"
	}
	return fmt.Sprintf("detail:\n%s\n\n%s", m.timerProgress.ViewAs(t.Progress()), m.detailView.View())
}

func (m Model) timerDetailData(t model.Timer) views.TimerDetailData {
	halfway := false
	if m.engine != nil {
		halfway = m.engine.HalfwayNotified(t.ID)
	}
	return views.TimerDetailData{
		Name:      t.Name,
		Category:  t.Category,
		Duration:  model.FormatClock(t.Duration),
		Remaining: model.FormatClock(t.RemainingTime),
		Status:    string(t.Status),
		Halfway:   halfway,
		Progress:  int(t.Progress() * 100),
	}
}

// remainingFraction drains from full to empty as the timer runs.
func remainingFraction(t model.Timer) float64 {
	if t.Duration <= 0 {
		return 0
	}
	return float64(t.RemainingTime) / float64(t.Duration)
}

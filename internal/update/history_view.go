package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/timerd/internal/model"
	"github.com/sandeepkv93/timerd/internal/views"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func (m Model) handleHistoryKey(msg tea.KeyMsg) Model {
	history := m.store.History()
	switch msg.String() {
	case "j", "down":
		m.HistoryCursor = clamp(m.HistoryCursor+1, 0, len(history)-1)
	case "k", "up":
		m.HistoryCursor = clamp(m.HistoryCursor-1, 0, len(history)-1)
	case "d":
		if len(history) == 0 {
			return m
		}
		row := history[clamp(m.HistoryCursor, 0, len(history)-1)]
		removed := m.store.RemoveHistoryItem(m.ctx, row.ID)
		m.HistoryCursor = clamp(m.HistoryCursor, 0, len(history)-removed-1)
		m.Status = StatusBar{Text: fmt.Sprintf("removed %s from history", row.Name)}
	case "X":
		if len(history) == 0 {
			m.Status = StatusBar{Text: "history is already empty"}
			return m
		}
		m.ConfirmClear = true
		m.Status = StatusBar{Text: "clear all history? y/n"}
	}
	return m
}

func (m Model) handleConfirmClearKey(msg tea.KeyMsg) Model {
	m.ConfirmClear = false
	if msg.String() == "y" || msg.String() == "Y" {
		m.store.ClearHistory(m.ctx)
		m.HistoryCursor = 0
		m.Status = StatusBar{Text: "history cleared"}
		return m
	}
	m.Status = StatusBar{Text: "clear cancelled"}
	return m
}

func historyRow(c model.CompletedTimer) views.HistoryRowData {
	return views.HistoryRowData{
		ID:          c.ID,
		Name:        c.Name,
		Category:    c.Category,
		Duration:    model.FormatClock(c.Duration),
		CompletedAt: c.CompletedTime().Local().Format(historyTimeLayout),
	}
}

func historyTableRows(history []model.CompletedTimer) []table.Row {
	rows := make([]table.Row, 0, len(history))
	for _, c := range history {
		r := historyRow(c)
		rows = append(rows, table.Row{r.Name, r.Category, r.Duration, r.CompletedAt})
	}
	return rows
}

func (m Model) selectedHistoryRow() *views.HistoryRowData {
	history := m.store.History()
	if len(history) == 0 {
		return nil
	}
	row := historyRow(history[clamp(m.HistoryCursor, 0, len(history)-1)])
	return &row
}

func (m Model) renderHistoryView() string {
	return views.RenderHistoryPanel(views.HistoryPanelData{
		TableView:    m.historyTable.View(),
		Count:        len(m.store.History()),
		Selected:     m.selectedHistoryRow(),
		ConfirmClear: m.ConfirmClear,
	})
}

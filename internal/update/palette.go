package update

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/natefinch/atomic"

	"github.com/sandeepkv93/timerd/internal/commands"
	"github.com/sandeepkv93/timerd/internal/model"
	"github.com/sandeepkv93/timerd/internal/timers"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func invalidArg(format string, args ...any) error {
	return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.closePalette()
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			input, err := model.ValidateTimerForm(a.Name, a.DurationText, a.Category)
			if err != nil {
				var fe *model.FormError
				if errors.As(err, &fe) {
					return commands.Result{}, invalidArg("%s", fe.Message)
				}
				return commands.Result{}, err
			}
			t, err := m.store.Create(m.ctx, input.Name, input.Duration, input.Category)
			if err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewTimers
			return commands.Result{Message: fmt.Sprintf("added %s (%s, %s)", t.Name, model.FormatClock(t.Duration), t.Category)}, nil
		},
		Bulk: func(b commands.BulkArgs) (commands.Result, error) {
			n, err := m.store.BulkAction(m.ctx, b.Category, b.Action)
			if err != nil {
				return commands.Result{}, err
			}
			if n == 0 {
				return commands.Result{}, invalidArg("no timers in category %s", b.Category)
			}
			return commands.Result{Message: fmt.Sprintf("%s: %d timer(s) in %s", b.Action, n, b.Category)}, nil
		},
		Filter: func(f commands.FilterArgs) (commands.Result, error) {
			if f.Category != model.CategoryAll && !contains(m.store.Categories(), f.Category) {
				return commands.Result{}, invalidArg("unknown category %s", f.Category)
			}
			m.Filter = f.Category
			m.Cursor = 0
			m.CurrentView = ViewTimers
			return commands.Result{Message: fmt.Sprintf("filter: %s", f.Category)}, nil
		},
		Remove: func(r commands.RemoveArgs) (commands.Result, error) {
			n := m.store.RemoveHistoryItem(m.ctx, r.ID)
			if n == 0 {
				return commands.Result{}, invalidArg("no history entry with id %s", r.ID)
			}
			m.HistoryCursor = 0
			return commands.Result{Message: fmt.Sprintf("removed %d history row(s) for %s", n, r.ID)}, nil
		},
		ClearHistory: func() (commands.Result, error) {
			m.store.ClearHistory(m.ctx)
			m.HistoryCursor = 0
			return commands.Result{Message: "history cleared"}, nil
		},
		Export: func(e commands.ExportArgs) (commands.Result, error) {
			format, err := timers.ParseExportFormat(e.Format)
			if err != nil {
				return commands.Result{}, invalidArg("%v", err)
			}
			history := m.store.History()
			var buf bytes.Buffer
			if err := timers.ExportHistory(&buf, history, format); err != nil {
				return commands.Result{}, err
			}
			if err := atomic.WriteFile(e.Path, &buf); err != nil {
				return commands.Result{}, fmt.Errorf("export %s: %w", e.Path, err)
			}
			return commands.Result{Message: fmt.Sprintf("exported %d history row(s) to %s", len(history), e.Path)}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			if s.View == "history" {
				m.CurrentView = ViewHistory
			} else {
				m.CurrentView = ViewTimers
			}
			return commands.Result{Message: fmt.Sprintf("showing %s", s.View)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
		m.notify("Command", res.Message, "info")
	}

	m.closePalette()
	return m
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

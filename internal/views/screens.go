package views

import (
	"fmt"
	"strings"
)

type TimerRowData struct {
	ID       string
	Name     string
	Clock    string
	Status   string
	Progress string
	Selected bool
}

type TimerGroupData struct {
	Category  string
	Count     int
	Collapsed bool
	Selected  bool
	Timers    []TimerRowData
}

type TimersPanelData struct {
	Filter string
	Groups []TimerGroupData
}

type TimerDetailData struct {
	Name      string
	Category  string
	Duration  string
	Remaining string
	Status    string
	Halfway   bool
	Progress  int
}

type HistoryRowData struct {
	ID          string
	Name        string
	Category    string
	Duration    string
	CompletedAt string
}

type HistoryPanelData struct {
	TableView    string
	Count        int
	Selected     *HistoryRowData
	ConfirmClear bool
}

type FormPanelData struct {
	Field         string
	NameView      string
	DurationView  string
	CategoryView  string
	Categories    []string
	CategoryIndex int
	Custom        bool
	ErrorText     string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTimersPanel(data TimersPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("timers: (filter: %s)\n", data.Filter))
	b.WriteString("actions: [space]start/pause [r]reset [S/P/R]bulk [f]filter [a]add [z]fold\n")
	if len(data.Groups) == 0 {
		b.WriteString("\nNo timers yet\npress [a] to create your first timer")
		return b.String()
	}
	for _, g := range data.Groups {
		marker := "v"
		if g.Collapsed {
			marker = ">"
		}
		cursor := " "
		if g.Selected {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("\n%s %s %s (%d timers)\n", cursor, marker, g.Category, g.Count))
		if g.Collapsed {
			continue
		}
		for _, t := range g.Timers {
			cursor := " "
			name := t.Name
			if t.Selected {
				cursor = ">"
				name = selectedStyle.Render(name)
			}
			b.WriteString(fmt.Sprintf("  %s %s %s %s\n", cursor, name, t.Clock, StatusLabel(t.Status)))
			if t.Progress != "" {
				b.WriteString("      " + t.Progress + "\n")
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// TimerDetailMarkdown is the detail pane source, rendered through glamour.
func TimerDetailMarkdown(data TimerDetailData) string {
	if data.Name == "" {
		return "_No timer selected_"
	}
	halfway := "no"
	if data.Halfway {
		halfway = "yes"
	}
	return fmt.Sprintf("## %s\n\n| | |\n|---|---|\n| Category | %s |\n| Duration | %s |\n| Remaining | %s |\n| Status | %s |\n| Progress | %d%% |\n| Halfway notified | %s |\n",
		data.Name, data.Category, data.Duration, data.Remaining, data.Status, data.Progress, halfway)
}

func RenderHistoryPanel(data HistoryPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("history: %d completed\n", data.Count))
	b.WriteString("actions: [j/k]move [d]remove [X]clear all\n")
	if data.Count == 0 {
		b.WriteString("\nNo history yet\ncompleted timers will appear here")
		return b.String()
	}
	b.WriteString(data.TableView + "\n")
	if data.ConfirmClear {
		b.WriteString("\nclear all history? [y]es / [n]o\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderHistoryDetail(row *HistoryRowData) string {
	if row == nil {
		return "history-detail:\n(no selection)"
	}
	return fmt.Sprintf("history-detail:\nid: %s\nname: %s\ncategory: %s\nduration: %s\ncompleted: %s",
		row.ID, row.Name, row.Category, row.Duration, row.CompletedAt)
}

func RenderFormPanel(data FormPanelData) string {
	var b strings.Builder
	b.WriteString("add timer:\n")
	b.WriteString("keys: [tab]next field [left/right]category [ctrl+e]custom [enter]save [esc]cancel\n\n")
	b.WriteString(fieldLine(data.Field == "name", data.NameView))
	b.WriteString(fieldLine(data.Field == "duration", data.DurationView))
	if data.Custom {
		b.WriteString(fieldLine(data.Field == "category", data.CategoryView))
	} else {
		opts := make([]string, 0, len(data.Categories))
		for i, c := range data.Categories {
			if i == data.CategoryIndex {
				c = "[" + c + "]"
			}
			opts = append(opts, c)
		}
		b.WriteString(fieldLine(data.Field == "category", "category> "+strings.Join(opts, " ")))
	}
	if data.ErrorText != "" {
		b.WriteString("\n" + errorStyle.Render(data.ErrorText) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func fieldLine(active bool, view string) string {
	if active {
		return "> " + view + "\n"
	}
	return "  " + view + "\n"
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, title string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s: %s", strings.ToUpper(level), title, body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

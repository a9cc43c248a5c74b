package views

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	paneWidth   = 58
	detailWidth = paneWidth - 4
)

// AppData is everything the frame needs; panes arrive pre-rendered.
type AppData struct {
	View    string
	Filter  string
	Running int
	Spinner string

	LeftPane  string
	RightPane string

	Status      string
	StatusError bool

	Notification      string
	NotificationLevel string

	Keys []string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4caf50"))
	pausedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff9800"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9e9e9e"))
	selectedStyle  = lipgloss.NewStyle().Bold(true)

	levelColors = map[string]lipgloss.Color{
		"success": lipgloss.Color("#4caf50"),
		"error":   lipgloss.Color("9"),
		"info":    lipgloss.Color("12"),
	}
)

func RenderApp(data AppData) string {
	header := fmt.Sprintf("timerd | view: %s | filter: %s", data.View, data.Filter)
	if data.Running > 0 {
		header += fmt.Sprintf(" | %s %d running", data.Spinner, data.Running)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(paneWidth).Render(data.LeftPane),
		panelStyle.Width(paneWidth).Render(data.RightPane),
	)

	lines := []string{headerStyle.Render(header), row}
	if data.Status != "" {
		style := statusStyle
		if data.StatusError {
			style = errorStyle
		}
		lines = append(lines, style.Render("status: "+data.Status))
	}
	if data.Notification != "" {
		box := panelStyle
		if c, ok := levelColors[data.NotificationLevel]; ok {
			box = box.BorderForeground(c)
		}
		lines = append(lines, box.Render(data.Notification))
	}
	if len(data.Keys) > 0 {
		lines = append(lines, footerStyle.Render("keys: "+strings.Join(data.Keys, " | ")))
	}
	return strings.Join(lines, "\n")
}

// StatusLabel colors a timer status the way the list shows it.
func StatusLabel(status string) string {
	switch status {
	case "Running":
		return runningStyle.Render(status)
	case "Paused":
		return pausedStyle.Render(status)
	case "Completed":
		return completedStyle.Render(status)
	default:
		return status
	}
}

var (
	mdOnce     sync.Once
	mdRenderer *glamour.TermRenderer
)

// RenderMarkdown renders the detail pane. Falls back to the raw source when
// glamour cannot render it.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	mdOnce.Do(func() {
		mdRenderer, _ = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(detailWidth),
		)
	})
	if mdRenderer == nil {
		return md
	}
	out, err := mdRenderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

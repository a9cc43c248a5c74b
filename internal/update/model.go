package update

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/timerd/internal/model"
	"github.com/sandeepkv93/timerd/internal/ticker"
	"github.com/sandeepkv93/timerd/internal/timers"
)

type View string

const (
	ViewTimers  View = "Timers"
	ViewHistory View = "History"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Timers  string
	History string
	Help    string
	Quit    string
}

// FormState is the add-timer form. Category is either one of
// model.DefaultCategories (CategoryIndex) or free text when Custom is set.
type FormState struct {
	Active        bool
	Field         model.FormField
	CategoryIndex int
	Custom        bool
	Err           string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentView    View
	Filter         string
	Cursor         int
	HistoryCursor  int
	Collapsed      map[string]bool
	Form           FormState
	ConfirmClear   bool
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	Events         []ticker.Event
	DesktopEnabled bool
	notifier       DesktopNotifier
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	store        *timers.Store
	engine       *ticker.Engine
	ctx          context.Context
	log          *slog.Logger
	tickInterval time.Duration

	historyTable  table.Model
	nameInput     textinput.Model
	durationInput textinput.Model
	categoryInput textinput.Model
	commandInput  textinput.Model
	timerProgress progress.Model
	runSpinner    spinner.Model
	helpModel     help.Model
	detailView    viewport.Model
	detailSource  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// TickMsg drives one engine pass on the Bubble Tea loop.
type TickMsg struct {
	At time.Time
}

func NewModel(store *timers.Store, engine *ticker.Engine) Model {
	return NewModelWithConfig(store, engine, nil, DefaultRuntimeConfig(), nil)
}

func NewModelWithConfig(store *timers.Store, engine *ticker.Engine, notifier DesktopNotifier, cfg RuntimeConfig, log *slog.Logger) Model {
	m := Model{
		CurrentView:    ViewTimers,
		Filter:         model.CategoryAll,
		Collapsed:      make(map[string]bool),
		Form:           FormState{Field: model.FormFieldName},
		DesktopEnabled: cfg.DesktopNotifications,
		notifier:       NoopDesktopNotifier{},
		Keys: GlobalKeyMap{
			Timers:  "1",
			History: "2",
			Help:    "?",
			Quit:    "q",
		},
		store:        store,
		engine:       engine,
		ctx:          context.Background(),
		log:          log,
		tickInterval: cfg.TickInterval,
	}
	if notifier != nil {
		m.notifier = notifier
	}
	if m.log == nil {
		m.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.tickInterval <= 0 {
		m.tickInterval = ticker.DefaultInterval
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Name", Width: 16},
		{Title: "Category", Width: 10},
		{Title: "Duration", Width: 8},
		{Title: "Completed", Width: 19},
	}
	m.historyTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.nameInput = textinput.New()
	m.nameInput.Prompt = "name> "
	m.nameInput.Placeholder = "Sprint"
	m.nameInput.CharLimit = 64
	m.nameInput.Width = 40

	m.durationInput = textinput.New()
	m.durationInput.Prompt = "seconds> "
	m.durationInput.Placeholder = "300"
	m.durationInput.CharLimit = 9
	m.durationInput.Width = 12

	m.categoryInput = textinput.New()
	m.categoryInput.Prompt = "category> "
	m.categoryInput.CharLimit = 32
	m.categoryInput.Width = 24

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.timerProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	m.runSpinner = spinner.New()
	m.runSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detailView = viewport.New(54, 10)
}

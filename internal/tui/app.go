package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/seerrpad/internal/input"
	"github.com/mmcdole/seerrpad/internal/kiosk"
	"github.com/mmcdole/seerrpad/internal/nav"
)

// Pad is a polled controller
type Pad interface {
	Poll() []input.Event
	Stick() (x, y float64)
	Done() <-chan struct{}
}

// Options configure the Model
type Options struct {
	FPS      int
	Deadzone float64
}

// Model is the Bubble Tea model wrapping the kiosk engine. Key presses are
// buffered and handed to the engine on the next tick together with
// controller input, so every source goes through the same debounce.
type Model struct {
	engine *kiosk.Engine
	pad    Pad
	opts   Options
	logger *slog.Logger

	pending []input.Event
	frame   kiosk.Frame

	width, height int
	ready         bool

	posters *posterRenderer
	fps     *fpsMonitor
}

// NewModel creates the model. pad may be nil for keyboard-only use.
func NewModel(engine *kiosk.Engine, pad Pad, opts Options, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Deadzone <= 0 || opts.Deadzone >= 1 {
		opts.Deadzone = 0.35
	}
	return Model{
		engine:  engine,
		pad:     pad,
		opts:    opts,
		logger:  logger,
		posters: newPosterRenderer(),
		fps:     newFPSMonitor(opts.FPS, logger),
	}
}

func (m Model) interval() time.Duration {
	return time.Second / time.Duration(m.opts.FPS)
}

// Init starts the frame clock
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{TickCmd(m.interval())}
	if m.pad != nil {
		cmds = append(cmds, WaitPadCmd(m.pad.Done()))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, Keys.Force) {
			m.logger.Info("quit requested from keyboard")
			return m, tea.Quit
		}
		m.pending = append(m.pending, m.keyEvents(msg)...)
		return m, nil

	case PadLostMsg:
		m.logger.Warn("controller disconnected, keyboard only")
		m.pad = nil
		return m, nil

	case TickMsg:
		now := time.Time(msg)
		events := m.pending
		m.pending = nil
		if m.pad != nil {
			events = append(events, m.pad.Poll()...)
			x, y := m.pad.Stick()
			if action, ok := input.StickDirection(x, y, m.opts.Deadzone); ok {
				events = append(events, input.Event{Action: action, Source: input.SourceStick})
			}
		}

		m.frame = m.engine.Tick(now, events)
		m.fps.Record(now)

		if m.frame.Quit {
			m.logger.Info("quit requested")
			return m, tea.Quit
		}
		return m, TickCmd(m.interval())
	}

	return m, nil
}

// keyEvents maps a key press to engine input. On the keyboard screen
// printable keys type instead of navigating.
func (m Model) keyEvents(msg tea.KeyMsg) []input.Event {
	typing := m.engine.State().Current() == nav.ScreenKeyboard
	ev := func(a input.Action) []input.Event {
		return []input.Event{{Action: a, Source: input.SourceKeyboard}}
	}

	if typing {
		if key.Matches(msg, Keys.Erase) {
			return ev(input.ActionErase)
		}
		if key.Matches(msg, Keys.Submit) {
			return ev(input.ActionSubmit)
		}
		switch msg.Type {
		case tea.KeyRunes:
			out := make([]input.Event, 0, len(msg.Runes))
			for _, r := range msg.Runes {
				out = append(out, input.Event{Action: input.ActionType, Rune: r, Source: input.SourceKeyboard})
			}
			return out
		case tea.KeySpace:
			return []input.Event{{Action: input.ActionType, Rune: ' ', Source: input.SourceKeyboard}}
		case tea.KeyUp:
			return ev(input.ActionUp)
		case tea.KeyDown:
			return ev(input.ActionDown)
		case tea.KeyLeft:
			return ev(input.ActionLeft)
		case tea.KeyRight:
			return ev(input.ActionRight)
		case tea.KeyEnter:
			return ev(input.ActionSelect)
		case tea.KeyEsc:
			return ev(input.ActionBack)
		}
		return nil
	}

	switch {
	case key.Matches(msg, Keys.Up):
		return ev(input.ActionUp)
	case key.Matches(msg, Keys.Down):
		return ev(input.ActionDown)
	case key.Matches(msg, Keys.Left):
		return ev(input.ActionLeft)
	case key.Matches(msg, Keys.Right):
		return ev(input.ActionRight)
	case key.Matches(msg, Keys.Select):
		return ev(input.ActionSelect)
	case key.Matches(msg, Keys.Back):
		return ev(input.ActionBack)
	case key.Matches(msg, Keys.Quit):
		return ev(input.ActionQuit)
	}
	return nil
}

// Frame returns the last frame produced by the engine
func (m Model) Frame() kiosk.Frame {
	return m.frame
}

package tui

import (
	"bytes"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/seerrpad/internal/imagecache"
	"github.com/mmcdole/seerrpad/internal/input"
	"github.com/mmcdole/seerrpad/internal/kiosk"
	"github.com/mmcdole/seerrpad/internal/nav"
	"github.com/mmcdole/seerrpad/internal/task"
)

type stubTasks struct {
	dispatched []task.Kind
}

func (s *stubTasks) Dispatch(kind task.Kind, _ task.Params) uint64 {
	s.dispatched = append(s.dispatched, kind)
	return uint64(len(s.dispatched))
}

func (s *stubTasks) DispatchImage(string) (uint64, bool) { return 0, false }
func (s *stubTasks) Drain() []task.Result                { return nil }

type stubURLs struct{}

func (stubURLs) PosterURL(path string) string { return "https://img.test" + path }

type stubPad struct {
	events []input.Event
	x, y   float64
	done   chan struct{}
}

func (p *stubPad) Poll() []input.Event {
	out := p.events
	p.events = nil
	return out
}

func (p *stubPad) Stick() (float64, float64) { return p.x, p.y }
func (p *stubPad) Done() <-chan struct{}     { return p.done }

func newTestModel(t *testing.T, pad Pad) (Model, *stubTasks) {
	t.Helper()
	tasks := &stubTasks{}
	cache := imagecache.New(4, imagecache.Placeholder(8, 12), nil, nil)
	engine := kiosk.NewEngine(tasks, cache, stubURLs{}, kiosk.Options{}, nil)
	return NewModel(engine, pad, Options{FPS: 30}, nil), tasks
}

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func tick(t *testing.T, m Model, at time.Time) Model {
	t.Helper()
	next, cmd := m.Update(TickMsg(at))
	require.NotNil(t, cmd)
	return next.(Model)
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyEvents_MenuNavigation(t *testing.T) {
	m, _ := newTestModel(t, nil)

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want input.Action
	}{
		{"arrow down", tea.KeyMsg{Type: tea.KeyDown}, input.ActionDown},
		{"vim down", runes("j"), input.ActionDown},
		{"vim up", runes("k"), input.ActionUp},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, input.ActionSelect},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, input.ActionBack},
		{"q", runes("q"), input.ActionQuit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs := m.keyEvents(tt.msg)
			require.Len(t, evs, 1)
			assert.Equal(t, tt.want, evs[0].Action)
			assert.Equal(t, input.SourceKeyboard, evs[0].Source)
		})
	}

	assert.Empty(t, m.keyEvents(runes("x")))
}

func TestKeyEvents_KeyboardScreenTypes(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = tick(t, m, t0)
	require.Equal(t, nav.ScreenKeyboard, m.Frame().Screen)

	evs := m.keyEvents(runes("qj"))
	require.Len(t, evs, 2)
	assert.Equal(t, input.ActionType, evs[0].Action)
	assert.Equal(t, 'q', evs[0].Rune)
	assert.Equal(t, 'j', evs[1].Rune)

	evs = m.keyEvents(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.Len(t, evs, 1)
	assert.Equal(t, ' ', evs[0].Rune)

	evs = m.keyEvents(tea.KeyMsg{Type: tea.KeyBackspace})
	require.Len(t, evs, 1)
	assert.Equal(t, input.ActionErase, evs[0].Action)

	evs = m.keyEvents(tea.KeyMsg{Type: tea.KeyEsc})
	require.Len(t, evs, 1)
	assert.Equal(t, input.ActionBack, evs[0].Action)

	evs = m.keyEvents(tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, evs, 1)
	assert.Equal(t, input.ActionSelect, evs[0].Action, "enter presses the highlighted key")

	evs = m.keyEvents(tea.KeyMsg{Type: tea.KeyTab})
	require.Len(t, evs, 1)
	assert.Equal(t, input.ActionSubmit, evs[0].Action)
}

func TestUpdate_TypedQueryReachesEngine(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = tick(t, m, t0)

	m = press(m, runes("Dune"))
	m = tick(t, m, t0.Add(100*time.Millisecond))

	require.NotNil(t, m.Frame().Keyboard)
	assert.Equal(t, "dune", m.Frame().Keyboard.Query)
}

func TestUpdate_KeysWaitForTick(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.engine.State().Selected())

	m = tick(t, m, t0)
	assert.Equal(t, 1, m.Frame().Selected)
}

func TestUpdate_PadInput(t *testing.T) {
	pad := &stubPad{
		events: []input.Event{{Action: input.ActionDown, Source: input.SourcePad}},
		done:   make(chan struct{}),
	}
	m, _ := newTestModel(t, pad)

	m = tick(t, m, t0)
	assert.Equal(t, 1, m.Frame().Selected)

	pad.y = 0.9
	m = tick(t, m, t0.Add(time.Second))
	assert.Equal(t, 2, m.Frame().Selected, "stick past the deadzone moves down")

	pad.y = 0.1
	m = tick(t, m, t0.Add(2*time.Second))
	assert.Equal(t, 2, m.Frame().Selected, "stick inside the deadzone is ignored")
}

func TestUpdate_BrowseDispatchesTask(t *testing.T) {
	m, tasks := newTestModel(t, nil)
	m = press(m, runes("j"))
	m = press(m, runes("j"))
	m = tick(t, m, t0)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = tick(t, m, t0.Add(time.Second))

	assert.Equal(t, nav.ScreenBrowse, m.Frame().Screen)
	assert.Equal(t, []task.Kind{task.KindListPopular}, tasks.dispatched)
}

func TestUpdate_QuitFromMenu(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = press(m, runes("q"))

	_, cmd := m.Update(TickMsg(t0))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_CtrlCQuitsImmediately(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_PadLostFallsBackToKeyboard(t *testing.T) {
	pad := &stubPad{done: make(chan struct{})}
	m, _ := newTestModel(t, pad)

	next, _ := m.Update(PadLostMsg{})
	m = next.(Model)
	assert.Nil(t, m.pad)

	m = tick(t, m, t0)
	assert.Equal(t, nav.ScreenMainMenu, m.Frame().Screen)
}

func TestWaitPadCmd(t *testing.T) {
	assert.Nil(t, WaitPadCmd(nil))

	done := make(chan struct{})
	close(done)
	assert.Equal(t, PadLostMsg{}, WaitPadCmd(done)())
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = tick(t, next.(Model), t0)

	view := m.View()
	assert.Contains(t, view, "Jellyseerr")
	assert.Contains(t, view, "Search Movies")
	assert.Contains(t, view, "Exit")

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = tick(t, m, t0.Add(time.Second))
	view = m.View()
	assert.Contains(t, view, "SEARCH")
	assert.Contains(t, view, "CANCEL")
	assert.Contains(t, view, "SPACE")
}

func TestFPSMonitor_WarnsWhenSlow(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	mon := newFPSMonitor(30, logger)

	now := t0
	mon.Record(now)
	var measured bool
	for i := 0; i < fpsWindow; i++ {
		now = now.Add(100 * time.Millisecond)
		_, measured = mon.Record(now)
	}
	require.True(t, measured)
	assert.InDelta(t, 10.0, mon.Last(), 0.01)
	assert.Contains(t, buf.String(), "frame rate below target")
}

func TestFPSMonitor_QuietAtTarget(t *testing.T) {
	var buf bytes.Buffer
	mon := newFPSMonitor(20, slog.New(slog.NewTextHandler(&buf, nil)))

	now := t0
	mon.Record(now)
	for i := 0; i < fpsWindow; i++ {
		now = now.Add(50 * time.Millisecond)
		mon.Record(now)
	}
	assert.InDelta(t, 20.0, mon.Last(), 0.01)
	assert.Empty(t, buf.String())
}

func TestPosterRenderer(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}

	p := newPosterRenderer()
	out := p.Render("poster", img, 6, 4)
	assert.Len(t, strings.Split(out, "\n"), 4)
	assert.Contains(t, out, halfBlock)
	assert.Len(t, p.cache, 1)

	assert.Equal(t, out, p.Render("poster", img, 6, 4))
	assert.Len(t, p.cache, 1)

	p.Render("", img, 6, 4)
	assert.Len(t, p.cache, 1, "empty key is not cached")

	assert.Empty(t, p.Render("x", nil, 6, 4))
	assert.Empty(t, p.Render("x", img, 0, 4))
}

func TestPosterSize(t *testing.T) {
	cols, rows := posterSize(120, 40)
	assert.Equal(t, 24, cols)
	assert.Equal(t, 18, rows)

	cols, rows = posterSize(30, 40)
	assert.Equal(t, 10, cols)
	assert.Equal(t, 7, rows)

	cols, rows = posterSize(120, 9)
	assert.Equal(t, 12, cols)
	assert.Equal(t, 9, rows)

	cols, rows = posterSize(0, 10)
	assert.Zero(t, cols)
	assert.Zero(t, rows)
}

func TestRenderHint(t *testing.T) {
	out := renderHint("A select   START quit")
	assert.Contains(t, out, "select")
	assert.Contains(t, out, "START")
}

var _ kiosk.Dispatcher = (*stubTasks)(nil)

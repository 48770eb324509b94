package input

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Linux joystick API (linux/joystick.h)
const (
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80

	jsEventSize = 8
	axisMax     = 32767

	axisStickX = 0
	axisStickY = 1
	axisHatX   = 6
	axisHatY   = 7

	// hat axes report full deflection; anything past half counts as pressed
	hatThreshold = axisMax / 2
)

// Event kinds returned by RawEvent.Kind
const (
	RawButton uint8 = jsEventButton
	RawAxis   uint8 = jsEventAxis
)

// RawEvent is one decoded js_event
type RawEvent struct {
	Time   uint32 // ms
	Value  int16
	Type   uint8
	Number uint8
}

// IsInit reports whether the kernel synthesised the event to report initial state
func (e RawEvent) IsInit() bool {
	return e.Type&jsEventInit != 0
}

// Kind returns the event type without the init flag
func (e RawEvent) Kind() uint8 {
	return e.Type &^ jsEventInit
}

// DecodeRawEvent parses an 8 byte js_event
func DecodeRawEvent(b []byte) (RawEvent, error) {
	if len(b) < jsEventSize {
		return RawEvent{}, fmt.Errorf("short joystick event: %d bytes", len(b))
	}
	return RawEvent{
		Time:   binary.LittleEndian.Uint32(b[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(b[4:6])),
		Type:   b[6],
		Number: b[7],
	}, nil
}

// ReadRawEvent blocks until one full js_event has been read from r
func ReadRawEvent(r io.Reader) (RawEvent, error) {
	var buf [jsEventSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return RawEvent{}, err
	}
	return DecodeRawEvent(buf[:])
}

// Gamepad reads a joystick device in the background. Button and hat
// presses are queued as events; stick position is kept as the latest sample.
type Gamepad struct {
	src     io.ReadCloser
	profile ControllerProfile
	name    string
	logger  *slog.Logger

	mu     sync.Mutex
	queue  []Event
	stickX atomic.Int32
	stickY atomic.Int32

	done chan struct{}
}

// OpenGamepad opens device and starts reading it. configuredProfile is the
// controller.profile setting; "auto" detects from the device name.
func OpenGamepad(device, configuredProfile string, logger *slog.Logger) (*Gamepad, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open joystick %s: %w", device, err)
	}
	name := DeviceName(device)
	profile := ResolveProfile(configuredProfile, name)
	return NewGamepad(f, name, profile, logger), nil
}

// NewGamepad starts reading js_events from src
func NewGamepad(src io.ReadCloser, name string, profile ControllerProfile, logger *slog.Logger) *Gamepad {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gamepad{
		src:     src,
		profile: profile,
		name:    name,
		logger:  logger,
		done:    make(chan struct{}),
	}
	logger.Info("controller connected", "name", name, "profile", profile.ID)
	go g.readLoop()
	return g
}

func (g *Gamepad) readLoop() {
	defer close(g.done)

	for {
		ev, err := ReadRawEvent(g.src)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, os.ErrClosed) {
				g.logger.Warn("controller read failed", "error", err)
			}
			return
		}
		g.handle(ev)
	}
}

func (g *Gamepad) handle(ev RawEvent) {
	if ev.IsInit() {
		// initial axis positions are still worth keeping
		if ev.Kind() == jsEventAxis {
			g.storeAxis(ev)
		}
		return
	}

	switch ev.Kind() {
	case jsEventButton:
		if ev.Value == 0 {
			return
		}
		if action, ok := g.profile.ButtonAction(ev.Number); ok {
			g.push(Event{Action: action, Source: SourcePad})
		}
	case jsEventAxis:
		switch ev.Number {
		case axisHatX:
			if ev.Value <= -hatThreshold {
				g.push(Event{Action: ActionLeft, Source: SourcePad})
			} else if ev.Value >= hatThreshold {
				g.push(Event{Action: ActionRight, Source: SourcePad})
			}
		case axisHatY:
			if ev.Value <= -hatThreshold {
				g.push(Event{Action: ActionUp, Source: SourcePad})
			} else if ev.Value >= hatThreshold {
				g.push(Event{Action: ActionDown, Source: SourcePad})
			}
		default:
			g.storeAxis(ev)
		}
	}
}

func (g *Gamepad) storeAxis(ev RawEvent) {
	switch ev.Number {
	case axisStickX:
		g.stickX.Store(int32(ev.Value))
	case axisStickY:
		g.stickY.Store(int32(ev.Value))
	}
}

func (g *Gamepad) push(ev Event) {
	g.mu.Lock()
	g.queue = append(g.queue, ev)
	g.mu.Unlock()
}

// Poll returns and clears the queued events
func (g *Gamepad) Poll() []Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) == 0 {
		return nil
	}
	out := g.queue
	g.queue = nil
	return out
}

// Stick returns the left stick position normalised to [-1, 1]
func (g *Gamepad) Stick() (x, y float64) {
	return normalise(g.stickX.Load()), normalise(g.stickY.Load())
}

func normalise(v int32) float64 {
	f := float64(v) / axisMax
	if f < -1 {
		return -1
	}
	return f
}

// Name is the device name reported by the kernel
func (g *Gamepad) Name() string {
	return g.name
}

// Profile is the button mapping in use
func (g *Gamepad) Profile() ControllerProfile {
	return g.profile
}

// Done is closed when the reader stops (device unplugged or closed)
func (g *Gamepad) Done() <-chan struct{} {
	return g.done
}

// Close releases the device; the reader exits once its pending read fails
func (g *Gamepad) Close() error {
	return g.src.Close()
}

// DeviceName reads the kernel's name for a joystick device such as
// /dev/input/js0. It returns "" when sysfs has nothing.
func DeviceName(device string) string {
	data, err := os.ReadFile(filepath.Join("/sys/class/input", filepath.Base(device), "device", "name"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

package input

// Action is a kiosk-level input, independent of the device that produced it
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionSelect
	ActionBack
	ActionQuit
	ActionType  // Rune carries the character
	ActionErase  // backspace while typing
	ActionSubmit // run the typed search without moving to the SEARCH key
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionSelect:
		return "select"
	case ActionBack:
		return "back"
	case ActionQuit:
		return "quit"
	case ActionType:
		return "type"
	case ActionErase:
		return "erase"
	case ActionSubmit:
		return "submit"
	}
	return "unknown"
}

// Directional reports whether the action moves a cursor
func (a Action) Directional() bool {
	switch a {
	case ActionUp, ActionDown, ActionLeft, ActionRight:
		return true
	}
	return false
}

// Source identifies where an event came from
type Source int

const (
	SourcePad Source = iota
	SourceStick
	SourceKeyboard
)

func (s Source) String() string {
	switch s {
	case SourcePad:
		return "pad"
	case SourceStick:
		return "stick"
	case SourceKeyboard:
		return "keyboard"
	}
	return "unknown"
}

// Event is one input delivered to the engine
type Event struct {
	Action Action
	Rune   rune
	Source Source
}

// StickDirection converts a normalised stick sample into a directional
// action. The dominant axis wins; samples inside the deadzone give none.
func StickDirection(x, y, deadzone float64) (Action, bool) {
	ax, ay := abs(x), abs(y)
	if ax < deadzone && ay < deadzone {
		return ActionNone, false
	}
	if ay >= ax {
		if y < 0 {
			return ActionUp, true
		}
		return ActionDown, true
	}
	if x < 0 {
		return ActionLeft, true
	}
	return ActionRight, true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

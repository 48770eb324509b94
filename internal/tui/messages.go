package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg drives one frame of the kiosk
type TickMsg time.Time

// TickCmd schedules the next frame
func TickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// PadLostMsg reports that the controller reader stopped
type PadLostMsg struct{}

// WaitPadCmd waits for the controller reader to stop
func WaitPadCmd(done <-chan struct{}) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		return PadLostMsg{}
	}
}

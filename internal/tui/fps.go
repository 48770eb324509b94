package tui

import (
	"log/slog"
	"time"
)

const (
	fpsWindow       = 100  // frames per measurement
	fpsWarnFraction = 0.75 // warn below this share of the target
)

// fpsMonitor measures the achieved frame rate and logs when the loop falls
// well behind the target.
type fpsMonitor struct {
	target int
	logger *slog.Logger

	start  time.Time
	frames int
	last   float64
}

func newFPSMonitor(target int, logger *slog.Logger) *fpsMonitor {
	return &fpsMonitor{target: target, logger: logger}
}

// Record counts a frame at now. It returns the measured rate when a
// window completes.
func (f *fpsMonitor) Record(now time.Time) (float64, bool) {
	if f.start.IsZero() {
		f.start = now
		return 0, false
	}
	f.frames++
	if f.frames < fpsWindow {
		return 0, false
	}

	elapsed := now.Sub(f.start)
	f.start = now
	f.frames = 0
	if elapsed <= 0 {
		return 0, false
	}

	fps := float64(fpsWindow) / elapsed.Seconds()
	f.last = fps
	if fps < float64(f.target)*fpsWarnFraction {
		f.logger.Warn("frame rate below target", "fps", fps, "target", f.target)
	}
	return fps, true
}

// Last returns the most recent measurement
func (f *fpsMonitor) Last() float64 {
	return f.last
}

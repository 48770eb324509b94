package input

import (
	"strings"
)

// ControllerProfile maps a pad family's button numbers to kiosk roles.
// Profiles are values; pick one at startup and hand it to the reader.
type ControllerProfile struct {
	ID    string
	Name  string
	A     uint8 // select
	B     uint8 // back
	X     uint8
	Y     uint8
	Start uint8 // quit
}

var (
	ProfileXbox        = ControllerProfile{ID: "xbox", Name: "Xbox Controller", A: 0, B: 1, X: 2, Y: 3, Start: 7}
	ProfilePlayStation = ControllerProfile{ID: "playstation", Name: "PlayStation Controller", A: 1, B: 2, X: 0, Y: 3, Start: 9}
	ProfileSwitch      = ControllerProfile{ID: "switch", Name: "Nintendo Switch Pro Controller", A: 1, B: 0, X: 3, Y: 2, Start: 10}
	ProfileGeneric     = ControllerProfile{ID: "generic", Name: "Generic Controller", A: 0, B: 1, X: 2, Y: 3, Start: 7}
)

// Profiles lists every known profile by ID
var Profiles = map[string]ControllerProfile{
	ProfileXbox.ID:        ProfileXbox,
	ProfilePlayStation.ID: ProfilePlayStation,
	ProfileSwitch.ID:      ProfileSwitch,
	ProfileGeneric.ID:     ProfileGeneric,
}

var detectPatterns = []struct {
	profile  ControllerProfile
	patterns []string
}{
	{ProfileXbox, []string{"xbox", "x-box", "microsoft"}},
	{ProfilePlayStation, []string{"playstation", "ps3", "ps4", "ps5", "dualshock", "dualsense", "sony"}},
	{ProfileSwitch, []string{"nintendo", "switch", "pro controller", "joy-con"}},
}

// DetectProfile guesses a profile from the device name the kernel reports
func DetectProfile(deviceName string) ControllerProfile {
	name := strings.ToLower(deviceName)
	for _, d := range detectPatterns {
		for _, p := range d.patterns {
			if strings.Contains(name, p) {
				return d.profile
			}
		}
	}
	return ProfileGeneric
}

// ResolveProfile returns the configured profile, or detects one when the
// setting is "auto", empty or unknown.
func ResolveProfile(configured, deviceName string) ControllerProfile {
	if p, ok := Profiles[strings.ToLower(strings.TrimSpace(configured))]; ok {
		return p
	}
	return DetectProfile(deviceName)
}

// ButtonAction maps a raw button number through the profile
func (p ControllerProfile) ButtonAction(button uint8) (Action, bool) {
	switch button {
	case p.A:
		return ActionSelect, true
	case p.B:
		return ActionBack, true
	case p.Start:
		return ActionQuit, true
	}
	return ActionNone, false
}

// Package nav holds the kiosk's screen state machine. It performs no I/O:
// transitions mutate State and return intents for the driver to fulfil.
package nav

import "fmt"

// Screen identifies one of the kiosk's fixed screens
type Screen int

const (
	ScreenMainMenu Screen = iota
	ScreenKeyboard
	ScreenSearchResults
	ScreenBrowse
	ScreenMediaDetail
)

func (s Screen) String() string {
	switch s {
	case ScreenMainMenu:
		return "main_menu"
	case ScreenKeyboard:
		return "keyboard"
	case ScreenSearchResults:
		return "search_results"
	case ScreenBrowse:
		return "browse"
	case ScreenMediaDetail:
		return "media_detail"
	default:
		return fmt.Sprintf("Screen(%d)", int(s))
	}
}

// MenuAction is what a main menu entry does when selected
type MenuAction int

const (
	MenuSearchMovies MenuAction = iota
	MenuSearchTV
	MenuBrowsePopular
	MenuExit
)

// MenuItem is a main menu entry
type MenuItem struct {
	Label  string
	Action MenuAction
}

// MainMenu lists the main menu entries in display order
var MainMenu = []MenuItem{
	{Label: "Search Movies", Action: MenuSearchMovies},
	{Label: "Search TV Shows", Action: MenuSearchTV},
	{Label: "Browse Popular", Action: MenuBrowsePopular},
	{Label: "Exit", Action: MenuExit},
}

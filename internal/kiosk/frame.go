package kiosk

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/mmcdole/seerrpad/internal/domain"
	"github.com/mmcdole/seerrpad/internal/nav"
)

// overviewWidth is the column width the detail overview is wrapped to
const overviewWidth = 60

// Frame is everything the renderer needs for one tick. It holds copies,
// never references into engine state.
type Frame struct {
	Screen nav.Screen
	Title  string

	// List screens
	Rows     []Row
	Offset   int // index of Rows[0] in the full list
	Selected int
	Total    int

	Keyboard *KeyboardView
	Detail   *DetailView

	Message *Message
	Hint    string
	Quit    bool
}

// Row is one visible list entry
type Row struct {
	Label    string
	Selected bool
}

// KeyboardView is the on-screen keyboard with its caret
type KeyboardView struct {
	Query     string
	Row, Col  int
	MediaType domain.MediaType
}

// DetailView is the media detail screen
type DetailView struct {
	Title    string
	Type     string
	Release  string
	Rating   string
	Overview []string

	Poster       image.Image
	PosterURL    string // empty while the placeholder is shown
	PosterLoaded bool
}

var screenTitles = map[nav.Screen]string{
	nav.ScreenMainMenu:      "Jellyseerr",
	nav.ScreenKeyboard:      "Search",
	nav.ScreenSearchResults: "Search Results",
	nav.ScreenBrowse:        "Popular",
	nav.ScreenMediaDetail:   "Details",
}

var screenHints = map[nav.Screen]string{
	nav.ScreenMainMenu:      "A select   START quit",
	nav.ScreenKeyboard:      "A press key   B back",
	nav.ScreenSearchResults: "A details   B back",
	nav.ScreenBrowse:        "A details   B back",
	nav.ScreenMediaDetail:   "A request   B back",
}

// scrollOffset keeps the selection roughly centred in a window of visible rows
func scrollOffset(selected, total, visible int) int {
	if total <= visible {
		return 0
	}
	offset := max(0, selected-visible/2)
	return min(offset, total-visible)
}

// truncateTitle shortens s to at most limit cells, ending in "..."
func truncateTitle(s string, limit int) string {
	return ansi.Truncate(s, limit, "...")
}

// wrapOverview word-wraps text and keeps at most maxLines lines; a cut
// overview ends in "...".
func wrapOverview(text string, width, maxLines int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{"No overview available."}
	}
	lines := strings.Split(ansi.Wordwrap(text, width, ""), "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		lines[maxLines-1] = ansi.Truncate(last, width-3, "") + "..."
	}
	return lines
}

func searchRowLabel(item domain.MediaSummary, limit int) string {
	title := truncateTitle(item.Title, limit)
	if year := item.Year(); year != "" {
		return fmt.Sprintf("%s (%s)", title, year)
	}
	return title
}

func browseRowLabel(item domain.MediaSummary, limit int) string {
	return fmt.Sprintf("[%s] %s", item.Type.Label(), truncateTitle(item.Title, limit))
}

func ratingLabel(vote float64) string {
	if vote <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f/10", vote)
}

package nav

import (
	"time"

	"github.com/mmcdole/seerrpad/internal/domain"
)

// State is the kiosk's navigation state. It is owned by the render loop;
// only the debouncer may be touched from elsewhere.
type State struct {
	current  Screen
	stack    []Screen
	selected int

	searchResults []domain.MediaSummary
	browseResults []domain.MediaSummary
	detail        domain.MediaSummary
	searchType    domain.MediaType

	keyboard KeyboardState
	debounce *Debouncer
	deferred deferredBack
}

// NewState returns a state positioned on the main menu
func NewState(navDelay time.Duration) *State {
	return &State{
		current:  ScreenMainMenu,
		debounce: NewDebouncer(navDelay),
	}
}

// Current returns the active screen
func (s *State) Current() Screen { return s.current }

// Stack returns a copy of the back stack, oldest first
func (s *State) Stack() []Screen {
	out := make([]Screen, len(s.stack))
	copy(out, s.stack)
	return out
}

// Selected returns the selection index into the active list
func (s *State) Selected() int { return s.selected }

// Keyboard returns the on-screen keyboard state
func (s *State) Keyboard() KeyboardState { return s.keyboard }

// Query returns the text typed so far
func (s *State) Query() string { return s.keyboard.Query }

// SearchType returns the media type the keyboard is searching for
func (s *State) SearchType() domain.MediaType { return s.searchType }

// Detail returns the item shown on the detail screen
func (s *State) Detail() domain.MediaSummary { return s.detail }

// SearchResults returns the last applied search results
func (s *State) SearchResults() []domain.MediaSummary { return s.searchResults }

// BrowseResults returns the last applied popular listing
func (s *State) BrowseResults() []domain.MediaSummary { return s.browseResults }

// Debouncer returns the shared directional input debouncer
func (s *State) Debouncer() *Debouncer { return s.debounce }

// ListLen returns the length of the active list, or 0 for screens without one
func (s *State) ListLen() int {
	switch s.current {
	case ScreenMainMenu:
		return len(MainMenu)
	case ScreenSearchResults:
		return len(s.searchResults)
	case ScreenBrowse:
		return len(s.browseResults)
	case ScreenKeyboard, ScreenMediaDetail:
		return 0
	}
	return 0
}

// SelectedItem returns the media item under the cursor on result screens
func (s *State) SelectedItem() (domain.MediaSummary, bool) {
	var items []domain.MediaSummary
	switch s.current {
	case ScreenSearchResults:
		items = s.searchResults
	case ScreenBrowse:
		items = s.browseResults
	default:
		return domain.MediaSummary{}, false
	}
	if s.selected < 0 || s.selected >= len(items) {
		return domain.MediaSummary{}, false
	}
	return items[s.selected], true
}

// MoveSelection moves the list selection by one step, wrapping at both ends.
// Screens without a list ignore it.
func (s *State) MoveSelection(direction int) {
	direction = clamp(direction, -1, 1)
	n := s.ListLen()
	if n == 0 {
		s.selected = 0
		return
	}
	if direction == 0 {
		return
	}
	s.selected = ((s.selected+direction)%n + n) % n
}

// MoveKeyboardCursor moves the keyboard cursor, clamping at the grid edges.
// It does nothing outside the keyboard screen.
func (s *State) MoveKeyboardCursor(dRow, dCol int) {
	if s.current != ScreenKeyboard {
		return
	}
	s.keyboard.move(dRow, dCol)
}

// PushScreen makes next current and remembers where we came from.
// Pushing the current screen only resets the selection; pushing a screen
// already on the stack unwinds to it.
func (s *State) PushScreen(next Screen) {
	s.selected = 0
	if next == s.current {
		return
	}
	for i, sc := range s.stack {
		if sc == next {
			s.stack = s.stack[:i]
			s.current = next
			return
		}
	}
	s.stack = append(s.stack, s.current)
	s.current = next
}

// ReplaceScreen swaps the current screen without touching the stack
func (s *State) ReplaceScreen(next Screen) {
	s.selected = 0
	if next == s.current {
		return
	}
	for i, sc := range s.stack {
		if sc == next {
			s.stack = s.stack[:i]
			break
		}
	}
	s.current = next
}

// GoBack returns to the previous screen. With an empty stack a non-root
// screen falls back to the main menu. At the root it returns false.
func (s *State) GoBack() bool {
	s.selected = 0
	if n := len(s.stack); n > 0 {
		s.current = s.stack[n-1]
		s.stack = s.stack[:n-1]
		return true
	}
	if s.current != ScreenMainMenu {
		s.current = ScreenMainMenu
		return true
	}
	return false
}

// SelectCurrentItem reports what selecting the focused element means
func (s *State) SelectCurrentItem() Intent {
	switch s.current {
	case ScreenMainMenu:
		if s.selected < 0 || s.selected >= len(MainMenu) {
			return Intent{Kind: IntentNone}
		}
		switch MainMenu[s.selected].Action {
		case MenuSearchMovies:
			return Intent{Kind: IntentStartSearch, MediaType: domain.MediaTypeMovie}
		case MenuSearchTV:
			return Intent{Kind: IntentStartSearch, MediaType: domain.MediaTypeTV}
		case MenuBrowsePopular:
			return Intent{Kind: IntentStartBrowse}
		case MenuExit:
			return Intent{Kind: IntentQuit}
		}
	case ScreenKeyboard:
		return Intent{Kind: IntentKeyboardKey, Key: s.keyboard.Current()}
	case ScreenSearchResults, ScreenBrowse:
		if item, ok := s.SelectedItem(); ok {
			return Intent{Kind: IntentOpenDetail, Item: item}
		}
	case ScreenMediaDetail:
		if s.detail.ID != 0 {
			return Intent{Kind: IntentSubmitRequest, Item: s.detail}
		}
	}
	return Intent{Kind: IntentNone}
}

// BeginSearch opens the keyboard for a fresh query of the given type
func (s *State) BeginSearch(mediaType domain.MediaType) {
	s.searchType = mediaType
	s.keyboard.reset()
	s.PushScreen(ScreenKeyboard)
}

// OpenDetail shows item on the detail screen
func (s *State) OpenDetail(item domain.MediaSummary) {
	s.detail = item
	s.PushScreen(ScreenMediaDetail)
}

// ShowSearchResults replaces the keyboard with the results list
func (s *State) ShowSearchResults(items []domain.MediaSummary) {
	s.searchResults = items
	s.ReplaceScreen(ScreenSearchResults)
}

// SetBrowseResults stores the popular listing and clamps the selection
func (s *State) SetBrowseResults(items []domain.MediaSummary) {
	s.browseResults = items
	if s.current == ScreenBrowse {
		s.selected = clamp(s.selected, 0, max(0, len(items)-1))
	}
}

// TypeChar appends r to the query
func (s *State) TypeChar(r rune) {
	if len([]rune(s.keyboard.Query)) >= domain.MaxQueryLength {
		return
	}
	s.keyboard.Query += string(r)
}

// DeleteChar removes the last rune of the query
func (s *State) DeleteChar() {
	q := []rune(s.keyboard.Query)
	if len(q) == 0 {
		return
	}
	s.keyboard.Query = string(q[:len(q)-1])
}

// ScheduleBack arranges for GoBack to run once at or after at,
// replacing any transition already scheduled.
func (s *State) ScheduleBack(at time.Time) {
	s.deferred = deferredBack{at: at, pending: true}
}

// DeferredPending reports whether a scheduled back transition is waiting
func (s *State) DeferredPending() (time.Time, bool) {
	return s.deferred.at, s.deferred.pending
}

// FireDeferred runs the scheduled back transition if it is due
func (s *State) FireDeferred(now time.Time) bool {
	if !s.deferred.pending || now.Before(s.deferred.at) {
		return false
	}
	s.deferred = deferredBack{}
	s.GoBack()
	return true
}

package nav

import "github.com/mmcdole/seerrpad/internal/domain"

// IntentKind says what the driver should do after a selection
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentOpenDetail
	IntentStartSearch
	IntentStartBrowse
	IntentSubmitRequest
	IntentKeyboardKey
	IntentQuit
)

func (k IntentKind) String() string {
	switch k {
	case IntentNone:
		return "none"
	case IntentOpenDetail:
		return "open_detail"
	case IntentStartSearch:
		return "start_search"
	case IntentStartBrowse:
		return "start_browse"
	case IntentSubmitRequest:
		return "submit_request"
	case IntentKeyboardKey:
		return "keyboard_key"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent is a side effect requested by SelectCurrentItem.
// Only the fields relevant to Kind are set.
type Intent struct {
	Kind      IntentKind
	Item      domain.MediaSummary // OpenDetail, SubmitRequest
	MediaType domain.MediaType    // StartSearch
	Key       Key                 // KeyboardKey
}

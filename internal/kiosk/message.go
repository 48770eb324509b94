package kiosk

import "time"

// MessageClass selects how a status message is drawn
type MessageClass int

const (
	MessageInfo MessageClass = iota
	MessageSuccess
	MessageError
)

func (c MessageClass) String() string {
	switch c {
	case MessageInfo:
		return "info"
	case MessageSuccess:
		return "success"
	case MessageError:
		return "error"
	}
	return "unknown"
}

// Message is a transient status line
type Message struct {
	Text    string
	Class   MessageClass
	Expires time.Time
}

// Active reports whether the message should still be shown at now
func (m Message) Active(now time.Time) bool {
	return m.Text != "" && now.Before(m.Expires)
}

// Fixed user-facing texts. Raw errors only go to the log.
const (
	msgSearching        = "Searching for '%s'..."
	msgInvalidSearch    = "Invalid search"
	msgNoResults        = "No results found"
	msgSearchError      = "Search error"
	msgLoadingPopular   = "Loading popular content..."
	msgNoContent        = "No content found"
	msgLoadError        = "Error loading content"
	msgSubmitting       = "Submitting request..."
	msgRequestSubmitted = "Request submitted successfully!"
	msgRequestFailed    = "Failed to submit request"
	msgQueryEmpty       = "Type a title first"
)

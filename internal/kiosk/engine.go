// Package kiosk drives one tick of the kiosk: it applies input to the
// navigation state, fulfils intents through the task coordinator, applies
// finished results and describes the frame to draw.
package kiosk

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"
	"unicode"

	"github.com/mmcdole/seerrpad/internal/domain"
	"github.com/mmcdole/seerrpad/internal/input"
	"github.com/mmcdole/seerrpad/internal/nav"
	"github.com/mmcdole/seerrpad/internal/task"
)

// Dispatcher runs catalog calls in the background
type Dispatcher interface {
	Dispatch(kind task.Kind, p task.Params) uint64
	DispatchImage(url string) (uint64, bool)
	Drain() []task.Result
}

// Posters is the decoded poster cache
type Posters interface {
	Lookup(url string) (image.Image, bool)
	InsertBytes(url string, data []byte) error
	PlaceholderImage() image.Image
}

// Options tune the engine. Zero values select defaults.
type Options struct {
	NavDelay         time.Duration
	MessageDuration  time.Duration
	RequestBackDelay time.Duration
	ImageRetryDelay  time.Duration
	MaxVisibleItems  int
	MaxTitleChars    int
	MaxWrappedLines  int
}

func (o *Options) setDefaults() {
	if o.NavDelay < 0 {
		o.NavDelay = 0
	}
	if o.MessageDuration <= 0 {
		o.MessageDuration = 3 * time.Second
	}
	if o.RequestBackDelay <= 0 {
		o.RequestBackDelay = 1500 * time.Millisecond
	}
	if o.ImageRetryDelay <= 0 {
		o.ImageRetryDelay = 10 * time.Second
	}
	if o.MaxVisibleItems <= 0 {
		o.MaxVisibleItems = 10
	}
	if o.MaxTitleChars <= 0 {
		o.MaxTitleChars = 40
	}
	if o.MaxWrappedLines <= 0 {
		o.MaxWrappedLines = 8
	}
}

// Engine owns the navigation state and is driven from a single goroutine
type Engine struct {
	state   *nav.State
	tasks   Dispatcher
	posters Posters
	urls    domain.PosterResolver
	opts    Options
	logger  *slog.Logger

	message  Message
	quit     bool
	awaiting map[task.Kind]uint64 // request the current screen waits for
	imageErr map[string]time.Time // url -> earliest retry
}

// resultScreens is where each kind of result is shown. A result arriving
// on any other screen is dropped.
var resultScreens = map[task.Kind]nav.Screen{
	task.KindSearch:        nav.ScreenKeyboard,
	task.KindListPopular:   nav.ScreenBrowse,
	task.KindSubmitRequest: nav.ScreenMediaDetail,
}

// NewEngine creates an engine on the main menu
func NewEngine(tasks Dispatcher, posters Posters, urls domain.PosterResolver, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()
	return &Engine{
		state:    nav.NewState(opts.NavDelay),
		tasks:    tasks,
		posters:  posters,
		urls:     urls,
		opts:     opts,
		logger:   logger,
		awaiting: make(map[task.Kind]uint64),
		imageErr: make(map[string]time.Time),
	}
}

// State exposes the navigation state for inspection
func (e *Engine) State() *nav.State {
	return e.state
}

// Quit reports whether the user asked to leave
func (e *Engine) Quit() bool {
	return e.quit
}

// Tick advances the kiosk by one frame
func (e *Engine) Tick(now time.Time, events []input.Event) Frame {
	for _, ev := range events {
		e.applyEvent(now, ev)
	}

	if e.state.FireDeferred(now) {
		e.logger.Debug("deferred back fired", "screen", e.state.Current())
	}

	for _, r := range e.tasks.Drain() {
		e.applyResult(now, r)
	}

	return e.frame(now)
}

func (e *Engine) applyEvent(now time.Time, ev input.Event) {
	if ev.Action.Directional() {
		if !e.state.Debouncer().Allow(now) {
			return
		}
		e.move(ev.Action)
		return
	}

	switch ev.Action {
	case input.ActionSelect:
		e.fulfil(now, e.state.SelectCurrentItem())
	case input.ActionSubmit:
		if e.state.Current() == nav.ScreenKeyboard {
			e.submitSearch(now)
		}
	case input.ActionBack:
		e.back()
	case input.ActionQuit:
		e.quit = true
	case input.ActionType:
		if e.state.Current() == nav.ScreenKeyboard {
			if r := unicode.ToLower(ev.Rune); typeable(r) {
				e.state.TypeChar(r)
			}
		}
	case input.ActionErase:
		if e.state.Current() == nav.ScreenKeyboard {
			e.state.DeleteChar()
		}
	}
}

// typeable reports whether r appears on the on-screen keyboard
func typeable(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' '
}

func (e *Engine) move(a input.Action) {
	if e.state.Current() == nav.ScreenKeyboard {
		switch a {
		case input.ActionUp:
			e.state.MoveKeyboardCursor(-1, 0)
		case input.ActionDown:
			e.state.MoveKeyboardCursor(1, 0)
		case input.ActionLeft:
			e.state.MoveKeyboardCursor(0, -1)
		case input.ActionRight:
			e.state.MoveKeyboardCursor(0, 1)
		}
		return
	}

	switch a {
	case input.ActionUp:
		e.state.MoveSelection(-1)
	case input.ActionDown:
		e.state.MoveSelection(1)
	}
}

func (e *Engine) fulfil(now time.Time, in nav.Intent) {
	e.logger.Debug("intent", "kind", in.Kind, "screen", e.state.Current())

	switch in.Kind {
	case nav.IntentNone:
	case nav.IntentStartSearch:
		delete(e.awaiting, task.KindSearch)
		e.state.BeginSearch(in.MediaType)
	case nav.IntentStartBrowse:
		e.state.PushScreen(nav.ScreenBrowse)
		e.state.SetBrowseResults(nil)
		e.dispatch(task.KindListPopular, task.Params{MediaType: domain.MediaTypeAll, Page: 1})
		e.say(now, msgLoadingPopular, MessageInfo)
	case nav.IntentOpenDetail:
		delete(e.awaiting, task.KindSubmitRequest)
		e.state.OpenDetail(in.Item)
	case nav.IntentSubmitRequest:
		e.dispatch(task.KindSubmitRequest, task.Params{MediaID: in.Item.ID, MediaType: in.Item.Type})
		e.say(now, msgSubmitting, MessageInfo)
	case nav.IntentKeyboardKey:
		e.pressKey(now, in.Key)
	case nav.IntentQuit:
		e.quit = true
	}
}

func (e *Engine) pressKey(now time.Time, k nav.Key) {
	switch k.Kind {
	case nav.KeyChar:
		e.state.TypeChar(k.Char)
	case nav.KeyDelete:
		e.state.DeleteChar()
	case nav.KeySubmit:
		e.submitSearch(now)
	case nav.KeyCancel:
		e.back()
	}
}

// back pops a screen and forgets whatever that screen was waiting for
func (e *Engine) back() {
	from := e.state.Current()
	e.state.GoBack()
	if e.state.Current() == from {
		return
	}
	for kind, screen := range resultScreens {
		if screen == from {
			delete(e.awaiting, kind)
		}
	}
}

func (e *Engine) dispatch(kind task.Kind, p task.Params) {
	e.awaiting[kind] = e.tasks.Dispatch(kind, p)
}

// accept reports whether r is the result the current screen waits for
func (e *Engine) accept(r task.Result) bool {
	id, ok := e.awaiting[r.Kind]
	if !ok || id != r.RequestID || e.state.Current() != resultScreens[r.Kind] {
		e.logger.Debug("dropping result for a screen no longer shown",
			"kind", r.Kind, "id", r.RequestID, "screen", e.state.Current())
		return false
	}
	delete(e.awaiting, r.Kind)
	return true
}

func (e *Engine) submitSearch(now time.Time) {
	if e.state.Query() == "" {
		e.say(now, msgQueryEmpty, MessageInfo)
		return
	}
	query, err := domain.ValidateSearchQuery(e.state.Query())
	if err != nil {
		e.logger.Info("rejected search query", "error", err)
		e.say(now, msgInvalidSearch, MessageError)
		return
	}
	e.dispatch(task.KindSearch, task.Params{MediaType: e.state.SearchType(), Query: query, Page: 1})
	e.say(now, fmt.Sprintf(msgSearching, query), MessageInfo)
}

func (e *Engine) applyResult(now time.Time, r task.Result) {
	if r.Kind != task.KindImage && !e.accept(r) {
		return
	}

	switch r.Kind {
	case task.KindSearch:
		switch {
		case errors.Is(r.Err, domain.ErrInvalidInput):
			e.say(now, msgInvalidSearch, MessageError)
		case r.Err != nil:
			e.logger.Error("search failed", "query", r.Params.Query, "error", r.Err)
			e.say(now, msgSearchError, MessageError)
		case len(r.Items) == 0:
			e.say(now, msgNoResults, MessageInfo)
		default:
			e.state.ShowSearchResults(r.Items)
			e.message = Message{}
		}

	case task.KindListPopular:
		switch {
		case r.Err != nil:
			e.logger.Error("popular listing failed", "error", r.Err)
			e.say(now, msgLoadError, MessageError)
		case len(r.Items) == 0:
			e.say(now, msgNoContent, MessageInfo)
		default:
			e.state.SetBrowseResults(r.Items)
			e.message = Message{}
		}

	case task.KindSubmitRequest:
		if r.Err != nil {
			e.logger.Error("request failed", "media_id", r.Params.MediaID, "error", r.Err)
			e.say(now, msgRequestFailed, MessageError)
			return
		}
		e.say(now, msgRequestSubmitted, MessageSuccess)
		e.state.ScheduleBack(now.Add(e.opts.RequestBackDelay))

	case task.KindImage:
		url := r.Params.URL
		if r.Err == nil {
			r.Err = e.posters.InsertBytes(url, r.Image)
		}
		if r.Err != nil {
			e.logger.Warn("poster unavailable", "url", url, "error", r.Err)
			e.pruneImageErrors(now)
			e.imageErr[url] = now.Add(e.opts.ImageRetryDelay)
			return
		}
		delete(e.imageErr, url)
	}
}

func (e *Engine) say(now time.Time, text string, class MessageClass) {
	e.message = Message{Text: text, Class: class, Expires: now.Add(e.opts.MessageDuration)}
}

// poster returns the cached poster for path and its URL, asking for a
// download on a miss. The URL is empty when the placeholder is returned.
func (e *Engine) poster(now time.Time, path string) (image.Image, string) {
	placeholder := e.posters.PlaceholderImage()
	if path == "" || e.urls == nil {
		return placeholder, ""
	}
	url := e.urls.PosterURL(path)
	if url == "" {
		return placeholder, ""
	}
	if img, ok := e.posters.Lookup(url); ok {
		return img, url
	}
	if retry, failed := e.imageErr[url]; failed {
		if now.Before(retry) {
			return placeholder, ""
		}
		delete(e.imageErr, url)
	}
	e.tasks.DispatchImage(url)
	return placeholder, ""
}

// pruneImageErrors forgets failures whose retry time has passed
func (e *Engine) pruneImageErrors(now time.Time) {
	for url, retry := range e.imageErr {
		if !now.Before(retry) {
			delete(e.imageErr, url)
		}
	}
}

func (e *Engine) frame(now time.Time) Frame {
	s := e.state
	f := Frame{
		Screen:   s.Current(),
		Title:    screenTitles[s.Current()],
		Selected: s.Selected(),
		Hint:     screenHints[s.Current()],
		Quit:     e.quit,
	}
	if e.message.Active(now) {
		msg := e.message
		f.Message = &msg
	}

	switch s.Current() {
	case nav.ScreenMainMenu:
		labels := make([]string, len(nav.MainMenu))
		for i, item := range nav.MainMenu {
			labels[i] = item.Label
		}
		e.fillRows(&f, labels)

	case nav.ScreenKeyboard:
		kb := s.Keyboard()
		f.Title = fmt.Sprintf("Search %s", searchNoun(s.SearchType()))
		f.Keyboard = &KeyboardView{Query: kb.Query, Row: kb.Row, Col: kb.Col, MediaType: s.SearchType()}

	case nav.ScreenSearchResults:
		items := s.SearchResults()
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = searchRowLabel(item, e.opts.MaxTitleChars)
		}
		e.fillRows(&f, labels)

	case nav.ScreenBrowse:
		items := s.BrowseResults()
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = browseRowLabel(item, e.opts.MaxTitleChars)
		}
		e.fillRows(&f, labels)

	case nav.ScreenMediaDetail:
		item := s.Detail()
		poster, url := e.poster(now, item.PosterPath)
		f.Detail = &DetailView{
			Title:        item.Title,
			Type:         item.Type.Label(),
			Release:      item.Release(),
			Rating:       ratingLabel(item.VoteAverage),
			Overview:     wrapOverview(item.Overview, overviewWidth, e.opts.MaxWrappedLines),
			Poster:       poster,
			PosterURL:    url,
			PosterLoaded: url != "",
		}
	}
	return f
}

func (e *Engine) fillRows(f *Frame, labels []string) {
	f.Total = len(labels)
	f.Offset = scrollOffset(f.Selected, f.Total, e.opts.MaxVisibleItems)
	end := min(f.Total, f.Offset+e.opts.MaxVisibleItems)
	f.Rows = make([]Row, 0, end-f.Offset)
	for i := f.Offset; i < end; i++ {
		f.Rows = append(f.Rows, Row{Label: labels[i], Selected: i == f.Selected})
	}
}

func searchNoun(t domain.MediaType) string {
	if t == domain.MediaTypeTV {
		return "TV Shows"
	}
	return "Movies"
}

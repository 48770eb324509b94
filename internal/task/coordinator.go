// Package task runs catalog calls off the render loop and hands their
// results back through a single mutex-guarded inbox.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/seerrpad/internal/domain"
)

// Kind identifies a background operation
type Kind int

const (
	KindSearch Kind = iota
	KindListPopular
	KindSubmitRequest
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindListPopular:
		return "list_popular"
	case KindSubmitRequest:
		return "submit_request"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// defaultTimeout bounds a single catalog call
const defaultTimeout = 10 * time.Second

// maxConcurrentImages limits parallel poster downloads
const maxConcurrentImages = 4

// Params carries the inputs of a dispatched operation; unused fields are zero
type Params struct {
	MediaType domain.MediaType
	Query     string
	Page      int
	MediaID   int
	URL       string
}

// Result is written once by a worker and read once by the render loop
type Result struct {
	Kind      Kind
	RequestID uint64
	Params    Params
	Items     []domain.MediaSummary
	Image     []byte
	Err       error
	Started   time.Time
	Finished  time.Time
}

// OK reports whether the operation succeeded
func (r Result) OK() bool { return r.Err == nil }

// Pending describes the latest in-flight operation of a kind
type Pending struct {
	Kind      Kind
	RequestID uint64
	Started   time.Time
}

// Options tune a Coordinator
type Options struct {
	// Timeout bounds each catalog call
	Timeout time.Duration
	// Now is the clock; defaults to time.Now
	Now func() time.Time
}

// Coordinator dispatches catalog calls on goroutines. Only the latest
// dispatch of each kind is delivered; image downloads are keyed by URL.
type Coordinator struct {
	ctx     context.Context
	catalog domain.Catalog
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	nextID  uint64
	pending map[Kind]Pending
	images  map[string]uint64
	inbox   []Result

	imageSem chan struct{}
	wg       sync.WaitGroup
}

// NewCoordinator creates a coordinator. ctx is the parent of every call's context.
func NewCoordinator(ctx context.Context, catalog domain.Catalog, opts Options, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		ctx:      ctx,
		catalog:  catalog,
		timeout:  opts.Timeout,
		now:      opts.Now,
		logger:   logger,
		pending:  make(map[Kind]Pending),
		images:   make(map[string]uint64),
		imageSem: make(chan struct{}, maxConcurrentImages),
	}
}

// Dispatch starts kind in the background and returns its request id at once.
// Any earlier dispatch of the same kind is superseded; its result will be dropped.
func (c *Coordinator) Dispatch(kind Kind, p Params) uint64 {
	if kind == KindImage {
		id, _ := c.DispatchImage(p.URL)
		return id
	}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	started := c.now()
	if prev, ok := c.pending[kind]; ok {
		c.logger.Debug("superseding task", "kind", kind, "old_id", prev.RequestID, "new_id", id)
	}
	c.pending[kind] = Pending{Kind: kind, RequestID: id, Started: started}
	c.mu.Unlock()

	c.logger.Debug("dispatching task", "kind", kind, "id", id)
	c.spawn(Result{Kind: kind, RequestID: id, Params: p, Started: started})
	return id
}

// DispatchImage starts a download of url unless one is already running.
// It returns the id of the running or new download and whether a new one started.
func (c *Coordinator) DispatchImage(url string) (uint64, bool) {
	c.mu.Lock()
	if id, ok := c.images[url]; ok {
		c.mu.Unlock()
		return id, false
	}
	c.nextID++
	id := c.nextID
	c.images[url] = id
	started := c.now()
	c.mu.Unlock()

	c.spawn(Result{Kind: KindImage, RequestID: id, Params: Params{URL: url}, Started: started})
	return id, true
}

func (c *Coordinator) spawn(r Result) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if r.Kind == KindImage {
			c.imageSem <- struct{}{}
			defer func() { <-c.imageSem }()
		}
		c.run(&r)
		r.Finished = c.now()
		c.post(r)
	}()
}

// run performs the call; panics are turned into errors so they never cross the boundary
func (c *Coordinator) run(r *Result) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("task panicked", "kind", r.Kind, "id", r.RequestID, "panic", rec)
			r.Err = fmt.Errorf("%w: %s task panicked: %v", domain.ErrFetch, r.Kind, rec)
		}
	}()

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	p := r.Params
	switch r.Kind {
	case KindSearch:
		r.Items, r.Err = c.catalog.SearchByQuery(ctx, p.MediaType, p.Query, p.Page)
	case KindListPopular:
		r.Items, r.Err = c.catalog.ListPopular(ctx, p.MediaType, p.Page)
	case KindSubmitRequest:
		r.Err = c.catalog.SubmitRequest(ctx, p.MediaID, p.MediaType)
	case KindImage:
		r.Image, r.Err = c.catalog.FetchImageBytes(ctx, p.URL)
	default:
		r.Err = fmt.Errorf("unknown task kind %d", int(r.Kind))
	}

	if r.Err != nil {
		c.logger.Warn("task failed", "kind", r.Kind, "id", r.RequestID, "error", r.Err)
	}
}

func (c *Coordinator) post(r Result) {
	c.mu.Lock()
	c.inbox = append(c.inbox, r)
	c.mu.Unlock()
}

// Drain returns the results completed since the last call, in completion
// order, minus any result superseded by a newer dispatch of its kind.
func (c *Coordinator) Drain() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.inbox) == 0 {
		return nil
	}
	inbox := c.inbox
	c.inbox = nil

	out := inbox[:0]
	for _, r := range inbox {
		if r.Kind == KindImage {
			if c.images[r.Params.URL] == r.RequestID {
				delete(c.images, r.Params.URL)
			}
			out = append(out, r)
			continue
		}

		latest, ok := c.pending[r.Kind]
		if !ok || latest.RequestID != r.RequestID {
			c.logger.Debug("dropping stale result", "kind", r.Kind, "id", r.RequestID)
			continue
		}
		delete(c.pending, r.Kind)
		out = append(out, r)
	}
	return out
}

// Pending returns the in-flight operation of kind, if any
func (c *Coordinator) Pending(kind Kind) (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[kind]
	return p, ok
}

// InFlight returns the number of undelivered operations, images included
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) + len(c.images)
}

// Wait blocks until every spawned worker has posted its result
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

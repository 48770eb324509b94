// Package imagecache keeps decoded poster images in a bounded LRU.
package imagecache

import (
	"container/list"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/mmcdole/seerrpad/internal/domain"
)

// DefaultCapacity is the number of decoded images kept when no capacity is configured
const DefaultCapacity = 50

// Loader fetches and decodes the image behind url
type Loader func(url string) (image.Image, error)

type entry struct {
	url string
	img image.Image
}

// Stats reports cache effectiveness
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}

// Cache is a fixed-capacity LRU of decoded images keyed by URL.
// Failed loads are never cached; callers get the placeholder instead.
type Cache struct {
	mu          sync.Mutex
	capacity    int
	ll          *list.List // front = most recently used
	items       map[string]*list.Element
	placeholder image.Image
	load        Loader
	decode      Decoder
	stats       Stats
	logger      *slog.Logger
}

// New creates a cache holding at most capacity images. load may be nil when
// the cache is only filled through Insert and InsertBytes.
func New(capacity int, placeholder image.Image, load Loader, logger *slog.Logger) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	if placeholder == nil {
		placeholder = Placeholder(DefaultWidth, DefaultHeight)
	}
	return &Cache{
		capacity:    capacity,
		ll:          list.New(),
		items:       make(map[string]*list.Element, capacity),
		placeholder: placeholder,
		load:        load,
		decode:      NewDecoder(DefaultWidth, DefaultHeight),
		logger:      logger,
	}
}

// WithDecoder replaces the decoder used by InsertBytes
func (c *Cache) WithDecoder(d Decoder) *Cache {
	c.mu.Lock()
	c.decode = d
	c.mu.Unlock()
	return c
}

// Get returns the image for url, loading it synchronously on a miss.
// Any failure yields the placeholder and leaves the cache unchanged.
func (c *Cache) Get(url string) image.Image {
	if url == "" {
		return c.placeholder
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[url]; ok {
		c.ll.MoveToFront(el)
		c.stats.Hits++
		return el.Value.(*entry).img
	}
	c.stats.Misses++

	if c.load == nil {
		return c.placeholder
	}

	img, err := c.load(url)
	if err != nil || img == nil {
		c.logger.Debug("image load failed", "url", url, "error", err)
		return c.placeholder
	}

	c.insertLocked(url, img)
	return img
}

// Lookup returns a cached image without loading. A hit refreshes recency.
func (c *Cache) Lookup(url string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[url]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.ll.MoveToFront(el)
	c.stats.Hits++
	return el.Value.(*entry).img, true
}

// Insert stores img under url, evicting the least recently used entry first if full
func (c *Cache) Insert(url string, img image.Image) {
	if url == "" || img == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertLocked(url, img)
}

// InsertBytes decodes data and stores the result. On decode failure the cache is untouched.
func (c *Cache) InsertBytes(url string, data []byte) error {
	c.mu.Lock()
	decode := c.decode
	c.mu.Unlock()

	img, err := decode(data)
	if err != nil {
		return fmt.Errorf("image %s: %w", url, err)
	}
	c.Insert(url, img)
	return nil
}

func (c *Cache) insertLocked(url string, img image.Image) {
	if el, ok := c.items[url]; ok {
		el.Value.(*entry).img = img
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	c.items[url] = c.ll.PushFront(&entry{url: url, img: img})

	if c.ll.Len() > c.capacity {
		panic(fmt.Errorf("%w: %d entries, capacity %d", domain.ErrCapacityViolation, c.ll.Len(), c.capacity))
	}
}

func (c *Cache) evictLocked() {
	oldest := c.ll.Back()
	if oldest == nil {
		return
	}
	e := c.ll.Remove(oldest).(*entry)
	delete(c.items, e.url)
	c.stats.Evictions++
	c.logger.Debug("evicted image", "url", e.url)
}

// Contains reports membership without touching recency
func (c *Cache) Contains(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[url]
	return ok
}

// Len returns the number of cached images
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Capacity returns the maximum number of cached images
func (c *Cache) Capacity() int {
	return c.capacity
}

// Keys returns cached URLs from most to least recently used
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry).url)
	}
	return keys
}

// Stats returns a snapshot of hit, miss and eviction counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// PlaceholderImage returns the image shown while art is missing
func (c *Cache) PlaceholderImage() image.Image {
	return c.placeholder
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.ll.Len()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	c.logger.Debug("image cache cleared", "entries", n)
}

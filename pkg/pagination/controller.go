// Package pagination keeps a remotely paged collection in memory: initial load,
// infinite-scroll appends, full refreshes and local removal after a confirmed delete.
//
// One permit guards every fetch. LoadMore is refused while any fetch is in
// flight; Refresh takes the permit over from a pending LoadMore, whose result
// is then discarded.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrSuperseded is returned by LoadMore when a refresh replaced the collection
	// while the page was in flight. The page was not applied.
	ErrSuperseded = errors.New("pagination: load superseded by refresh")
	// ErrClosed is returned once the controller has been released.
	ErrClosed = errors.New("pagination: controller closed")
	// ErrInvalidPage is returned when a fetched page violates the paging contract.
	ErrInvalidPage = errors.New("pagination: invalid page")
)

// Page is a single remote page.
type Page[T any] struct {
	Number     int
	Items      []T
	TotalPages int
}

// FetchFunc retrieves one page, 1-based.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// KeyFunc returns the identity of an item.
type KeyFunc[T any] func(T) string

// State is a point-in-time copy of the controller state.
type State[T any] struct {
	Items            []T
	CurrentPage      int
	HasMore          bool
	IsLoadingInitial bool
	IsRefreshing     bool
	IsLoadingMore    bool
}

type operation int

const (
	opIdle operation = iota
	opInitial
	opRefresh
	opMore
)

func (o operation) String() string {
	switch o {
	case opInitial:
		return "initial"
	case opRefresh:
		return "refresh"
	case opMore:
		return "load_more"
	default:
		return "idle"
	}
}

// Observer is notified of every applied page.
type Observer interface {
	ObservePageLoaded(kind string, items int)
}

// Controller is the page-cursor state machine.
type Controller[T any] struct {
	fetch    FetchFunc[T]
	key      KeyFunc[T]
	logger   *zap.Logger
	observer Observer

	mu          sync.Mutex
	items       []T
	index       map[string]struct{}
	currentPage int
	hasMore     bool
	op          operation
	generation  uint64
	closed      bool
}

// Option customises a Controller.
type Option[T any] func(*Controller[T])

// WithLogger attaches a logger.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(c *Controller[T]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver attaches a page observer.
func WithObserver[T any](o Observer) Option[T] {
	return func(c *Controller[T]) {
		c.observer = o
	}
}

// NewController builds an empty controller. Until the first fetch it reports
// HasMore so that LoadMore behaves like an initial load of page 1.
func NewController[T any](fetch FetchFunc[T], key KeyFunc[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		fetch:   fetch,
		key:     key,
		logger:  zap.NewNop(),
		index:   make(map[string]struct{}),
		hasMore: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load performs the initial load of page 1, replacing any items.
func (c *Controller[T]) Load(ctx context.Context) error {
	return c.reload(ctx, opInitial)
}

// Refresh re-fetches page 1 and replaces the whole collection.
// A refresh requested while another reload is in flight is a no-op.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.reload(ctx, opRefresh)
}

func (c *Controller[T]) reload(ctx context.Context, kind operation) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if running := c.op; running == opInitial || running == opRefresh {
		c.mu.Unlock()
		c.logger.Debug("reload ignored, already in flight", zap.Stringer("requested", kind), zap.Stringer("running", running))
		return nil
	}
	if c.op == opMore {
		c.logger.Debug("refresh supersedes pending load_more")
	}
	c.op = kind
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	page, err := c.fetch(ctx, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if gen != c.generation {
		return ErrSuperseded
	}
	c.op = opIdle
	if err != nil {
		return err
	}
	if err := checkPage(page, 1); err != nil {
		return err
	}

	c.items = nil
	c.index = make(map[string]struct{}, len(page.Items))
	c.appendLocked(page.Items)
	c.currentPage = 1
	c.hasMore = c.currentPage < page.TotalPages
	c.notify(kind, len(page.Items))
	return nil
}

// LoadMore fetches the page after the current one and appends it.
// It reports false without touching the network when there is nothing more
// to load or another fetch holds the permit.
func (c *Controller[T]) LoadMore(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if !c.hasMore || c.op != opIdle {
		c.mu.Unlock()
		return false, nil
	}
	c.op = opMore
	gen := c.generation
	next := c.currentPage + 1
	c.mu.Unlock()

	page, err := c.fetch(ctx, next)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true, ErrClosed
	}
	if gen != c.generation {
		c.logger.Debug("discarding superseded page", zap.Int("page", next))
		return true, ErrSuperseded
	}
	c.op = opIdle
	if err != nil {
		return true, err
	}
	if err := checkPage(page, next); err != nil {
		return true, err
	}

	c.appendLocked(page.Items)
	c.currentPage = next
	c.hasMore = c.currentPage < page.TotalPages
	c.notify(opMore, len(page.Items))
	return true, nil
}

// RemoveLocally drops the item with the given key from memory. It never
// calls the network and is meant to follow a confirmed remote delete.
func (c *Controller[T]) RemoveLocally(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index[key]; !ok {
		return false
	}
	for i, item := range c.items {
		if c.key(item) == key {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			break
		}
	}
	delete(c.index, key)
	return true
}

// ReplaceLocally swaps an item in place after a confirmed remote edit.
func (c *Controller[T]) ReplaceLocally(item T) bool {
	key := c.key(item)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index[key]; !ok {
		return false
	}
	for i := range c.items {
		if c.key(c.items[i]) == key {
			c.items[i] = item
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T]{
		Items:            items,
		CurrentPage:      c.currentPage,
		HasMore:          c.hasMore,
		IsLoadingInitial: c.op == opInitial,
		IsRefreshing:     c.op == opRefresh,
		IsLoadingMore:    c.op == opMore,
	}
}

// Close releases the controller. Fetches still in flight are discarded when
// they complete.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
}

func (c *Controller[T]) appendLocked(items []T) {
	for _, item := range items {
		k := c.key(item)
		if _, dup := c.index[k]; dup {
			c.logger.Debug("skipping duplicate item", zap.String("key", k))
			continue
		}
		c.index[k] = struct{}{}
		c.items = append(c.items, item)
	}
}

func (c *Controller[T]) notify(kind operation, n int) {
	if c.observer != nil {
		c.observer.ObservePageLoaded(kind.String(), n)
	}
}

// checkPage rejects a page that cannot be the answer to a request for
// requested. Number 0 means the source did not report one.
func checkPage[T any](page Page[T], requested int) error {
	switch {
	case page.TotalPages < 0:
		return fmt.Errorf("%w: negative total pages %d", ErrInvalidPage, page.TotalPages)
	case page.Number != 0 && page.Number != requested:
		return fmt.Errorf("%w: asked for page %d, got %d", ErrInvalidPage, requested, page.Number)
	case page.TotalPages == 0 && len(page.Items) > 0:
		return fmt.Errorf("%w: %d items on a feed with no pages", ErrInvalidPage, len(page.Items))
	}
	return nil
}

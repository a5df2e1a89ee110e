// Package store holds the client-side caches of server data: one store per
// domain, each exposing loading/error flags for views and mutating its cache
// optimistically after successful writes so views need not re-fetch.
//
// Store actions are not deduplicated: two racing calls both hit the network
// and both land in the cache, last response wins. The internal mutex only
// keeps the cache itself consistent, it does not serialize actions.
package store

import "sync"

// defaultPageSize is used when a list call does not specify one.
const defaultPageSize = 20

// Entity is anything cached in a Collection, addressed by numeric ID.
type Entity interface {
	EntityID() int
}

// Pagination describes the cached list window.
type Pagination struct {
	Total      int
	Current    int
	PageSize   int
	TotalPages int
}

// Collection is the shared cache state embedded by every list-bearing store:
// an ordered item sequence mirroring server order, a detail slot, pagination
// metadata, and the loading/error flags.
type Collection[T Entity] struct {
	mu       sync.Mutex
	items    []T
	current  *T
	total    int
	page     int
	pageSize int
	loading  bool
	errMsg   string
}

// Items returns a copy of the cached sequence.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Current returns the cached detail item, if one is loaded.
func (c *Collection[T]) Current() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		var zero T
		return zero, false
	}
	return *c.current, true
}

// Pagination derives the pagination view from the cached state.
func (c *Collection[T]) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()

	pageSize := c.pageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := c.page
	if page <= 0 {
		page = 1
	}
	return Pagination{
		Total:      c.total,
		Current:    page,
		PageSize:   pageSize,
		TotalPages: (c.total + pageSize - 1) / pageSize,
	}
}

// Loading reports whether an action is in flight.
func (c *Collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// ErrorMessage returns the message captured from the last failed action,
// or an empty string. It is overwritten by each action, not accumulated.
func (c *Collection[T]) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Reset drops all cached state and flags.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.current = nil
	c.total = 0
	c.page = 0
	c.pageSize = 0
	c.loading = false
	c.errMsg = ""
}

// begin marks an action as started, clearing the previous error.
func (c *Collection[T]) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = true
	c.errMsg = ""
}

// fail records the action's error for views; the caller still re-raises it.
func (c *Collection[T]) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.errMsg = err.Error()
}

// finish marks an action as completed.
func (c *Collection[T]) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
}

// effectivePageSize resolves the page size to request.
func (c *Collection[T]) effectivePageSize(requested int) int {
	if requested > 0 {
		return requested
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pageSize > 0 {
		return c.pageSize
	}
	return defaultPageSize
}

// replaceList installs a fetched page into the cache.
func (c *Collection[T]) replaceList(items []T, total, page, pageSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.total = total
	if page <= 0 {
		page = 1
	}
	c.page = page
	c.pageSize = pageSize
	c.loading = false
}

// setCurrent installs a fetched detail item.
func (c *Collection[T]) setCurrent(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = &item
	c.loading = false
}

// prepend puts a freshly created entity at the head of the cache.
func (c *Collection[T]) prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
	c.total++
	c.loading = false
}

// replaceByID swaps the cached entry (and detail slot) matching the
// updated entity's ID.
func (c *Collection[T]) replaceByID(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].EntityID() == item.EntityID() {
			c.items[i] = item
			break
		}
	}
	if c.current != nil && (*c.current).EntityID() == item.EntityID() {
		c.current = &item
	}
	c.loading = false
}

// removeByID drops the cached entry with the given ID and clears the
// detail slot if it matched.
func (c *Collection[T]) removeByID(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, item := range c.items {
		if item.EntityID() != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.total--
	if c.current != nil && (*c.current).EntityID() == id {
		c.current = nil
	}
	c.loading = false
}

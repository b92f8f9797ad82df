package hooks

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// DefaultPriority is used by hosts that do not care about ordering.
const DefaultPriority = 10

// Filter transforms a value flowing through a chain.
type Filter[T any] func(ctx context.Context, value T) T

type entry[F any] struct {
	name     string
	priority int
	order    int
	fn       F
}

// Chain is an ordered list of filters for one hook.
type Chain[T any] struct {
	mu      sync.RWMutex
	entries []entry[Filter[T]]
	seq     int
}

// Add registers a filter. Nil filters and empty names are ignored.
func (c *Chain[T]) Add(name string, priority int, fn Filter[T]) {
	if c == nil || fn == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry[Filter[T]]{
		name:     trimmed,
		priority: priority,
		order:    c.seq,
		fn:       fn,
	})
	c.seq++
}

// Remove drops every filter registered under name.
func (c *Chain[T]) Remove(name string) {
	if c == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.name != trimmed {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

// Names lists the registered filters in execution order.
func (c *Chain[T]) Names() []string {
	ordered := c.snapshot()
	names := make([]string, 0, len(ordered))
	for _, e := range ordered {
		names = append(names, e.name)
	}
	return names
}

// Apply runs value through every filter in order and returns the result.
func (c *Chain[T]) Apply(ctx context.Context, value T) T {
	for _, e := range c.snapshot() {
		value = e.fn(ctx, value)
	}
	return value
}

func (c *Chain[T]) snapshot() []entry[Filter[T]] {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	entries := append([]entry[Filter[T]](nil), c.entries...)
	c.mu.RUnlock()
	sortEntries(entries)
	return entries
}

func sortEntries[F any](entries []entry[F]) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority == entries[j].priority {
			return entries[i].order < entries[j].order
		}
		return entries[i].priority < entries[j].priority
	})
}

// Package fields models the external field-storage capability: arbitrary
// named values stored against a content item.
package fields

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Updater sets one field value for a content item.
type Updater interface {
	UpdateField(ctx context.Context, itemID int64, key string, value any) error
}

// Reader returns the stored field values of a content item.
type Reader interface {
	FieldValues(ctx context.Context, itemID int64) (map[string]any, error)
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc func(ctx context.Context, itemID int64, key string, value any) error

// UpdateField implements Updater.
func (fn UpdaterFunc) UpdateField(ctx context.Context, itemID int64, key string, value any) error {
	return fn(ctx, itemID, key, value)
}

// MemoryStore keeps field values in memory. The zero value is ready to use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[int64]map[string]any
}

var (
	_ Updater = (*MemoryStore)(nil)
	_ Reader  = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// UpdateField implements Updater.
func (s *MemoryStore) UpdateField(ctx context.Context, itemID int64, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if itemID <= 0 || key == "" {
		return fmt.Errorf("fields: invalid target item %d key %q", itemID, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[int64]map[string]any)
	}
	if s.values[itemID] == nil {
		s.values[itemID] = make(map[string]any)
	}
	s.values[itemID][key] = value
	return nil
}

// FieldValues implements Reader.
func (s *MemoryStore) FieldValues(ctx context.Context, itemID int64) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.values[itemID]
	if len(stored) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(stored))
	for key, value := range stored {
		out[key] = value
	}
	return out, nil
}

// Keys returns the stored keys of an item in sorted order.
func (s *MemoryStore) Keys(itemID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values[itemID]))
	for key := range s.values[itemID] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

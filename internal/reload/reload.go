// Package reload keeps the taxonomy registry in sync with a directory of
// definition files.
package reload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// Registry is a taxonomy.Registry whose backing store can be swapped while
// readers are active.
type Registry struct {
	mu      sync.RWMutex
	current *taxonomy.Store
}

var _ taxonomy.Registry = (*Registry)(nil)

// NewRegistry wraps store.
func NewRegistry(store *taxonomy.Store) *Registry {
	if store == nil {
		store = taxonomy.NewStore()
	}
	return &Registry{current: store}
}

// Store returns the current store.
func (r *Registry) Store() *taxonomy.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Swap replaces the current store.
func (r *Registry) Swap(store *taxonomy.Store) {
	if store == nil {
		return
	}
	r.mu.Lock()
	r.current = store
	r.mu.Unlock()
}

// ObjectTaxonomies implements taxonomy.Registry.
func (r *Registry) ObjectTaxonomies(contentType string) []taxonomy.Taxonomy {
	return r.Store().ObjectTaxonomies(contentType)
}

// Taxonomy implements taxonomy.Registry.
func (r *Registry) Taxonomy(name string) (taxonomy.Taxonomy, bool) {
	return r.Store().Taxonomy(name)
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets how long the watcher waits for changes to settle before
// reloading.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// OnReload registers a callback invoked with every store that replaced the
// previous one.
func OnReload(fn func(context.Context, *taxonomy.Store)) Option {
	return func(w *Watcher) {
		if fn != nil {
			w.onReload = append(w.onReload, fn)
		}
	}
}

// Watcher reloads taxonomy definitions from a directory when its files change.
// Definitions that fail to load leave the previous registry in place.
type Watcher struct {
	dir      string
	registry *Registry
	logger   *zap.Logger
	debounce time.Duration
	onReload []func(context.Context, *taxonomy.Store)
}

// NewWatcher constructs a watcher over dir.
func NewWatcher(dir string, registry *Registry, options ...Option) (*Watcher, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("reload: directory is required")
	}
	if registry == nil {
		return nil, errors.New("reload: registry is required")
	}
	w := &Watcher{
		dir:      dir,
		registry: registry,
		logger:   zap.NewNop(),
		debounce: 250 * time.Millisecond,
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Load reads the directory once and swaps the registry on success.
func (w *Watcher) Load(ctx context.Context) error {
	store, err := taxonomy.LoadFS(os.DirFS(w.dir))
	if err != nil {
		return fmt.Errorf("reload: load %s: %w", w.dir, err)
	}
	w.registry.Swap(store)
	for _, fn := range w.onReload {
		fn(ctx, store)
	}
	w.logger.Info("taxonomies loaded",
		zap.String("dir", w.dir),
		zap.Int("count", len(store.All())))
	return nil
}

// Run watches the directory until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("reload: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("reload: watch %s: %w", w.dir, err)
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("taxonomy definition changed",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("taxonomy watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			if err := w.Load(ctx); err != nil {
				w.logger.Warn("keeping previous taxonomies", zap.Error(err))
			}
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

package hooks

import (
	"context"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Action writes page output for a hook.
type Action func(ctx context.Context, w io.Writer) error

// Actions is a registry of named page hooks such as "admin_head" or
// "admin_footer".
type Actions struct {
	mu     sync.RWMutex
	hooks  map[string][]entry[Action]
	seq    int
	logger *zap.Logger
}

// NewActions constructs an empty registry. A nil logger discards output.
func NewActions(logger *zap.Logger) *Actions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Actions{hooks: make(map[string][]entry[Action]), logger: logger}
}

// Add registers fn under hook with the given priority and a callback name
// used in logs.
func (a *Actions) Add(hook, name string, priority int, fn Action) {
	if a == nil || fn == nil {
		return
	}
	hook = strings.TrimSpace(hook)
	if hook == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.hooks == nil {
		a.hooks = make(map[string][]entry[Action])
	}
	a.hooks[hook] = append(a.hooks[hook], entry[Action]{
		name:     strings.TrimSpace(name),
		priority: priority,
		order:    a.seq,
		fn:       fn,
	})
	a.seq++
}

// Names lists the callbacks registered for hook in execution order.
func (a *Actions) Names(hook string) []string {
	ordered := a.snapshot(hook)
	names := make([]string, 0, len(ordered))
	for _, e := range ordered {
		names = append(names, e.name)
	}
	return names
}

// Do runs every callback registered for hook. A failing callback is logged
// and skipped; the remaining callbacks still run.
func (a *Actions) Do(ctx context.Context, hook string, w io.Writer) {
	for _, e := range a.snapshot(hook) {
		if err := ctx.Err(); err != nil {
			a.logger.Debug("hook aborted", zap.String("hook", hook), zap.Error(err))
			return
		}
		if err := e.fn(ctx, w); err != nil {
			a.logger.Warn("hook callback failed",
				zap.String("hook", hook),
				zap.String("callback", e.name),
				zap.Error(err))
		}
	}
}

func (a *Actions) snapshot(hook string) []entry[Action] {
	if a == nil {
		return nil
	}
	a.mu.RLock()
	entries := append([]entry[Action](nil), a.hooks[strings.TrimSpace(hook)]...)
	a.mu.RUnlock()
	sortEntries(entries)
	return entries
}

package inject

import (
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-quickpost/pkg/access"
	rendertemplate "github.com/goliatone/go-quickpost/pkg/render/template"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// Option customises an Injector.
type Option func(*Injector)

// WithChecker overrides the permission checker. Passing nil disables every
// group.
func WithChecker(checker access.Checker) Option {
	return func(i *Injector) {
		i.checker = checker
		i.checkerSet = true
	}
}

// WithTermSource supplies terms and current assignments.
func WithTermSource(source taxonomy.TermSource) Option {
	return func(i *Injector) {
		i.terms = source
	}
}

// WithFieldRenderer enables the field block.
func WithFieldRenderer(renderer FieldRenderer) Option {
	return func(i *Injector) {
		i.fields = renderer
	}
}

// WithDenylist replaces the reserved taxonomies that are never injected.
func WithDenylist(names ...string) Option {
	return func(i *Injector) {
		i.denylist = toSet(names)
	}
}

// WithBuiltins replaces the taxonomies the host editor already renders.
func WithBuiltins(names ...string) Option {
	return func(i *Injector) {
		i.builtins = toSet(names)
	}
}

// WithAnchors overrides the host page selectors.
func WithAnchors(anchors Anchors) Option {
	return func(i *Injector) {
		i.anchors = anchors
	}
}

// WithAssetBase sets the URL prefix the runtime assets are served from.
func WithAssetBase(base string) Option {
	return func(i *Injector) {
		i.assetBase = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithTemplateRenderer swaps the template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(i *Injector) {
		if renderer != nil {
			i.templates = renderer
		}
	}
}

// WithLogger attaches a logger; omitted groups and render failures are
// reported at debug and warn level respectively.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Injector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

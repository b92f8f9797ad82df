// Package savehook merges quick-post submissions into the host's save payload.
package savehook

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-quickpost/pkg/fields"
	"github.com/goliatone/go-quickpost/pkg/hooks"
	"github.com/goliatone/go-quickpost/pkg/submission"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// HookName is the save filter the merger registers on.
const HookName = "press_this_save_post"

// DefaultContentType is assumed when no resolver is configured.
const DefaultContentType = "post"

// ContentTypeResolver reports the content type of a stored item.
type ContentTypeResolver interface {
	ContentType(ctx context.Context, itemID int64) (string, bool)
}

// ContentTypeFunc adapts a function to ContentTypeResolver.
type ContentTypeFunc func(ctx context.Context, itemID int64) (string, bool)

// ContentType implements ContentTypeResolver.
func (fn ContentTypeFunc) ContentType(ctx context.Context, itemID int64) (string, bool) {
	return fn(ctx, itemID)
}

// SaveRequest pairs a payload with the submission that produced it; it is
// the value flowing through the host's save filter chain.
type SaveRequest struct {
	Payload    Payload
	Submission submission.Submission
}

// Option customises a Merger.
type Option func(*Merger)

// WithFieldStore enables forwarding of submitted field values. Without one
// the field feature is skipped.
func WithFieldStore(store fields.Updater) Option {
	return func(m *Merger) {
		m.fields = store
	}
}

// WithContentTypes resolves item content types; otherwise every item is
// treated as DefaultContentType.
func WithContentTypes(resolver ContentTypeResolver) Option {
	return func(m *Merger) {
		m.types = resolver
	}
}

// WithLogger attaches a logger for debug tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Merger) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Merger folds submitted taxonomy selections and field values into a save
// payload.
type Merger struct {
	registry taxonomy.Registry
	fields   fields.Updater
	types    ContentTypeResolver
	logger   *zap.Logger
}

// New constructs a Merger reading taxonomy metadata from registry.
func New(registry taxonomy.Registry, options ...Option) *Merger {
	m := &Merger{registry: registry, logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Merge returns payload with the submission applied. For every taxonomy of
// the item's content type that the submission mentions, the normalized values
// are unioned into TaxInput. Field values are forwarded to the field store,
// whose failures are ignored. A payload without an ID comes back unchanged.
// The input payload is never mutated.
func (m *Merger) Merge(ctx context.Context, payload Payload, sub submission.Submission) Payload {
	if m == nil || payload.ID == 0 {
		return payload
	}

	out := payload.Clone()
	if len(sub.Taxonomies) > 0 && m.registry != nil {
		contentType := m.contentType(ctx, payload.ID)
		for _, tax := range m.registry.ObjectTaxonomies(contentType) {
			input, ok := sub.Taxonomies[tax.Name]
			if !ok {
				continue
			}
			terms := input.Normalize()
			if out.TaxInput == nil {
				out.TaxInput = make(map[string][]string)
			}
			existing, had := out.TaxInput[tax.Name]
			if !had {
				out.TaxInput[tax.Name] = terms
			} else {
				out.TaxInput[tax.Name] = Union(existing, terms)
			}
			m.logger.Debug("merged taxonomy terms",
				zap.Int64("item", payload.ID),
				zap.String("taxonomy", tax.Name),
				zap.Strings("terms", out.TaxInput[tax.Name]))
		}
	}

	if m.fields != nil && len(sub.Fields) > 0 {
		keys := make([]string, 0, len(sub.Fields))
		for key := range sub.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			_ = m.fields.UpdateField(ctx, payload.ID, key, sub.Fields[key])
		}
	}

	return out
}

// Filter adapts the merger to the host's save filter chain.
func (m *Merger) Filter() hooks.Filter[SaveRequest] {
	return func(ctx context.Context, req SaveRequest) SaveRequest {
		req.Payload = m.Merge(ctx, req.Payload, req.Submission)
		return req
	}
}

// Register adds the merger to chain under HookName at priority.
func (m *Merger) Register(chain *hooks.Chain[SaveRequest], priority int) {
	chain.Add(HookName, priority, m.Filter())
}

func (m *Merger) contentType(ctx context.Context, itemID int64) string {
	if m.types == nil {
		return DefaultContentType
	}
	if contentType, ok := m.types.ContentType(ctx, itemID); ok && contentType != "" {
		return contentType
	}
	return DefaultContentType
}

// Union returns the distinct values of existing followed by those of extra,
// keeping first-seen order.
func Union(existing, extra []string) []string {
	out := make([]string, 0, len(existing)+len(extra))
	seen := make(map[string]struct{}, len(existing)+len(extra))
	for _, list := range [][]string{existing, extra} {
		for _, value := range list {
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			out = append(out, value)
		}
	}
	return out
}

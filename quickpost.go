// Package quickpost adds custom taxonomy controls and field inputs to a
// quick-post editor and merges the submitted terms into the save payload.
//
// The building blocks live in pkg/: the save merger (savehook), the markup
// injector (inject), the checklist model, the submission parser and the hook
// pipeline that wires them into a host. This package re-exports the common
// entry points.
package quickpost

import (
	"github.com/goliatone/go-quickpost/pkg/inject"
	"github.com/goliatone/go-quickpost/pkg/savehook"
	"github.com/goliatone/go-quickpost/pkg/submission"
	"github.com/goliatone/go-quickpost/pkg/taxonomy"
)

// Payload is the in-flight save payload.
type Payload = savehook.Payload

// Submission is the parsed request data the merger reads.
type Submission = submission.Submission

// Taxonomy describes a registered taxonomy.
type Taxonomy = taxonomy.Taxonomy

// Request is the editor page context the injector renders for.
type Request = inject.Request

// NewMerger exposes the save merger constructor from the top-level module.
func NewMerger(registry taxonomy.Registry, options ...savehook.Option) *savehook.Merger {
	return savehook.New(registry, options...)
}

// NewInjector exposes the injector constructor from the top-level module.
func NewInjector(registry taxonomy.Registry, options ...inject.Option) (*inject.Injector, error) {
	return inject.New(registry, options...)
}

// DefaultTaxonomies loads the taxonomy set embedded with the module.
func DefaultTaxonomies() (*taxonomy.Store, error) {
	return taxonomy.LoadFS(taxonomy.DefaultsFS())
}

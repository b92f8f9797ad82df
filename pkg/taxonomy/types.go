package taxonomy

import (
	"context"
	"strings"
)

// Built-in taxonomy names rendered natively by the quick-post editor.
const (
	Category   = "category"
	PostTag    = "post_tag"
	PostFormat = "post_format"
)

// DefaultAssignCapability is used when a taxonomy omits capabilities.
const DefaultAssignCapability = "edit_posts"

// Taxonomy is a named classification scheme attached to one or more content
// types.
type Taxonomy struct {
	Name         string       `json:"name" yaml:"name"`
	Label        string       `json:"label" yaml:"label"`
	Labels       Labels       `json:"labels" yaml:"labels"`
	Hierarchical bool         `json:"hierarchical" yaml:"hierarchical"`
	ObjectTypes  []string     `json:"objectTypes" yaml:"objectTypes"`
	Capabilities Capabilities `json:"capabilities" yaml:"capabilities"`
	Terms        []TermSeed   `json:"terms,omitempty" yaml:"terms,omitempty"`
}

// Labels holds the display strings the editor shows for a taxonomy.
type Labels struct {
	Name                    string `json:"name" yaml:"name"`
	SingularName            string `json:"singularName" yaml:"singularName"`
	SeparateItemsWithCommas string `json:"separateItemsWithCommas" yaml:"separateItemsWithCommas"`
}

// Capabilities names the permissions guarding taxonomy operations.
type Capabilities struct {
	AssignTerms string `json:"assignTerms" yaml:"assignTerms"`
}

// TermSeed declares a term that should exist when a store is first created.
// Parent refers to another seed by name.
type TermSeed struct {
	Name   string `json:"name" yaml:"name"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Term is a single value within a taxonomy.
type Term struct {
	ID       int64  `json:"id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
	Parent   int64  `json:"parent,omitempty"`
}

// AppliesTo reports whether the taxonomy is registered for contentType.
func (t Taxonomy) AppliesTo(contentType string) bool {
	contentType = strings.TrimSpace(contentType)
	for _, objectType := range t.ObjectTypes {
		if objectType == contentType {
			return true
		}
	}
	return false
}

// Registry answers taxonomy lookups for the save hook and the UI injector.
type Registry interface {
	// ObjectTaxonomies returns the taxonomies applicable to contentType in
	// registration order.
	ObjectTaxonomies(contentType string) []Taxonomy
	// Taxonomy returns the named taxonomy.
	Taxonomy(name string) (Taxonomy, bool)
}

// TermSource supplies the terms of a taxonomy and the terms currently
// assigned to a content item.
type TermSource interface {
	Terms(ctx context.Context, taxonomy string) ([]Term, error)
	Assigned(ctx context.Context, itemID int64, taxonomy string) ([]Term, error)
}

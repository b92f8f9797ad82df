package taxonomy

import "strings"

// Store is an in-memory Registry. It is safe for concurrent readers when
// treated as immutable after construction.
type Store struct {
	order      []string
	taxonomies map[string]Taxonomy
}

var _ Registry = (*Store)(nil)

// NewStore builds a store from the provided taxonomies, keeping their order.
// Later definitions replace earlier ones with the same name.
func NewStore(taxonomies ...Taxonomy) *Store {
	store := &Store{taxonomies: make(map[string]Taxonomy, len(taxonomies))}
	for _, tax := range taxonomies {
		store.add(normaliseTaxonomy(tax))
	}
	return store
}

func (s *Store) add(tax Taxonomy) {
	if tax.Name == "" {
		return
	}
	if _, exists := s.taxonomies[tax.Name]; !exists {
		s.order = append(s.order, tax.Name)
	}
	s.taxonomies[tax.Name] = tax
}

// Taxonomy returns the named taxonomy.
func (s *Store) Taxonomy(name string) (Taxonomy, bool) {
	if s == nil {
		return Taxonomy{}, false
	}
	tax, ok := s.taxonomies[strings.TrimSpace(name)]
	return tax, ok
}

// ObjectTaxonomies returns the taxonomies registered for contentType.
func (s *Store) ObjectTaxonomies(contentType string) []Taxonomy {
	if s == nil {
		return nil
	}
	var out []Taxonomy
	for _, name := range s.order {
		tax := s.taxonomies[name]
		if tax.AppliesTo(contentType) {
			out = append(out, tax)
		}
	}
	return out
}

// All returns every taxonomy in registration order.
func (s *Store) All() []Taxonomy {
	if s == nil {
		return nil
	}
	out := make([]Taxonomy, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.taxonomies[name])
	}
	return out
}

// Empty reports whether the store holds any taxonomies.
func (s *Store) Empty() bool {
	return s == nil || len(s.order) == 0
}

func normaliseTaxonomy(tax Taxonomy) Taxonomy {
	tax.Name = strings.TrimSpace(tax.Name)
	tax.Label = strings.TrimSpace(tax.Label)
	if tax.Labels.Name == "" {
		tax.Labels.Name = tax.Label
	}
	if tax.Label == "" {
		tax.Label = tax.Labels.Name
	}
	if tax.Label == "" {
		tax.Label = tax.Name
		tax.Labels.Name = tax.Name
	}
	if tax.Labels.SingularName == "" {
		tax.Labels.SingularName = tax.Label
	}
	if tax.Labels.SeparateItemsWithCommas == "" && !tax.Hierarchical {
		tax.Labels.SeparateItemsWithCommas = "Separate " + strings.ToLower(tax.Label) + " with commas"
	}
	if strings.TrimSpace(tax.Capabilities.AssignTerms) == "" {
		tax.Capabilities.AssignTerms = DefaultAssignCapability
	}
	if len(tax.ObjectTypes) > 0 {
		types := make([]string, 0, len(tax.ObjectTypes))
		for _, objectType := range tax.ObjectTypes {
			if trimmed := strings.TrimSpace(objectType); trimmed != "" {
				types = append(types, trimmed)
			}
		}
		tax.ObjectTypes = types
	}
	return tax
}

package submission

import (
	"fmt"
	"sort"
	"strings"
)

// MarkerAttribute tags hidden inputs generated from checklist state so a
// serialization pass can find and drop them before rebuilding.
const MarkerAttribute = "data-quickpost-taxonomy"

// HiddenField represents a hidden form input emitted alongside the visible
// editor controls. Marker carries the taxonomy name for inputs generated from
// checklist state and is empty for plain host fields.
type HiddenField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Marker string `json:"marker,omitempty"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// TaxonomyField returns the marker-tagged hidden field that submits one
// selected term of a checklist group.
func TaxonomyField(taxonomy, termID string) HiddenField {
	taxonomy = strings.TrimSpace(taxonomy)
	return HiddenField{
		Name:   TaxonomyInputName(taxonomy, true),
		Value:  termID,
		Marker: taxonomy,
	}
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		clean[key] = value
	}
	if len(clean) == 0 {
		return nil
	}

	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{
			Name:  name,
			Value: clean[name],
		})
	}
	return result
}

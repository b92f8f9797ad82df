package submission

import "strings"

// Request keys the host editor submits.
const (
	TaxonomyKey = "tax_input"
	FieldKey    = "acf"
	NewTagKey   = "newtag"
)

// TaxonomyInputName addresses a taxonomy's submission slot. Multi selects the
// array form used by checklist selections; the scalar form carries a
// comma-separated term list.
func TaxonomyInputName(taxonomy string, multi bool) string {
	name := TaxonomyKey + "[" + strings.TrimSpace(taxonomy) + "]"
	if multi {
		name += "[]"
	}
	return name
}

// FieldInputName addresses an external field value.
func FieldInputName(key string) string {
	return FieldKey + "[" + strings.TrimSpace(key) + "]"
}

// NewTagInputName addresses the free-text entry box of a flat taxonomy.
func NewTagInputName(taxonomy string) string {
	return NewTagKey + "[" + strings.TrimSpace(taxonomy) + "]"
}

// splitKey breaks "base[a][b]" into "base" and ["a", "b"]. Keys without a
// well-formed bracket suffix come back unchanged with no parts.
func splitKey(key string) (string, []string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return key, nil
	}
	base, rest := key[:open], key[open:]
	var parts []string
	for rest != "" {
		if rest[0] != '[' {
			return key, nil
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key, nil
		}
		parts = append(parts, rest[1:end])
		rest = rest[end+1:]
	}
	return base, parts
}

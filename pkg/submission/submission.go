package submission

import (
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-quickpost/pkg/sanitize"
)

// Submission is the raw request data the save hook consumes: term selections
// keyed by taxonomy and external field values keyed by field key.
type Submission struct {
	Taxonomies map[string]TermInput
	Fields     map[string]any
}

// TermInput wraps a submitted taxonomy value. Recognised shapes are a
// comma-separated string and a list of strings; anything else normalises to
// nothing.
type TermInput struct {
	value any
}

// Terms wraps a raw submitted value.
func Terms(value any) TermInput {
	return TermInput{value: value}
}

// TermString wraps the comma-separated form.
func TermString(value string) TermInput {
	return TermInput{value: value}
}

// TermList wraps the list form.
func TermList(values ...string) TermInput {
	return TermInput{value: append([]string(nil), values...)}
}

// Raw returns the wrapped value.
func (in TermInput) Raw() any {
	return in.value
}

// Normalize converts the submitted value to a list of distinct plain-text
// term values in first-seen order. The string form is split on commas; every
// entry is trimmed and sanitized and empty entries are dropped.
func (in TermInput) Normalize() []string {
	var candidates []string
	switch v := in.value.(type) {
	case string:
		candidates = strings.Split(v, ",")
	case []string:
		candidates = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	default:
		return []string{}
	}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		cleaned := sanitize.Text(strings.TrimSpace(candidate))
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

// Parse extracts taxonomy selections and field values from submitted form
// data. "tax_input[t]" yields the string form and "tax_input[t][]" (or any
// indexed "tax_input[t][n]") the list form; when both appear the list wins.
// "acf[key]" yields a string and "acf[key][]" a list of strings.
func Parse(values url.Values) Submission {
	sub := Submission{}
	if len(values) == 0 {
		return sub
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lists := make(map[string][]string)
	for _, key := range keys {
		base, parts := splitKey(key)
		if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
			continue
		}
		name := strings.TrimSpace(parts[0])
		raw := values[key]

		switch base {
		case TaxonomyKey:
			if len(parts) == 1 {
				if _, listed := lists[name]; listed {
					continue
				}
				if sub.Taxonomies == nil {
					sub.Taxonomies = make(map[string]TermInput)
				}
				sub.Taxonomies[name] = TermString(last(raw))
				continue
			}
			lists[name] = append(lists[name], raw...)
			if sub.Taxonomies == nil {
				sub.Taxonomies = make(map[string]TermInput)
			}
			sub.Taxonomies[name] = TermList(lists[name]...)
		case FieldKey:
			if sub.Fields == nil {
				sub.Fields = make(map[string]any)
			}
			if len(parts) == 1 {
				if _, listed := sub.Fields[name].([]string); listed {
					continue
				}
				sub.Fields[name] = last(raw)
				continue
			}
			existing, _ := sub.Fields[name].([]string)
			sub.Fields[name] = append(existing, raw...)
		}
	}
	return sub
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

package fields

import (
	"fmt"
	"strings"
)

// Supported field types.
const (
	TypeText     = "text"
	TypeTextarea = "textarea"
	TypeNumber   = "number"
	TypeURL      = "url"
)

// Definition declares a field the editor should collect.
type Definition struct {
	Key          string `json:"key" yaml:"key"`
	Label        string `json:"label" yaml:"label"`
	Type         string `json:"type" yaml:"type"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}

// NormalizeDefinitions trims keys, defaults labels and types and rejects
// duplicate or unknown entries.
func NormalizeDefinitions(defs []Definition) ([]Definition, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]Definition, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))
	for idx, def := range defs {
		def.Key = strings.TrimSpace(def.Key)
		if def.Key == "" {
			return nil, fmt.Errorf("fields: definition %d has an empty key", idx)
		}
		if _, dup := seen[def.Key]; dup {
			return nil, fmt.Errorf("fields: duplicate definition %q", def.Key)
		}
		seen[def.Key] = struct{}{}

		def.Type = strings.ToLower(strings.TrimSpace(def.Type))
		switch def.Type {
		case "":
			def.Type = TypeText
		case TypeText, TypeTextarea, TypeNumber, TypeURL:
		default:
			return nil, fmt.Errorf("fields: definition %q has unsupported type %q", def.Key, def.Type)
		}
		if strings.TrimSpace(def.Label) == "" {
			def.Label = def.Key
		}
		out = append(out, def)
	}
	return out, nil
}

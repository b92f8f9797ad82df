package fields

import (
	"context"
	"embed"
	"fmt"
	"io"
	"strings"

	rendertemplate "github.com/goliatone/go-quickpost/pkg/render/template"
	"github.com/goliatone/go-quickpost/pkg/render/template/pongo"
	"github.com/goliatone/go-quickpost/pkg/submission"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// FormRenderer renders inputs for a set of field definitions, prefilled from
// a Reader when one is configured.
type FormRenderer struct {
	defs      []Definition
	reader    Reader
	templates rendertemplate.TemplateRenderer
}

// RendererOption customises a FormRenderer.
type RendererOption func(*FormRenderer)

// WithReader prefills inputs with stored values.
func WithReader(reader Reader) RendererOption {
	return func(r *FormRenderer) {
		r.reader = reader
	}
}

// WithTemplateRenderer swaps the template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) RendererOption {
	return func(r *FormRenderer) {
		if renderer != nil {
			r.templates = renderer
		}
	}
}

// NewFormRenderer constructs a renderer for defs.
func NewFormRenderer(defs []Definition, options ...RendererOption) (*FormRenderer, error) {
	normalized, err := NormalizeDefinitions(defs)
	if err != nil {
		return nil, err
	}
	r := &FormRenderer{defs: normalized}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.templates == nil {
		engine, err := pongo.New(pongo.WithName("fields"), pongo.WithFS(embeddedTemplates))
		if err != nil {
			return nil, fmt.Errorf("fields: configure template renderer: %w", err)
		}
		r.templates = engine
	}
	return r, nil
}

type fieldView struct {
	Key          string `json:"key"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	Label        string `json:"label"`
	Type         string `json:"type"`
	Value        string `json:"value"`
	Instructions string `json:"instructions"`
}

// RenderFields writes the field inputs for itemID. Nothing is written when no
// definitions are configured.
func (r *FormRenderer) RenderFields(ctx context.Context, w io.Writer, itemID int64) error {
	if r == nil || len(r.defs) == 0 {
		return nil
	}

	var stored map[string]any
	if r.reader != nil && itemID > 0 {
		values, err := r.reader.FieldValues(ctx, itemID)
		if err != nil {
			return fmt.Errorf("fields: read values for %d: %w", itemID, err)
		}
		stored = values
	}

	views := make([]fieldView, 0, len(r.defs))
	for _, def := range r.defs {
		views = append(views, fieldView{
			Key:          def.Key,
			ID:           "acf-" + def.Key,
			Name:         submission.FieldInputName(def.Key),
			Label:        def.Label,
			Type:         def.Type,
			Value:        displayValue(stored[def.Key]),
			Instructions: def.Instructions,
		})
	}

	if _, err := r.templates.RenderTemplate("templates/fields", map[string]any{"fields": views}, w); err != nil {
		return fmt.Errorf("fields: render: %w", err)
	}
	return nil
}

// Definitions returns the normalized definitions.
func (r *FormRenderer) Definitions() []Definition {
	if r == nil {
		return nil
	}
	return append([]Definition(nil), r.defs...)
}

func displayValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

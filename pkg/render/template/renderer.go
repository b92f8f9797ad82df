package template

import (
	"io"
)

// TemplateRenderer renders named templates or ad-hoc template strings. Data
// is exposed to templates through its JSON field names.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}

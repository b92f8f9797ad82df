package inject

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded templates so hosts can copy and override
// them through WithTemplateRenderer.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

package quickpost

import (
	"io/fs"

	"github.com/goliatone/go-quickpost/pkg/inject"
)

// EmbeddedTemplates exposes the built-in injector templates so callers can
// copy or extend them and pass their own engine through
// inject.WithTemplateRenderer.
func EmbeddedTemplates() fs.FS {
	return inject.TemplatesFS()
}

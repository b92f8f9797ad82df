// Package template defines the renderer-agnostic seam the injector, the field
// renderer and the demo editor use to turn structured data into markup.
package template

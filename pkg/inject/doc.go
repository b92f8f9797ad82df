// Package inject builds the extra quick-post editor controls for custom
// taxonomies. Plan turns request context into structured data: the eligible
// groups, their derived element identifiers and an ordered list of client
// initialization steps. The render methods draw that plan with templates and
// hand it to the browser runtime as a JSON bootstrap document, so all DOM
// relocation logic lives in one testable script instead of inline snippets.
package inject

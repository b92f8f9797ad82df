// Package hooks provides the host-side extension points the quick-post editor
// exposes: typed filter chains that transform a value in priority order and
// named actions that write markup into the page being rendered.
//
// Lower priorities run first. Entries sharing a priority run in registration
// order, so the sequence is fully determined by the registrations themselves.
package hooks

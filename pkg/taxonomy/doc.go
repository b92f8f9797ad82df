// Package taxonomy describes the classification schemes a content item can be
// assigned to. A Store is loaded once from JSON or YAML documents and treated
// as immutable afterwards, so it can be shared between requests and swapped
// wholesale when the backing files change.
package taxonomy

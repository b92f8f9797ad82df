package taxonomy

import (
	"embed"
	"io/fs"
)

//go:embed defaults/*.yaml
var embeddedDefaults embed.FS

// DefaultsFS returns the bundled taxonomy definitions: the built-in category
// and tag schemes, the reserved post format and map-marker schemes, and a
// sample "topic" and "series" pair.
func DefaultsFS() fs.FS {
	sub, err := fs.Sub(embeddedDefaults, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}

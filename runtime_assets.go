package quickpost

import (
	"embed"
	"io/fs"
)

//go:embed pkg/runtime/assets/*.js pkg/runtime/assets/*.css
var embeddedRuntimeAssets embed.FS

// RuntimeAssetsFS exposes the browser runtime (committed under
// pkg/runtime/assets) so hosts can serve it next to the editor page.
//
// Typical mount:
//
//	mux.Handle("/quickpost/assets/",
//	  http.StripPrefix("/quickpost/assets/",
//	    http.FileServerFS(quickpost.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedRuntimeAssets, "pkg/runtime/assets")
	if err != nil {
		return embeddedRuntimeAssets
	}
	return sub
}

package formruntime

import (
	"io/fs"

	"github.com/goliatone/go-formruntime/pkg/renderers/html"
)

// RuntimeAssetsFS exposes the stylesheet and the browser script that toggles
// long descriptions, so Go applications can serve them next to fragments.
//
// Typical mount:
//
//	mux.Handle("/runtime/",
//	  http.StripPrefix("/runtime/",
//	    http.FileServerFS(formruntime.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return html.AssetsFS()
}

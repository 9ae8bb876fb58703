// Package static provides the embedded browser UI assets.
package static

import (
	"embed"
	"net/http"
)

//go:embed index.html app.js style.css
var assetsFS embed.FS

// Handler returns an http.Handler serving the embedded assets. The root
// path serves index.html via http.FileServer's directory default.
func Handler() http.Handler {
	return http.FileServerFS(assetsFS)
}

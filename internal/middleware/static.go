package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// StaticFileServer serves bank logos from dir. Unknown files get the
// placeholder SVG instead of a 404 so the client always has an image.
func StaticFileServer(dir, placeholder string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Clean("/" + r.URL.Path)
		path := filepath.Join(dir, name)

		if info, err := os.Stat(path); err == nil && !info.IsDir() && strings.HasSuffix(name, ".svg") {
			w.Header().Set("Cache-Control", "public, max-age=2592000")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write([]byte(placeholder))
	})
}

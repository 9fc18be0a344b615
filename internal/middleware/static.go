package middleware

import (
	"net/http"
	"os"
	"path/filepath"
)

const placeholderIcon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><rect width="24" height="24" rx="4" fill="#f0f0f0"/><path d="M6 17l3.5-4.5 2.5 3 3.5-4.5L20 17H6z" fill="#7857ff"/><circle cx="8.5" cy="8.5" r="1.5" fill="#7857ff"/></svg>`

// StaticFileServer serves transformation icons from dir, falling back to a
// placeholder SVG for icons that are not on disk.
func StaticFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "public, max-age=2592000")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write([]byte(placeholderIcon))
	})
}

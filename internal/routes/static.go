package routes

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterStatic serves the front end from dir. Paths that match no file
// fall back to index.html so client-side routes load the app.
func RegisterStatic(router chi.Router, dir string) {
	if dir == "" {
		return
	}
	router.Handle("/*", spaHandler(os.DirFS(dir)))
}

func spaHandler(root fs.FS) http.Handler {
	fileServer := http.FileServerFS(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "."
		}

		info, err := fs.Stat(root, name)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir() && !hasIndex(root, name)) {
			http.ServeFileFS(w, r, root, "index.html")
			return
		}

		fileServer.ServeHTTP(w, r)
	})
}

func hasIndex(root fs.FS, dir string) bool {
	_, err := fs.Stat(root, path.Join(dir, "index.html"))
	return err == nil
}

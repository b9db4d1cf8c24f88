// Package staticfiles carries the service's front-end assets. They are
// embedded in the binary; Collect copies them out at build time so a
// container can serve the collected directory instead.
package staticfiles

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

//go:embed assets
var embedded embed.FS

// Assets returns the embedded asset tree.
func Assets() http.FileSystem {
	fsys, err := fs.Sub(embedded, "assets")
	if err != nil {
		panic(err)
	}

	return http.FS(fsys)
}

// Collect copies the embedded assets into dir, creating it as needed.
// This is the static-collection build step.
func Collect(dir string) error {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		return errors.Wrap(err, "embedded assets")
	}

	return fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		target := filepath.Join(dir, filepath.FromSlash(path))

		if d.IsDir() {
			return errors.Wrapf(os.MkdirAll(target, 0o755), "mkdir %s", target)
		}

		b, err := fs.ReadFile(sub, path)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}

		return errors.Wrapf(os.WriteFile(target, b, 0o644), "write %s", target)
	})
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit any URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, r)
	})
}

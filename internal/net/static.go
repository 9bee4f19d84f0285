package net

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"dogwalk/server"
)

// StaticHandler serves files from root for any request that isn't routed
// to the API. Paths are cleaned and rejected if they would escape root;
// directories resolve to index.html (§6 "Static files").
type StaticHandler struct {
	root string
}

// NewStaticHandler constructs a StaticHandler rooted at root. root is
// resolved to an absolute path once at construction so every request's
// escape check is a simple prefix comparison.
func NewStaticHandler(root string) (*StaticHandler, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &StaticHandler{root: abs}, nil
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, server.NewAPIError(server.ErrInvalidMethod, "method not allowed"))
		return
	}

	cleanPath := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	full := filepath.Join(h.root, cleanPath)

	if !isWithinRoot(h.root, full) {
		writeError(w, server.NewAPIError(server.ErrBadRequest, "path escapes static root"))
		return
	}

	info, err := os.Stat(full)
	if err != nil {
		writeError(w, server.NewAPIError(server.ErrBadRequest, "not found"))
		return
	}
	if info.IsDir() {
		full = filepath.Join(full, "index.html")
		if _, err := os.Stat(full); err != nil {
			writeError(w, server.NewAPIError(server.ErrBadRequest, "not found"))
			return
		}
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, full)
}

// isWithinRoot reports whether full is root itself or a descendant of it.
func isWithinRoot(root, full string) bool {
	rel, err := filepath.Rel(root, full)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

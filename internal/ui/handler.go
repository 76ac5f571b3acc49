package ui

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// Handler serves static assets from an embedded filesystem and answers every other
// non-asset path with the rendered shell, enabling history-based client routing.
type Handler struct {
	fileSystem fs.FS
	fileServer http.Handler
	shell      Shell
	logger     *slog.Logger
}

// NewHandler creates a handler over fsys.
func NewHandler(fsys fs.FS, shell Shell, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		fileSystem: fsys,
		fileServer: http.FileServerFS(fsys),
		shell:      shell,
		logger:     logger,
	}
}

// ServeHTTP serves a static file if it exists, otherwise the shell.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cleanPath := path.Clean(r.URL.Path)
	if cleanPath == "/" || cleanPath == "/index.html" {
		h.serveShell(w, r)
		return
	}

	f, err := h.fileSystem.Open(strings.TrimPrefix(cleanPath, "/"))
	if err != nil {
		if strings.HasPrefix(cleanPath, "/assets/") {
			http.NotFound(w, r)
			return
		}
		h.serveShell(w, r)
		return
	}
	stat, err := f.Stat()
	_ = f.Close()
	if err == nil && stat.IsDir() {
		h.serveShell(w, r)
		return
	}

	setCacheHeaders(w, cleanPath)
	h.fileServer.ServeHTTP(w, r)
}

func (h *Handler) serveShell(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.shell.Render(&buf); err != nil {
		h.logger.Error("shell render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}

// setCacheHeaders gives bundled assets a long cache lifetime. The theme stylesheet and
// entry script keep stable names, so they are revalidated instead.
func setCacheHeaders(w http.ResponseWriter, filePath string) {
	switch {
	case strings.HasPrefix(filePath, "/assets/theme/"), filePath == "/"+EntryScript:
		w.Header().Set("Cache-Control", "no-cache")
	case strings.HasPrefix(filePath, "/assets/"):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}
}

package ui

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	fsys := fstest.MapFS{
		"assets/main.js":                {Data: []byte("console.log('oxo')")},
		"assets/theme/classic.css":      {Data: []byte("body{margin:0}")},
		"assets/board.4f2a1c.js":        {Data: []byte("export default {}")},
		"assets/images/placeholder.txt": {Data: []byte("x")},
		"favicon.ico":                   {Data: []byte("icon")},
	}
	return NewHandler(fsys, DefaultShell(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandler_ServesShell(t *testing.T) {
	for _, target := range []string{"/", "/index.html", "/game/42", "/assets/images"} {
		t.Run(target, func(t *testing.T) {
			rec := serve(newTestHandler(), http.MethodGet, target)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
			assert.Contains(t, rec.Body.String(), `<div id="app"></div>`)
		})
	}
}

func TestHandler_HeadShell(t *testing.T) {
	rec := serve(newTestHandler(), http.MethodHead, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandler_ServesStaticAssets(t *testing.T) {
	tests := []struct {
		target    string
		body      string
		wantCache string
	}{
		{target: "/assets/main.js", body: "console.log('oxo')", wantCache: "no-cache"},
		{target: "/assets/theme/classic.css", body: "body{margin:0}", wantCache: "no-cache"},
		{target: "/assets/board.4f2a1c.js", body: "export default {}", wantCache: "public, max-age=31536000, immutable"},
		{target: "/favicon.ico", body: "icon", wantCache: ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(newTestHandler(), http.MethodGet, tt.target)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, tt.wantCache, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestHandler_MissingAssetIs404(t *testing.T) {
	rec := serve(newTestHandler(), http.MethodGet, "/assets/theme/missing.css")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), `id="app"`))
}

func TestDevServerProxy(t *testing.T) {
	vite := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "vite:"+r.URL.Path)
	}))
	defer vite.Close()

	h, err := NewDevServerProxy(vite.URL, nil)
	require.NoError(t, err)

	rec := serve(h, http.MethodGet, "/src/main.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vite:/src/main.js", rec.Body.String())
}

func TestDevServerProxy_Unreachable(t *testing.T) {
	vite := httptest.NewServer(http.NotFoundHandler())
	target := vite.URL
	vite.Close()

	h, err := NewDevServerProxy(target, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	rec := serve(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDevServerProxy_InvalidTarget(t *testing.T) {
	for _, target := range []string{"", "localhost:5173/x", "/relative", "://bad"} {
		_, err := NewDevServerProxy(target, nil)
		assert.Error(t, err, target)
	}
}

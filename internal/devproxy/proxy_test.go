package devproxy

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startLocalHTTPServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping network-bound test: cannot bind loopback socket: %v", err)
	}
	srv := httptest.NewUnstartedServer(h)
	srv.Listener = ln
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

type observed struct {
	path          string
	requestURI    string
	query         string
	host          string
	forwardedHost string
}

type seenRequest struct {
	mu sync.Mutex
	observed
}

func (s *seenRequest) snapshot() observed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observed
}

func recordingBackend(t *testing.T, seen *seenRequest, calls *atomic.Int32) *httptest.Server {
	return startLocalHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		seen.mu.Lock()
		seen.path = r.URL.Path
		seen.requestURI = r.RequestURI
		seen.query = r.URL.RawQuery
		seen.host = r.Host
		seen.forwardedHost = r.Header.Get("X-Forwarded-Host")
		seen.mu.Unlock()
		_, _ = w.Write([]byte("backend:" + r.URL.Path))
	}))
}

func TestMiddleware_RewritesAndForwardsOnce(t *testing.T) {
	var seen seenRequest
	var calls atomic.Int32
	backend := recordingBackend(t, &seen, &calls)

	table := TableFor(Configure(ModeDevelopment, Options{APIBaseURL: backend.URL}))
	mw, err := Middleware(table, newTestLogger())
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("proxied request must not reach the next handler")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users?page=2", nil)
	req.Host = "localhost:5173"
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "backend:/api/oxo/users", rec.Body.String())
	assert.Equal(t, int32(1), calls.Load())
	got := seen.snapshot()
	assert.Equal(t, "/api/oxo/users", got.path)
	assert.Equal(t, "page=2", got.query)

	u, err := url.Parse(backend.URL)
	require.NoError(t, err)
	assert.Equal(t, u.Host, got.host, "changeOrigin should send the target host")
	assert.Equal(t, "localhost:5173", got.forwardedHost)
}

func TestMiddleware_BarePrefix(t *testing.T) {
	var seen seenRequest
	var calls atomic.Int32
	backend := recordingBackend(t, &seen, &calls)

	mw, err := Middleware(TableFor(Configure(ModeDevelopment, Options{APIBaseURL: backend.URL})), newTestLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mw(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/oxo", seen.snapshot().path)
}

func TestMiddleware_PreservesEscapedPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/files/a%2Fb", "/api/oxo/files/a%2Fb"},
		{"/api/name%20x", "/api/oxo/name%20x"},
		{"/api/files/a%2Fb?q=1", "/api/oxo/files/a%2Fb?q=1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var seen seenRequest
			var calls atomic.Int32
			backend := recordingBackend(t, &seen, &calls)

			mw, err := Middleware(TableFor(Configure(ModeDevelopment, Options{APIBaseURL: backend.URL})), newTestLogger())
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			mw(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.in, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, int32(1), calls.Load())
			assert.Equal(t, tt.want, seen.snapshot().requestURI)
		})
	}
}

func TestMiddleware_NonMatchingFallsThrough(t *testing.T) {
	var seen seenRequest
	var calls atomic.Int32
	backend := recordingBackend(t, &seen, &calls)

	mw, err := Middleware(TableFor(Configure(ModeDevelopment, Options{APIBaseURL: backend.URL})), newTestLogger())
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("spa:" + r.URL.Path))
	})

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other/path", nil))

	assert.Equal(t, "spa:/other/path", rec.Body.String())
	assert.Equal(t, int32(0), calls.Load())
}

func TestMiddleware_ProductionPassesEverything(t *testing.T) {
	mw, err := Middleware(TableFor(Configure(ModeProduction, Options{APIBaseURL: "http://example.com"})), newTestLogger())
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("spa:" + r.URL.Path))
	})

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, "spa:/api/users", rec.Body.String())
}

func TestNewHandler_KeepsOriginWhenChangeOriginDisabled(t *testing.T) {
	var seen seenRequest
	var calls atomic.Int32
	backend := recordingBackend(t, &seen, &calls)

	rule := DevProxy{PathPrefix: "/api", Target: backend.URL, Rewrite: Rewrite}
	h, err := NewHandler(rule, newTestLogger())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Host = "dev.local:5173"
	h.ServeHTTP(httptest.NewRecorder(), req)

	got := seen.snapshot()
	assert.Equal(t, "dev.local:5173", got.host)
	assert.Equal(t, "/api/oxo/state", got.path)
}

func TestNewHandler_InvalidTargets(t *testing.T) {
	for _, target := range []string{"", "://invalid", "localhost:8080/path", "/relative"} {
		t.Run(target, func(t *testing.T) {
			_, err := NewHandler(DevProxy{PathPrefix: "/api", Target: target, Rewrite: Rewrite}, newTestLogger())
			assert.Error(t, err)
		})
	}
}

func TestMiddleware_InvalidTargetFails(t *testing.T) {
	_, err := Middleware(TableFor(Configure(ModeDevelopment, Options{})), newTestLogger())
	assert.Error(t, err)
}

func TestNewHandler_UpstreamDown(t *testing.T) {
	backend := startLocalHTTPServer(t, http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	h, err := NewHandler(DevProxy{PathPrefix: "/api", Target: target, ChangeOrigin: true, Rewrite: Rewrite}, newTestLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream unavailable")
}

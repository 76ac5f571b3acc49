package ui

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewDevServerProxy forwards every request to a Vite development server so hot module
// replacement keeps working. It is used when the binary carries no embedded assets.
func NewDevServerProxy(target string, logger *slog.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parsing vite url %q: %w", target, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("vite url %q must be absolute", target)
	}
	if logger == nil {
		logger = slog.Default()
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("vite dev server unreachable", "target", target, "path", r.URL.Path, "error", err)
		http.Error(w, "vite dev server unreachable at "+target, http.StatusBadGateway)
	}
	return proxy, nil
}

package devproxy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"
)

// NewHandler returns a reverse proxy that forwards requests to rule.Target after applying
// rule.Rewrite to the path exactly once. An empty or relative target is rejected here,
// at the point the proxy is built.
func NewHandler(rule DevProxy, logger *slog.Logger) (http.Handler, error) {
	if rule.Target == "" {
		return nil, fmt.Errorf("proxy %q: target is empty", rule.PathPrefix)
	}
	target, err := url.Parse(rule.Target)
	if err != nil {
		return nil, fmt.Errorf("proxy %q: parsing target %q: %w", rule.PathPrefix, rule.Target, err)
	}
	if !target.IsAbs() || target.Host == "" {
		return nil, fmt.Errorf("proxy %q: target %q is not an absolute URL", rule.PathPrefix, rule.Target)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			if rule.Rewrite != nil {
				pr.Out.URL.Path = rule.Rewrite(pr.Out.URL.Path)
				// Keep the client's escaping so %2F stays inside one segment.
				if pr.Out.URL.RawPath != "" {
					pr.Out.URL.RawPath = rule.Rewrite(pr.Out.URL.RawPath)
				}
			}
			// SetURL clears Out.Host, so the Host header becomes the target host.
			pr.SetURL(target)
			pr.SetXForwarded()
			if !rule.ChangeOrigin {
				pr.Out.Host = pr.In.Host
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("dev proxy upstream error",
				slog.String("prefix", rule.PathPrefix),
				slog.String("target", rule.Target),
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "upstream unavailable: " + err.Error()})
		},
	}
	return proxy, nil
}

type route struct {
	prefix  string
	handler http.Handler
}

// Middleware builds one proxy per table entry. Requests whose path starts with a table
// prefix are forwarded (longest prefix wins); all others reach next. An empty table
// yields a pass-through middleware.
func Middleware(table Table, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	routes := make([]route, 0, len(table))
	for prefix, rule := range table {
		h, err := NewHandler(rule, logger)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route{prefix: prefix, handler: h})
		logger.Info("dev proxy enabled",
			slog.String("prefix", prefix),
			slog.String("target", rule.Target),
			slog.Bool("change_origin", rule.ChangeOrigin),
		)
	}
	sort.Slice(routes, func(i, j int) bool { return len(routes[i].prefix) > len(routes[j].prefix) })

	return func(next http.Handler) http.Handler {
		if len(routes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, rt := range routes {
				if strings.HasPrefix(r.URL.Path, rt.prefix) {
					rt.handler.ServeHTTP(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

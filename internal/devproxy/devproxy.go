// Package devproxy builds the development proxy rule table for the web server.
//
// Configure is pure: it receives the run mode and the already-resolved options and
// returns either a DevProxy rule or NoProxy. Environment lookup happens in the config
// layer, never here.
package devproxy

import "strings"

// Mode is the resolved run mode of the web server.
type Mode string

const (
	// ModeDevelopment enables the /api proxy rule.
	ModeDevelopment Mode = "development"
	// ModeProduction serves the bundled SPA only.
	ModeProduction Mode = "production"
)

const (
	// PathPrefix is the request path prefix handled by the proxy rule.
	PathPrefix = "/api"
	// RewritePrefix replaces PathPrefix before a request is forwarded.
	RewritePrefix = "/api/oxo"
)

// Options carries the inputs the configurator recognizes.
type Options struct {
	// APIBaseURL is the proxy target origin (VITE_API_BASE_URL).
	APIBaseURL string
}

// Result is either DevProxy or NoProxy.
type Result interface {
	isResult()
}

// DevProxy is the single proxy rule active in development mode.
type DevProxy struct {
	PathPrefix   string
	Target       string
	ChangeOrigin bool
	Rewrite      func(path string) string
}

// NoProxy means no request is proxied.
type NoProxy struct{}

func (DevProxy) isResult() {}
func (NoProxy) isResult()  {}

// Configure returns the proxy configuration for mode. Only ModeDevelopment yields a rule;
// the target is taken from opts as is.
func Configure(mode Mode, opts Options) Result {
	if mode != ModeDevelopment {
		return NoProxy{}
	}
	return DevProxy{
		PathPrefix:   PathPrefix,
		Target:       opts.APIBaseURL,
		ChangeOrigin: true,
		Rewrite:      Rewrite,
	}
}

// Rewrite replaces a leading /api with /api/oxo. Any other path is returned unchanged.
// It is not idempotent: applying it twice to /api/x yields /api/oxo/oxo/x.
func Rewrite(path string) string {
	if rest, ok := strings.CutPrefix(path, PathPrefix); ok {
		return RewritePrefix + rest
	}
	return path
}

// Table is the proxy map handed to the proxy middleware, keyed by path prefix.
type Table map[string]DevProxy

// TableFor converts a Result into the proxy map. NoProxy yields an empty, non-nil map.
func TableFor(r Result) Table {
	t := Table{}
	if p, ok := r.(DevProxy); ok {
		t[p.PathPrefix] = p
	}
	return t
}

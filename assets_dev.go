//go:build dev

package main

import "io/fs"

// getFrontendFS returns nil in dev mode, signalling the server to proxy to the
// Vite dev server at OXO_VITE_URL.
func getFrontendFS() (fs.FS, error) {
	return nil, nil
}

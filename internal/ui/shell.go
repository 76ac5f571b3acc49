// Package ui serves the single-page application: the bootstrap shell that mounts the
// root component on #app, the static assets it references, and a pass-through to the
// Vite dev server for builds without embedded assets.
package ui

import (
	"fmt"
	"html/template"
	"io"
)

const (
	// MountID is the id of the element the root component is mounted on.
	MountID = "app"
	// DefaultTheme is the stylesheet loaded when no other theme is chosen.
	DefaultTheme = "classic"
	// EntryScript is the root UI entry module.
	EntryScript = "assets/main.js"
)

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="{{.ThemeHref}}">
  </head>
  <body>
    <div id="{{.MountID}}"></div>
    <script type="module" src="{{.EntryHref}}"></script>
  </body>
</html>
`))

// Shell describes the bootstrap page.
type Shell struct {
	Title string
	Theme string
}

// DefaultShell returns the shell with the classic theme.
func DefaultShell() Shell {
	return Shell{Title: "OXO", Theme: DefaultTheme}
}

// ThemeHref is the absolute path of the theme stylesheet.
func (s Shell) ThemeHref() string {
	theme := s.Theme
	if theme == "" {
		theme = DefaultTheme
	}
	return "/assets/theme/" + theme + ".css"
}

// EntryHref is the absolute path of the entry script.
func (s Shell) EntryHref() string { return "/" + EntryScript }

// MountID returns the root mount element id. It is fixed.
func (Shell) MountID() string { return MountID }

// Render writes the shell document to w.
func (s Shell) Render(w io.Writer) error {
	if err := shellTemplate.Execute(w, s); err != nil {
		return fmt.Errorf("rendering shell: %w", err)
	}
	return nil
}

package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_Render(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, DefaultShell().Render(&sb))
	html := sb.String()

	assert.Equal(t, 1, strings.Count(html, `id="app"`), "exactly one mount element")
	assert.Contains(t, html, `<div id="app"></div>`)
	assert.Equal(t, 1, strings.Count(html, `rel="stylesheet"`), "exactly one theme stylesheet")
	assert.Contains(t, html, `href="/assets/theme/classic.css"`)
	assert.Equal(t, 1, strings.Count(html, "<script"), "exactly one entry script")
	assert.Contains(t, html, `<script type="module" src="/assets/main.js"></script>`)
	assert.Contains(t, html, "<title>OXO</title>")
}

func TestShell_ThemeHref(t *testing.T) {
	tests := []struct {
		name  string
		theme string
		want  string
	}{
		{name: "default", theme: "", want: "/assets/theme/classic.css"},
		{name: "classic", theme: "classic", want: "/assets/theme/classic.css"},
		{name: "other", theme: "dark", want: "/assets/theme/dark.css"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shell{Theme: tt.theme}.ThemeHref())
		})
	}
}

func TestShell_EscapesTitle(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Shell{Title: "<b>x</b>"}.Render(&sb))
	assert.Contains(t, sb.String(), "<title>&lt;b&gt;x&lt;/b&gt;</title>")
}

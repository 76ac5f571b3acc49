package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const logo = `
   ___  __  _____
  / _ \ \ \/ / _ \
 | (_) | >  < (_) |
  \___/ /_/\_\___/
`

type bannerLine struct {
	label string
	value string
}

// printBanner writes the startup banner. It is the only output visible in the
// terminal during normal operation; all structured logs go to the log file instead.
func printBanner(w io.Writer, title string, lines []bannerLine) {
	r := newRenderer(w)
	logoStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	titleStyle := r.NewStyle().Bold(true)
	labelStyle := r.NewStyle().Foreground(lipgloss.Color("241")).Width(8)
	valueStyle := r.NewStyle().Foreground(lipgloss.Color("39"))

	fmt.Fprintln(w, logoStyle.Render(logo))
	fmt.Fprintln(w, titleStyle.Render(title))
	for _, l := range lines {
		fmt.Fprintln(w, labelStyle.Render(l.label)+valueStyle.Render(l.value))
	}
	fmt.Fprintln(w)
}

// newRenderer honors NO_COLOR and otherwise detects the writer's color profile.
func newRenderer(w io.Writer) *lipgloss.Renderer {
	if termenv.EnvNoColor() {
		return lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
	}
	return lipgloss.NewRenderer(w)
}

// Package ui holds the small set of styled terminal markers the CLI
// prints. Styling is disabled automatically when stdout is not a
// terminal.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	isTTY = term.IsTerminal(int(os.Stdout.Fd()))
)

// RenderPass styles a success marker.
func RenderPass(s string) string {
	if !isTTY {
		return s
	}
	return passStyle.Render(s)
}

// RenderFail styles a failure marker.
func RenderFail(s string) string {
	if !isTTY {
		return s
	}
	return failStyle.Render(s)
}

// RenderWarn styles a warning marker.
func RenderWarn(s string) string {
	if !isTTY {
		return s
	}
	return warnStyle.Render(s)
}

// RenderAccent styles an informational marker.
func RenderAccent(s string) string {
	if !isTTY {
		return s
	}
	return accentStyle.Render(s)
}

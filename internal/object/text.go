package object

import (
	"github.com/charmbracelet/lipgloss"
)

// Text is a styled terminal overlay drawn on top of the rendered canvas.
type Text struct {
	Value string
	Style lipgloss.Style
}

// HintStyle returns the style of the terminal key hint for a renderer bound
// to the session's output.
func HintStyle(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().
		Foreground(lipgloss.Color("#6B6B80")).
		Background(lipgloss.Color("#000008"))
}

// Render returns the styled text, or "" when there is nothing to show.
func (t Text) Render() string {
	if t.Value == "" {
		return ""
	}
	return t.Style.Render(t.Value)
}

// Width returns the rendered width in cells.
func (t Text) Width() int {
	return lipgloss.Width(t.Render())
}

package report

import (
	"github.com/charmbracelet/glamour"
)

// DefaultWrapWidth is the word wrap used when rendering for a terminal.
const DefaultWrapWidth = 100

// RenderMarkdown renders markdown for terminal display.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWrapWidth
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const markdownWrap = 80

// RenderMarkdown renders task notes for the terminal. It falls back to the
// raw text when rendering fails.
func RenderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return ensureNewline(md)
	}
	out, err := r.Render(md)
	if err != nil {
		return ensureNewline(md)
	}
	return out
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

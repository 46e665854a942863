package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const wrapWidth = 80

// markdown controls whether descriptions are rendered through glamour.
var markdown = true

// renderMarkdown renders a description for the terminal, falling back to
// the raw text when rendering is off or fails.
func renderMarkdown(s string) string {
	if !markdown || strings.TrimSpace(s) == "" {
		return s
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return s
	}
	out, err := r.Render(s)
	if err != nil {
		return s
	}
	return strings.Trim(out, "\n")
}

package topics

import (
	"github.com/charmbracelet/glamour"
)

// Renderer formats topic content for the terminal
type Renderer interface {
	Render(content, ext string) string
}

// PlainRenderer returns content unchanged
type PlainRenderer struct{}

func (PlainRenderer) Render(content, ext string) string {
	return content
}

// GlamourRenderer renders markdown topics with glamour. Other formats and
// rendering errors fall back to the raw content.
type GlamourRenderer struct {
	// Width wraps output; zero keeps the glamour default
	Width int
}

func (r GlamourRenderer) Render(content, ext string) string {
	if ext != ".md" {
		return content
	}
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}
	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns assistant messages into terminal output.
type Renderer func(string) (string, error)

// NewRenderer returns a glamour renderer wrapped at width columns.
// The style follows the terminal background.
func NewRenderer(width int) (Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(out, "\n") + "\n", nil
	}, nil
}

// Plain renders messages unchanged.
func Plain(message string) (string, error) {
	return message + "\n", nil
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/matheuskafuri/termfeed/internal/feed"
)

// postRenderer turns post markdown into styled terminal text, rebuilding
// the glamour renderer only when the wrap width changes.
type postRenderer struct {
	style string
	width int
	r     *glamour.TermRenderer
}

func (p *postRenderer) render(md string, width int) (string, error) {
	if p.r == nil || p.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(p.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", fmt.Errorf("creating renderer: %w", err)
		}
		p.r, p.width = r, width
	}
	return p.r.Render(md)
}

func (s styles) renderPostHeader(f *feed.Feed, p *feed.Post, width int) string {
	title := s.postTitle.Width(width).Render(postLabel(*p))

	meta := []string{feedLabel(*f)}
	if p.Date != "" {
		meta = append(meta, p.Date)
	}
	if p.Link != "" {
		meta = append(meta, p.Link)
	}
	return title + "\n" + s.postMeta.Width(width).Render(strings.Join(meta, " · "))
}

// postBody renders the post for the viewport, falling back to the raw text
// when glamour fails.
func (a *App) postBody(p *feed.Post, width int) string {
	out, err := a.renderer.render(p.Content, width)
	if err != nil {
		return p.Content
	}
	return strings.TrimRight(out, "\n")
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/termfeed/internal/config"
)

type styles struct {
	header      lipgloss.Style
	headerCount lipgloss.Style
	pane        lipgloss.Style

	item         lipgloss.Style
	itemSelected lipgloss.Style
	itemRead     lipgloss.Style
	itemMeta     lipgloss.Style
	unreadMark   lipgloss.Style

	postTitle lipgloss.Style
	postMeta  lipgloss.Style

	statusBar    lipgloss.Style
	statusErr    lipgloss.Style
	spinner      lipgloss.Style
	searchPrompt lipgloss.Style
	empty        lipgloss.Style
}

func newStyles(c config.Colors) styles {
	text := lipgloss.Color(c.Text)
	invert := lipgloss.Color(c.InvertText)
	subtext := lipgloss.Color(c.Subtext)
	accent := lipgloss.Color(c.Accent)
	borders := lipgloss.Color(c.Borders)

	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			PaddingLeft(1),
		headerCount: lipgloss.NewStyle().
			Foreground(subtext).
			PaddingRight(1),
		pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borders),

		item: lipgloss.NewStyle().
			Foreground(text),
		itemSelected: lipgloss.NewStyle().
			Foreground(invert).
			Background(accent).
			Bold(true),
		itemRead: lipgloss.NewStyle().
			Foreground(subtext),
		itemMeta: lipgloss.NewStyle().
			Foreground(subtext),
		unreadMark: lipgloss.NewStyle().
			Foreground(accent),

		postTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			PaddingLeft(2),
		postMeta: lipgloss.NewStyle().
			Foreground(subtext).
			Italic(true).
			PaddingLeft(2),

		statusBar: lipgloss.NewStyle().
			Background(borders).
			Foreground(text).
			PaddingLeft(1).
			PaddingRight(1),
		statusErr: lipgloss.NewStyle().
			Background(borders).
			Foreground(accent).
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1),
		spinner: lipgloss.NewStyle().
			Foreground(accent),
		searchPrompt: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		empty: lipgloss.NewStyle().
			Foreground(subtext),
	}
}

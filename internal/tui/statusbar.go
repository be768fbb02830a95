package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (s styles) renderStatusBar(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}
	return s.statusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s styles) renderError(err error, width int) string {
	return s.statusErr.Width(width).Render(truncateStr(err.Error(), width-2))
}

func unreadSummary(unread, feeds int) string {
	return fmt.Sprintf("%d unread · %d feeds", unread, feeds)
}

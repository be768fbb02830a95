package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/matheuskafuri/termfeed/internal/feed"
)

func feedLabel(f feed.Feed) string {
	if f.Title != "" {
		return f.Title
	}
	return f.URL
}

func postLabel(p feed.Post) string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// window returns the slice [start, end) of n rows that keeps cursor visible
// in a pane showing height rows.
func window(cursor, n, height int) (int, int) {
	if height < 1 {
		height = 1
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := start + height
	if end > n {
		end = n
		start = max(0, end-height)
	}
	return start, end
}

// row lays out left and right on one line of width cells, truncating left.
// Both sides may already be styled.
func row(left, right string, width int) string {
	room := max(0, width-lipgloss.Width(right)-1)
	left = ansi.Truncate(left, room, "...")
	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (s styles) renderFeedList(feeds feed.Feeds, cursor, height, width int) string {
	if len(feeds) == 0 {
		return lipglossCenter(s.empty.Render("Fetching feeds..."), width, height)
	}

	start, end := window(cursor, len(feeds), height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		f := feeds[i]
		unread := f.TotalUnread()
		count := fmt.Sprintf("%d/%d ", unread, len(f.Posts))

		var line string
		switch {
		case i == cursor:
			line = s.itemSelected.Width(width).Render(row("  "+feedLabel(f), count, width))
		case unread == 0:
			line = row(s.itemRead.Render("  "+feedLabel(f)), s.itemMeta.Render(count), width)
		default:
			line = row(s.item.Render("  "+feedLabel(f)), s.itemMeta.Render(count), width)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (s styles) renderPostList(posts []feed.Post, cursor, height, width int) string {
	if len(posts) == 0 {
		return lipglossCenter(s.empty.Render("No posts"), width, height)
	}

	start, end := window(cursor, len(posts), height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		p := posts[i]
		mark := "  "
		if !p.Read {
			mark = "● "
		}
		date := p.Date + " "

		var line string
		switch {
		case i == cursor:
			line = s.itemSelected.Width(width).Render(row(mark+postLabel(p), date, width))
		case p.Read:
			line = row(mark+s.itemRead.Render(postLabel(p)), s.itemMeta.Render(date), width)
		default:
			line = row(s.unreadMark.Render(mark)+s.item.Render(postLabel(p)), s.itemMeta.Render(date), width)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func lipglossCenter(s string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s)
}

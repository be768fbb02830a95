package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/termfeed/internal/browser"
	"github.com/matheuskafuri/termfeed/internal/config"
	"github.com/matheuskafuri/termfeed/internal/feed"
	"github.com/matheuskafuri/termfeed/internal/reader"
)

// tickInterval bounds how long a fetched feed waits before it is shown.
const tickInterval = 250 * time.Millisecond

type mode int

const (
	modeNormal mode = iota
	modeSearch
)

type App struct {
	cfg *config.Config
	rd  *reader.Reader

	start   func(urls []string) <-chan feed.Feed
	refresh func(urls []string) <-chan feed.Feed
	ch      <-chan feed.Feed

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	search   textinput.Model
	viewport viewport.Model
	renderer *postRenderer
	st       styles

	mode     mode
	width    int
	height   int
	fetching bool
	err      error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg    *config.Config
	Reader *reader.Reader
	// Start launches the background fetch of urls for the session.
	Start func(urls []string) <-chan feed.Feed
	// Refresh launches a fetch that skips the content cache. Defaults to Start.
	Refresh func(urls []string) <-chan feed.Feed
}

func NewApp(opts RunOpts) *App {
	st := newStyles(opts.Cfg.Colors)

	ti := textinput.New()
	ti.Placeholder = "Search posts..."
	ti.Prompt = st.searchPrompt.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = st.spinner

	theme := opts.Cfg.Reader.Theme
	if theme == "" {
		theme = "light"
		if lipgloss.HasDarkBackground() {
			theme = "dark"
		}
	}

	refresh := opts.Refresh
	if refresh == nil {
		refresh = opts.Start
	}

	return &App{
		cfg:      opts.Cfg,
		rd:       opts.Reader,
		start:    opts.Start,
		refresh:  refresh,
		keys:     newKeyMap(),
		help:     help.New(),
		spinner:  sp,
		search:   ti,
		viewport: viewport.New(0, 0),
		renderer: &postRenderer{style: theme},
		st:       st,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) Init() tea.Cmd {
	if a.cfg.Home == config.HomeMixed {
		a.rd.OpenAll()
	}
	a.ch = a.start(a.cfg.FeedURLs())
	a.fetching = true
	return tea.Batch(tick(), a.spinner.Tick)
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return browserErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.rd.View() == reader.ViewPost {
			a.loadPost(false, false)
		}
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case tickMsg:
		a.drain()
		return a, tick()

	case browserErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.fetching {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) drain() {
	n, closed := a.rd.Drain(a.ch)
	if closed {
		a.ch = nil
		a.fetching = false
		a.rd.SortByURLs(a.cfg.FeedURLs())
	}
	// A merge never counts as reading: the viewport is refreshed without
	// checking the read threshold.
	if n > 0 && a.rd.View() == reader.ViewPost {
		a.loadPost(false, false)
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.mode == modeSearch {
		return a.handleSearchKey(msg)
	}

	inPost := a.rd.View() == reader.ViewPost

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		if inPost {
			a.loadPost(false, false)
		}
		return a, nil
	case key.Matches(msg, a.keys.Refresh):
		urls := a.cfg.FeedURLs()
		if f, ok := a.rd.SelectedFeed(); ok {
			urls = []string{f.URL}
		}
		return a, a.startRefresh(urls)
	case key.Matches(msg, a.keys.RefreshAll):
		return a, a.startRefresh(a.cfg.FeedURLs())
	case key.Matches(msg, a.keys.Mixed):
		a.rd.OpenAll()
		return a, nil
	case key.Matches(msg, a.keys.Back):
		if a.rd.Back() {
			a.search.SetValue("")
		}
		return a, nil
	case key.Matches(msg, a.keys.Open):
		if a.rd.Open() && a.rd.View() == reader.ViewPost {
			a.loadPost(true, true)
		}
		return a, nil
	case key.Matches(msg, a.keys.OpenLink):
		if p, ok := a.rd.SelectedPost(); ok && a.rd.View() != reader.ViewFeeds && p.Link != "" {
			return a, openBrowserCmd(p.Link)
		}
		return a, nil
	case key.Matches(msg, a.keys.ToggleRead):
		a.rd.ToggleRead()
		return a, nil
	case key.Matches(msg, a.keys.ReadAll):
		a.rd.MarkAllRead()
		return a, nil
	case key.Matches(msg, a.keys.Search):
		if a.rd.View() != reader.ViewPosts {
			return a, nil
		}
		a.mode = modeSearch
		a.search.Focus()
		return a, textinput.Blink
	}

	if inPost {
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		a.checkRead()
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Down):
		a.rd.Next(1)
	case key.Matches(msg, a.keys.Up):
		a.rd.Prev(1)
	case key.Matches(msg, a.keys.JumpDown):
		a.rd.Next(jump)
	case key.Matches(msg, a.keys.JumpUp):
		a.rd.Prev(jump)
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.search.SetValue("")
		a.search.Blur()
		a.rd.SetFilter("")
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.search.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if a.search.Value() != a.rd.Filter() {
		a.rd.SetFilter(a.search.Value())
	}
	return a, cmd
}

// startRefresh fetches urls again, bypassing the cache. It does nothing
// while a fetch is still running.
func (a *App) startRefresh(urls []string) tea.Cmd {
	if a.fetching || len(urls) == 0 {
		return nil
	}
	a.ch = a.refresh(urls)
	a.fetching = true
	return a.spinner.Tick
}

// checkRead marks the open post read once it has been scrolled past the
// configured threshold.
func (a *App) checkRead() {
	if a.rd.View() != reader.ViewPost {
		return
	}
	if a.viewport.ScrollPercent() >= a.cfg.Reader.ReadThreshold {
		a.rd.MarkRead()
	}
}

func (a *App) innerSize() (int, int) {
	w := max(1, a.width-2)
	h := max(1, a.height-2-lipgloss.Height(a.header())-lipgloss.Height(a.footer()))
	return w, h
}

// loadPost sizes the viewport for the open post and fills it. mark applies
// the read threshold; only user actions set it.
func (a *App) loadPost(top, mark bool) {
	f, fok := a.rd.SelectedFeed()
	p, pok := a.rd.SelectedPost()
	if !fok || !pok || a.width == 0 {
		return
	}
	w, h := a.innerSize()
	head := a.st.renderPostHeader(f, p, w)

	wrap := min(a.cfg.ReaderWidth(w), w)
	a.viewport.Width = w
	a.viewport.Height = max(1, h-lipgloss.Height(head)-1)
	a.viewport.SetContent(lipgloss.PlaceHorizontal(w, lipgloss.Center, a.postBody(p, wrap)))
	if top {
		a.viewport.GotoTop()
	}
	if mark {
		a.checkRead()
	}
}

func (a *App) header() string {
	left := a.st.header.Render("termfeed")
	switch {
	case a.rd.View() == reader.ViewFeeds:
	case a.rd.Mixed() && a.rd.View() == reader.ViewPosts:
		left += a.st.headerCount.Render(" › all posts")
	default:
		if f, ok := a.rd.SelectedFeed(); ok {
			left += a.st.headerCount.Render(" › " + truncateStr(feedLabel(*f), a.width/2))
		}
	}
	if a.fetching {
		left += " " + a.spinner.View()
	}
	feeds := a.rd.Feeds()
	right := a.st.headerCount.Render(unreadSummary(feeds.TotalUnread(), len(feeds)))
	return row(left, right, a.width)
}

func (a *App) footer() string {
	switch {
	case a.mode == modeSearch:
		return a.search.View()
	case a.err != nil:
		return a.st.renderError(a.err, a.width)
	case a.rd.LastErr() != nil:
		return a.st.renderError(fmt.Errorf("saving state: %w", a.rd.LastErr()), a.width)
	}
	if a.help.ShowAll {
		return a.help.View(a.keys)
	}
	left := a.rd.View().String()
	if q := a.rd.Filter(); q != "" && a.rd.View() == reader.ViewPosts {
		left += " · /" + q
	}
	return a.st.renderStatusBar(left, a.help.View(a.keys), a.width)
}

func (a *App) View() string {
	if a.width == 0 {
		return a.st.header.Render("termfeed")
	}

	header := a.header()
	footer := a.footer()
	w, h := a.innerSize()

	var body string
	switch a.rd.View() {
	case reader.ViewFeeds:
		body = a.st.renderFeedList(a.rd.Feeds(), a.rd.FeedCursor(), h, w)
	case reader.ViewPosts:
		body = a.st.renderPostList(a.rd.VisiblePosts(), a.rd.PostCursor(), h, w)
	case reader.ViewPost:
		f, _ := a.rd.SelectedFeed()
		p, ok := a.rd.SelectedPost()
		if !ok {
			break
		}
		body = a.st.renderPostHeader(f, p, w) + "\n\n" + a.viewport.View()
	}

	pane := a.st.pane.Width(w).Height(h).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, pane, footer)
}

// Run starts the TUI application and blocks until the user quits.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

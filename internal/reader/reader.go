// Package reader holds the live feed collection owned by the interactive
// loop: it folds feeds arriving from the background fetch into the
// collection, persists after every change and tracks which feed, post or
// article the user is looking at.
package reader

import (
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/matheuskafuri/termfeed/internal/feed"
	"github.com/matheuskafuri/termfeed/internal/state"
)

// View is the screen the user is on.
type View int

const (
	ViewFeeds View = iota
	ViewPosts
	ViewPost
)

func (v View) String() string {
	switch v {
	case ViewFeeds:
		return "feeds"
	case ViewPosts:
		return "posts"
	case ViewPost:
		return "post"
	default:
		return "unknown"
	}
}

// ref locates a post as feed and post indexes into the collection.
type ref struct {
	feed, post int
}

// selection names what the cursors point at, so it survives merges that
// reorder feeds or posts.
type selection struct {
	feedURL string
	postURL string
	postID  string
}

type Reader struct {
	store      state.Store
	feeds      feed.Feeds
	dateFormat string

	view   View
	mixed  bool
	feed   int
	post   int
	filter string

	lastErr error
}

type Option func(*Reader)

// WithDateFormat sets the layout post dates are parsed with when the mixed
// view orders posts newest first.
func WithDateFormat(layout string) Option {
	return func(r *Reader) {
		if layout != "" {
			r.dateFormat = layout
		}
	}
}

func New(store state.Store, initial feed.Feeds, opts ...Option) *Reader {
	if initial == nil {
		initial = feed.Feeds{}
	}
	r := &Reader{store: store, feeds: initial, dateFormat: feed.DefaultDateFormat}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reader) Feeds() feed.Feeds { return r.feeds }
func (r *Reader) View() View        { return r.view }
func (r *Reader) FeedCursor() int   { return r.feed }
func (r *Reader) PostCursor() int   { return r.post }
func (r *Reader) Filter() string    { return r.filter }

// Mixed reports whether the post list shows every feed's posts.
func (r *Reader) Mixed() bool { return r.mixed }

// LastErr is the error from the most recent save, or nil once a save
// succeeds again.
func (r *Reader) LastErr() error { return r.lastErr }

// Drain applies every feed already waiting on ch and returns without
// blocking. closed reports that the fetch task has finished.
func (r *Reader) Drain(ch <-chan feed.Feed) (n int, closed bool) {
	for {
		select {
		case f, ok := <-ch:
			if !ok {
				return n, true
			}
			r.Apply(f)
			n++
		default:
			return n, false
		}
	}
}

// Apply merges fetched into the feed with the same URL, or appends it, then
// saves the collection. The cursors keep pointing at the same feed and post.
func (r *Reader) Apply(fetched feed.Feed) {
	sel := r.selection()
	if i := r.feeds.IndexOf(fetched.URL); i >= 0 {
		feed.Merge(&r.feeds[i], fetched)
	} else {
		r.feeds = append(r.feeds, fetched)
	}

	if len(r.feeds) == 1 {
		r.feed = 0
	}
	r.restore(sel)
	r.persist()
}

func (r *Reader) persist() {
	if err := r.store.Save(r.feeds); err != nil {
		log.WithError(err).Warn("could not save state")
		r.lastErr = err
		return
	}
	r.lastErr = nil
}

// Save writes the collection, for use on exit.
func (r *Reader) Save() error {
	r.persist()
	return r.lastErr
}

// SortByURLs orders feeds as urls lists them; feeds not in urls keep their
// relative order at the end. The selection is kept.
func (r *Reader) SortByURLs(urls []string) {
	rank := make(map[string]int, len(urls))
	for i, u := range urls {
		rank[u] = i
	}
	pos := func(f feed.Feed) int {
		if i, ok := rank[f.URL]; ok {
			return i
		}
		return len(urls)
	}

	sel := r.selection()
	sort.SliceStable(r.feeds, func(i, j int) bool {
		return pos(r.feeds[i]) < pos(r.feeds[j])
	})
	r.restore(sel)
}

func (r *Reader) selection() selection {
	var sel selection
	if r.feed >= 0 && r.feed < len(r.feeds) {
		sel.feedURL = r.feeds[r.feed].URL
	}
	if x, ok := r.selected(); ok && r.view != ViewFeeds {
		f := r.feeds[x.feed]
		sel.postURL = f.URL
		sel.postID = f.Posts[x.post].ID
	}
	return sel
}

// restore moves the cursors back onto sel. An open post that no longer
// exists returns the user to the post list.
func (r *Reader) restore(sel selection) {
	if sel.feedURL != "" {
		if i := r.feeds.IndexOf(sel.feedURL); i >= 0 {
			r.feed = i
		}
	}
	if sel.postID != "" {
		found := false
		for j, x := range r.visible() {
			f := r.feeds[x.feed]
			if f.URL == sel.postURL && f.Posts[x.post].ID == sel.postID {
				r.post = j
				found = true
				break
			}
		}
		if !found && r.view == ViewPost {
			r.view = ViewPosts
		}
	}
	r.clamp()
}

// SelectedFeed is the feed under the feed cursor, or in the mixed post list
// the feed of the selected post.
func (r *Reader) SelectedFeed() (*feed.Feed, bool) {
	if r.mixed && r.view != ViewFeeds {
		x, ok := r.selected()
		if !ok {
			return nil, false
		}
		return &r.feeds[x.feed], true
	}
	if r.feed < 0 || r.feed >= len(r.feeds) {
		return nil, false
	}
	return &r.feeds[r.feed], true
}

// VisiblePosts are the posts of the current list that match the filter.
func (r *Reader) VisiblePosts() []feed.Post {
	refs := r.visible()
	out := make([]feed.Post, len(refs))
	for i, x := range refs {
		out[i] = r.feeds[x.feed].Posts[x.post]
	}
	return out
}

func (r *Reader) visible() []ref {
	q := strings.ToLower(r.filter)
	match := func(p feed.Post) bool {
		return q == "" || strings.Contains(strings.ToLower(p.Title), q)
	}

	var refs []ref
	if r.mixed {
		for i, f := range r.feeds {
			for j, p := range f.Posts {
				if match(p) {
					refs = append(refs, ref{i, j})
				}
			}
		}
		sort.SliceStable(refs, func(a, b int) bool {
			return r.newer(refs[a], refs[b])
		})
		return refs
	}

	if r.feed < 0 || r.feed >= len(r.feeds) {
		return nil
	}
	for j, p := range r.feeds[r.feed].Posts {
		if match(p) {
			refs = append(refs, ref{r.feed, j})
		}
	}
	return refs
}

// newer orders posts newest first; undated posts go last.
func (r *Reader) newer(a, b ref) bool {
	ta, errA := time.Parse(r.dateFormat, r.feeds[a.feed].Posts[a.post].Date)
	tb, errB := time.Parse(r.dateFormat, r.feeds[b.feed].Posts[b.post].Date)
	switch {
	case errA == nil && errB == nil:
		return ta.After(tb)
	default:
		return errA == nil && errB != nil
	}
}

func (r *Reader) selected() (ref, bool) {
	refs := r.visible()
	if r.post < 0 || r.post >= len(refs) {
		return ref{}, false
	}
	return refs[r.post], true
}

func (r *Reader) SelectedPost() (*feed.Post, bool) {
	x, ok := r.selected()
	if !ok {
		return nil, false
	}
	return &r.feeds[x.feed].Posts[x.post], true
}

// SetFilter narrows the post list to posts whose title contains q.
func (r *Reader) SetFilter(q string) {
	r.filter = strings.TrimSpace(q)
	r.post = 0
	r.clamp()
}

// Next moves the cursor of the current list down by n.
func (r *Reader) Next(n int) {
	switch r.view {
	case ViewFeeds:
		r.feed = bound(r.feed+n, len(r.feeds))
	case ViewPosts:
		r.post = bound(r.post+n, len(r.visible()))
	}
}

func (r *Reader) Prev(n int) { r.Next(-n) }

// Open descends one level: feed list to posts, posts to the article.
func (r *Reader) Open() bool {
	switch r.view {
	case ViewFeeds:
		if r.feed >= 0 && r.feed < len(r.feeds) {
			r.view = ViewPosts
			r.mixed = false
			r.post = 0
			r.filter = ""
			return true
		}
	case ViewPosts:
		if _, ok := r.SelectedPost(); ok {
			r.view = ViewPost
			return true
		}
	}
	return false
}

// OpenAll shows every feed's posts in one list, newest first.
func (r *Reader) OpenAll() bool {
	if r.view != ViewFeeds {
		return false
	}
	r.view = ViewPosts
	r.mixed = true
	r.post = 0
	r.filter = ""
	return true
}

// Back ascends one level.
func (r *Reader) Back() bool {
	switch r.view {
	case ViewPost:
		r.view = ViewPosts
		return true
	case ViewPosts:
		r.view = ViewFeeds
		r.mixed = false
		r.filter = ""
		return true
	}
	return false
}

func (r *Reader) ToggleRead() {
	if p, ok := r.SelectedPost(); ok && r.view != ViewFeeds {
		p.Read = !p.Read
		r.persist()
	}
}

// MarkRead marks the selected post read, saving only if it changed.
func (r *Reader) MarkRead() {
	if p, ok := r.SelectedPost(); ok && r.view != ViewFeeds && !p.Read {
		p.Read = true
		r.persist()
	}
}

// MarkAllRead marks every post of the selected feed read. In the mixed
// list it marks every listed post.
func (r *Reader) MarkAllRead() {
	if r.mixed && r.view != ViewFeeds {
		for _, x := range r.visible() {
			r.feeds[x.feed].Posts[x.post].Read = true
		}
		r.persist()
		return
	}
	f, ok := r.SelectedFeed()
	if !ok {
		return
	}
	for i := range f.Posts {
		f.Posts[i].Read = true
	}
	r.persist()
}

// clamp keeps cursors inside the collection after it changes underneath
// them and leaves views that no longer have anything to show.
func (r *Reader) clamp() {
	r.feed = bound(r.feed, len(r.feeds))
	if len(r.feeds) == 0 {
		if !r.mixed {
			r.view = ViewFeeds
		}
		r.post = 0
		return
	}
	n := len(r.visible())
	r.post = bound(r.post, n)
	if n == 0 && r.view == ViewPost {
		r.view = ViewPosts
	}
}

func bound(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

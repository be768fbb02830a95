package feed

// Post is one entry of a feed. Only ID and Read survive a restart; the
// display fields are rebuilt from the next fetch.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"-"`
	Content string `json:"-"`
	Link    string `json:"-"`
	Date    string `json:"-"`
	Read    bool   `json:"read"`
}

// Feed is a subscribed source. URL is the merge key across fetch cycles.
type Feed struct {
	ID    string `json:"-"`
	URL   string `json:"URL"`
	Title string `json:"-"`
	Posts []Post `json:"posts"`
}

type Feeds []Feed

func (f Feed) TotalUnread() int {
	n := 0
	for _, p := range f.Posts {
		if !p.Read {
			n++
		}
	}
	return n
}

func (fs Feeds) TotalUnread() int {
	n := 0
	for _, f := range fs {
		n += f.TotalUnread()
	}
	return n
}

// IndexOf returns the position of the feed subscribed at url, or -1.
func (fs Feeds) IndexOf(url string) int {
	for i := range fs {
		if fs[i].URL == url {
			return i
		}
	}
	return -1
}

package feed

import "github.com/samber/lo"

// Merge folds a freshly fetched feed into existing, in place. Every field is
// taken from fetched except each post's read flag, which is carried over by
// post id. Posts missing from fetched are dropped.
func Merge(existing *Feed, fetched Feed) {
	read := lo.SliceToMap(existing.Posts, func(p Post) (string, bool) {
		return p.ID, p.Read
	})

	existing.ID = fetched.ID
	existing.Title = fetched.Title
	existing.URL = fetched.URL

	posts := make([]Post, len(fetched.Posts))
	for i, p := range fetched.Posts {
		p.Read = read[p.ID]
		posts[i] = p
	}
	existing.Posts = posts
}

package feed

import "testing"

func samplePosts(ids ...string) []Post {
	posts := make([]Post, len(ids))
	for i, id := range ids {
		posts[i] = Post{ID: id, Title: "Post " + id, Content: "body " + id}
	}
	return posts
}

func TestMergePreservesReadFlags(t *testing.T) {
	existing := Feed{URL: "https://a.com/feed", Title: "Old", Posts: samplePosts("1", "2", "3")}
	existing.Posts[0].Read = true
	existing.Posts[2].Read = true

	fetched := Feed{URL: "https://a.com/feed", Title: "New", Posts: samplePosts("1", "2", "3")}
	Merge(&existing, fetched)

	want := map[string]bool{"1": true, "2": false, "3": true}
	for _, p := range existing.Posts {
		if p.Read != want[p.ID] {
			t.Errorf("post %s: read = %v, want %v", p.ID, p.Read, want[p.ID])
		}
	}
	if existing.Title != "New" {
		t.Errorf("expected title replaced, got %q", existing.Title)
	}
}

func TestMergeNewPostsUnread(t *testing.T) {
	existing := Feed{URL: "u", Posts: samplePosts("1")}
	existing.Posts[0].Read = true

	fetched := Feed{URL: "u", Posts: samplePosts("0", "1")}
	// A read flag on a never-seen post must not leak through.
	fetched.Posts[0].Read = true
	Merge(&existing, fetched)

	if len(existing.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(existing.Posts))
	}
	if existing.Posts[0].ID != "0" || existing.Posts[0].Read {
		t.Errorf("expected new post 0 first and unread, got %+v", existing.Posts[0])
	}
	if !existing.Posts[1].Read {
		t.Error("expected post 1 to stay read")
	}
}

func TestMergeDropsMissingPosts(t *testing.T) {
	existing := Feed{URL: "u", Posts: samplePosts("1", "2")}
	existing.Posts[1].Read = true

	Merge(&existing, Feed{URL: "u", Posts: samplePosts("3")})

	if len(existing.Posts) != 1 || existing.Posts[0].ID != "3" {
		t.Fatalf("expected only post 3, got %+v", existing.Posts)
	}
	if existing.Posts[0].Read {
		t.Error("expected post 3 unread")
	}
}

func TestMergeOverwritesDisplayFields(t *testing.T) {
	existing := Feed{URL: "u", Posts: []Post{{ID: "1", Title: "old", Content: "old", Read: true}}}
	fetched := Feed{ID: "feed-id", URL: "u", Title: "T", Posts: []Post{{ID: "1", Title: "new", Content: "new", Link: "l", Date: "d"}}}

	Merge(&existing, fetched)

	got := existing.Posts[0]
	if got.Title != "new" || got.Content != "new" || got.Link != "l" || got.Date != "d" || !got.Read {
		t.Errorf("unexpected merged post: %+v", got)
	}
	if existing.ID != "feed-id" {
		t.Errorf("expected feed id replaced, got %q", existing.ID)
	}
}

func TestMergeDeterministic(t *testing.T) {
	build := func() Feed {
		f := Feed{URL: "u", Posts: samplePosts("1", "2")}
		f.Posts[1].Read = true
		return f
	}
	fetched := Feed{URL: "u", Posts: samplePosts("2", "4", "1")}

	a, b := build(), build()
	Merge(&a, fetched)
	Merge(&b, fetched)
	// Merging the same fetch twice is a no-op the second time.
	Merge(&b, fetched)

	if len(a.Posts) != len(b.Posts) {
		t.Fatalf("length mismatch: %d vs %d", len(a.Posts), len(b.Posts))
	}
	for i := range a.Posts {
		if a.Posts[i] != b.Posts[i] {
			t.Errorf("post %d differs: %+v vs %+v", i, a.Posts[i], b.Posts[i])
		}
	}
}

func TestMergeDoesNotAliasFetched(t *testing.T) {
	existing := Feed{URL: "u", Posts: samplePosts("1")}
	existing.Posts[0].Read = true
	fetched := Feed{URL: "u", Posts: samplePosts("1")}

	Merge(&existing, fetched)
	existing.Posts[0].Title = "changed"

	if fetched.Posts[0].Title == "changed" || fetched.Posts[0].Read {
		t.Error("merge must not write through to the fetched feed")
	}
}

func TestTotalUnread(t *testing.T) {
	fs := Feeds{
		{URL: "a", Posts: []Post{{ID: "1"}, {ID: "2", Read: true}}},
		{URL: "b", Posts: []Post{{ID: "3"}}},
	}
	if got := fs[0].TotalUnread(); got != 1 {
		t.Errorf("feed a unread = %d, want 1", got)
	}
	if got := fs.TotalUnread(); got != 2 {
		t.Errorf("total unread = %d, want 2", got)
	}
	if fs.IndexOf("b") != 1 || fs.IndexOf("zzz") != -1 {
		t.Error("IndexOf returned wrong position")
	}
}

package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheuskafuri/termfeed/internal/feed"
)

func sampleFeeds() feed.Feeds {
	return feed.Feeds{
		{
			ID:    "https://a.com",
			URL:   "https://a.com/feed",
			Title: "A",
			Posts: []feed.Post{
				{ID: "a1", Title: "First", Content: "secret body", Read: true},
				{ID: "a2", Title: "Second"},
			},
		},
		{
			URL:   "https://b.com/feed",
			Title: "B",
			Posts: []feed.Post{{ID: "b1", Read: true}},
		},
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	sqlite, err := Open(BackendSQLite, filepath.Join(dir, "sql"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	json, err := Open(BackendJSON, filepath.Join(dir, "json", "nested"))
	if err != nil {
		t.Fatalf("opening json store: %v", err)
	}
	return map[string]Store{"json": json, "sqlite": sqlite}
}

func TestRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		if err := s.Save(sampleFeeds()); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := s.Load()
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}

		if len(got) != 2 {
			t.Fatalf("%s: expected 2 feeds, got %d", name, len(got))
		}
		if got[0].URL != "https://a.com/feed" || got[1].URL != "https://b.com/feed" {
			t.Errorf("%s: feed order not preserved: %s, %s", name, got[0].URL, got[1].URL)
		}
		if len(got[0].Posts) != 2 || got[0].Posts[0].ID != "a1" || got[0].Posts[1].ID != "a2" {
			t.Errorf("%s: post order not preserved: %+v", name, got[0].Posts)
		}
		if !got[0].Posts[0].Read || got[0].Posts[1].Read || !got[1].Posts[0].Read {
			t.Errorf("%s: read flags not preserved: %+v", name, got)
		}
		// Display fields are not durable.
		if got[0].Title != "" || got[0].Posts[0].Title != "" || got[0].Posts[0].Content != "" {
			t.Errorf("%s: display fields should not be persisted: %+v", name, got[0])
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	for name, s := range stores(t) {
		if err := s.Save(sampleFeeds()); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		if err := s.Save(sampleFeeds()[1:]); err != nil {
			t.Fatalf("%s: second save: %v", name, err)
		}
		got, err := s.Load()
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if len(got) != 1 || got[0].URL != "https://b.com/feed" {
			t.Errorf("%s: expected only feed b after overwrite, got %+v", name, got)
		}
	}
}

func TestLoadEmpty(t *testing.T) {
	for name, s := range stores(t) {
		got, err := s.Load()
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("%s: expected empty non-nil collection, got %#v", name, got)
		}
	}
}

func TestFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := &FileStore{Path: path}
	if err := s.Save(sampleFeeds()); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("state is not a JSON array of objects: %v", err)
	}
	if _, ok := raw[0]["URL"]; !ok {
		t.Errorf("expected URL key, got %s", data)
	}
	if _, ok := raw[0]["posts"]; !ok {
		t.Errorf("expected posts key, got %s", data)
	}
	for _, leaked := range []string{"secret body", "First", "Title", "Content"} {
		if strings.Contains(string(data), leaked) {
			t.Errorf("state file should not contain %q: %s", leaked, data)
		}
	}
	if !strings.Contains(string(data), `{"id":"a1","read":true}`) {
		t.Errorf("expected compact post records, got %s", data)
	}
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := &FileStore{Path: path}
	if err := s.Save(nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "[]" {
		t.Errorf("expected [], got %s", data)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := &FileStore{Path: filepath.Join(dir, "state.json")}
	for i := 0; i < 3; i++ {
		if err := s.Save(sampleFeeds()); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only state.json, found %d entries", len(entries))
	}
}

func TestReadStateCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := &FileStore{Path: path}

	if _, err := s.Load(); err == nil {
		t.Error("expected error loading corrupt state")
	}
	got := ReadState(s)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty collection, got %#v", got)
	}
}

func TestReadStateMissingFile(t *testing.T) {
	s := &FileStore{Path: filepath.Join(t.TempDir(), "nope", "state.json")}
	if got := ReadState(s); len(got) != 0 {
		t.Errorf("expected empty collection, got %#v", got)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Error("expected error for unknown backend")
	}
}

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matheuskafuri/termfeed/internal/feed"
)

// FileStore keeps the collection as a JSON array in a single file.
type FileStore struct {
	Path string
}

func (s *FileStore) Load() (feed.Feeds, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return feed.Feeds{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var feeds feed.Feeds
	if err := json.Unmarshal(data, &feeds); err != nil {
		return nil, fmt.Errorf("parsing state %s: %w", s.Path, err)
	}
	return feeds, nil
}

// Save replaces the state file. The new content is written to a temporary
// file first and renamed into place, so readers never see a partial file.
func (s *FileStore) Save(feeds feed.Feeds) error {
	if feeds == nil {
		feeds = feed.Feeds{}
	}
	data, err := json.Marshal(feeds)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replacing state: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

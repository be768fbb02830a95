// Package state persists the feed collection between runs. Only subscription
// URLs, post ids and read flags are stored; everything shown on screen is
// rebuilt from the next fetch.
package state

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/matheuskafuri/termfeed/internal/feed"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Store interface {
	// Load returns the saved collection, or an empty one if nothing was saved.
	Load() (feed.Feeds, error)
	Save(feeds feed.Feeds) error
	Close() error
}

// Open returns the store for backend, keeping its files under dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return &FileStore{Path: filepath.Join(dir, "state.json")}, nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "state.db"))
	default:
		return nil, fmt.Errorf("unknown state backend %q (valid: json, sqlite)", backend)
	}
}

// ReadState loads the saved collection for startup. A missing or unreadable
// state yields an empty collection so the reader can always start.
func ReadState(s Store) feed.Feeds {
	feeds, err := s.Load()
	if err != nil {
		log.WithError(err).Warn("could not load saved state, starting empty")
		return feed.Feeds{}
	}
	if feeds == nil {
		return feed.Feeds{}
	}
	return feeds
}

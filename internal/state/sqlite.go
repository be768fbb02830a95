package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/matheuskafuri/termfeed/internal/feed"
)

// SQLiteStore keeps the collection in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS feeds (
			url      TEXT PRIMARY KEY,
			position INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS posts (
			feed_url TEXT NOT NULL,
			id       TEXT NOT NULL,
			position INTEGER NOT NULL,
			read     INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_posts_feed ON posts(feed_url, position);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load() (feed.Feeds, error) {
	rows, err := s.db.Query("SELECT url FROM feeds ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying feeds: %w", err)
	}
	defer rows.Close()

	feeds := feed.Feeds{}
	index := make(map[string]int)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		index[url] = len(feeds)
		feeds = append(feeds, feed.Feed{URL: url, Posts: []feed.Post{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	posts, err := s.db.Query("SELECT feed_url, id, read FROM posts ORDER BY feed_url, position")
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer posts.Close()

	for posts.Next() {
		var (
			url string
			p   feed.Post
		)
		if err := posts.Scan(&url, &p.ID, &p.Read); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		if i, ok := index[url]; ok {
			feeds[i].Posts = append(feeds[i].Posts, p)
		}
	}
	return feeds, posts.Err()
}

// Save replaces the stored collection in a single transaction.
func (s *SQLiteStore) Save(feeds feed.Feeds) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM posts; DELETE FROM feeds;"); err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}

	feedStmt, err := tx.Prepare("INSERT OR REPLACE INTO feeds (url, position) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer feedStmt.Close()

	postStmt, err := tx.Prepare("INSERT INTO posts (feed_url, id, position, read) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer postStmt.Close()

	for i, f := range feeds {
		if _, err := feedStmt.Exec(f.URL, i); err != nil {
			return fmt.Errorf("saving feed %s: %w", f.URL, err)
		}
		for j, p := range f.Posts {
			if _, err := postStmt.Exec(f.URL, p.ID, j, p.Read); err != nil {
				return fmt.Errorf("saving post %s: %w", p.ID, err)
			}
		}
	}

	return tx.Commit()
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// DefaultTTL is how long a fetched body is served from disk.
const DefaultTTL = time.Hour

const maxBodyBytes = 16 << 20

var (
	ErrNoCacheDir = errors.New("cache directory not configured")
	ErrNotText    = errors.New("response body is not decodable text")
	ErrTooLarge   = errors.New("response body exceeds size limit")
	ErrClockSkew  = errors.New("cache entry is newer than the current time")
)

// Cache stores raw feed documents on disk, one file per URL.
type Cache struct {
	dir    string
	ttl    time.Duration
	client *http.Client
	now    func() time.Time
	force  bool
	limit  int64
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

// WithForceRefresh skips cached copies. Fetched bodies are still written
// so later runs can use them.
func WithForceRefresh() Option {
	return func(c *Cache) { c.force = true }
}

func New(dir string, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		dir:    dir,
		ttl:    ttl,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
		limit:  maxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Dir() string { return c.dir }

// Key is the filesystem-safe name of the cache file for url.
func Key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *Cache) path(url string) (string, error) {
	if c.dir == "" {
		return "", ErrNoCacheDir
	}
	return filepath.Join(c.dir, Key(url)), nil
}

// Fetch returns the body for url, from disk while the cached copy is younger
// than the TTL and from the network otherwise. A body fetched from the
// network is returned even if it cannot be written back to disk.
func (c *Cache) Fetch(ctx context.Context, url string) ([]byte, error) {
	path, err := c.path(url)
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(path); err == nil && !c.force {
		age := c.now().Sub(info.ModTime())
		if age < 0 {
			return nil, fmt.Errorf("checking cache for %s: %w", url, ErrClockSkew)
		}
		if age < c.ttl {
			if data, err := os.ReadFile(path); err == nil {
				log.WithField("url", url).Debug("cache hit")
				return data, nil
			}
		}
	}

	body, err := c.download(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		log.WithField("dir", c.dir).WithError(err).Warn("could not create cache dir")
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		log.WithField("url", url).WithError(err).Warn("could not cache feed")
	}
	return body, nil
}

func (c *Cache) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "termfeed")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(body)) > c.limit {
		return nil, fmt.Errorf("reading %s: %w (%d bytes)", url, ErrTooLarge, c.limit)
	}

	body, err = text(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return body, nil
}

var xmlEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*encoding=["']([^"']+)["']`)

// text checks that body is text in a known encoding. A document that names
// its own encoding is returned as is, because the feed parser decodes it
// from that declaration. Otherwise a body in the charset named by the
// Content-Type is transcoded to UTF-8.
func text(body []byte, contentType string) ([]byte, error) {
	if utf8.Valid(body) {
		return body, nil
	}

	if m := xmlEncoding.FindSubmatch(body); m != nil {
		if _, err := decode(body, string(m[1])); err != nil {
			return nil, err
		}
		return body, nil
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return nil, ErrNotText
	}
	return decode(body, params["charset"])
}

func decode(body []byte, label string) ([]byte, error) {
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("%w: unknown charset %q", ErrNotText, label)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil || !utf8.Valid(out) {
		return nil, fmt.Errorf("%w: invalid %s", ErrNotText, name)
	}
	return out, nil
}

// Prune removes cached documents older than olderThan.
func (c *Cache) Prune(olderThan time.Duration) (int, error) {
	entries, err := c.entries()
	if err != nil {
		return 0, err
	}

	cutoff := c.now().Add(-olderThan)
	deleted := 0
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return deleted, fmt.Errorf("removing %s: %w", e.Name(), err)
		}
		deleted++
	}
	return deleted, nil
}

// Stats reports the number of cached documents and their total size.
func (c *Cache) Stats() (int, int64, error) {
	entries, err := c.entries()
	if err != nil {
		return 0, 0, err
	}

	var size int64
	for _, e := range entries {
		if info, err := e.Info(); err == nil {
			size += info.Size()
		}
	}
	return len(entries), size, nil
}

func (c *Cache) entries() ([]fs.DirEntry, error) {
	if c.dir == "" {
		return nil, ErrNoCacheDir
	}
	all, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache dir: %w", err)
	}

	var files []fs.DirEntry
	for _, e := range all {
		if e.Type().IsRegular() {
			files = append(files, e)
		}
	}
	return files, nil
}

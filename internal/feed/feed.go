package feed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

// ChannelCapacity bounds the handoff between the fetch task and the reader
// loop. It does not depend on how many feeds are subscribed.
const ChannelCapacity = 16

const DefaultDateFormat = "02/01/2006"

// BodySource returns the raw document for a feed URL. *cache.Cache
// satisfies it.
type BodySource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Fetcher struct {
	src        BodySource
	conv       *Converter
	dateFormat string
}

type Option func(*Fetcher)

func WithDateFormat(layout string) Option {
	return func(f *Fetcher) {
		if layout != "" {
			f.dateFormat = layout
		}
	}
}

func NewFetcher(src BodySource, opts ...Option) *Fetcher {
	f := &Fetcher{
		src:        src,
		conv:       NewConverter(),
		dateFormat: DefaultDateFormat,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves and parses a single feed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Feed, error) {
	body, err := f.src.Fetch(ctx, url)
	if err != nil {
		return Feed{}, fmt.Errorf("fetching %s: %w", url, err)
	}
	return f.Parse(url, body)
}

// Parse builds a Feed from a raw RSS, Atom or JSON feed document.
func (f *Fetcher) Parse(url string, body []byte) (Feed, error) {
	// gofeed parsers keep per-document state, so each parse gets its own.
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return Feed{}, fmt.Errorf("parsing %s: %w", url, err)
	}

	out := Feed{
		ID:    feedID(parsed, url),
		URL:   url,
		Title: orDefault(parsed.Title, UntitledFeed),
		Posts: make([]Post, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		out.Posts = append(out.Posts, f.post(item))
	}
	return out, nil
}

func (f *Fetcher) post(item *gofeed.Item) Post {
	html := item.Content
	if html == "" {
		html = item.Description
	}

	return Post{
		ID:      postID(item),
		Title:   orDefault(item.Title, UntitledPost),
		Content: f.conv.Readable(html),
		Link:    firstLink(item),
		Date:    f.date(item),
	}
}

func (f *Fetcher) date(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.Format(f.dateFormat)
	}
	return strings.TrimSpace(item.Published)
}

func feedID(parsed *gofeed.Feed, url string) string {
	switch {
	case parsed.FeedLink != "":
		return parsed.FeedLink
	case parsed.Link != "":
		return parsed.Link
	default:
		return url
	}
}

func postID(item *gofeed.Item) string {
	switch {
	case item.GUID != "":
		return item.GUID
	case firstLink(item) != "":
		return firstLink(item)
	default:
		return contentID(item.Title + "\x00" + item.Published)
	}
}

func contentID(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h[:16])
}

func firstLink(item *gofeed.Item) string {
	if len(item.Links) > 0 && item.Links[0] != "" {
		return item.Links[0]
	}
	return item.Link
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

type FetchResult struct {
	Sent   int
	Errors []error
}

// FetchAll fetches every URL concurrently and sends each feed on out as soon
// as it is ready, so feeds arrive in completion order. A failing URL is
// logged and skipped without affecting the others. out is not closed.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, out chan<- Feed) FetchResult {
	var (
		mu     sync.Mutex
		result FetchResult
		wg     sync.WaitGroup
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Errors = append(result.Errors, err)
	}

	for _, u := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()

			fd, err := f.Fetch(ctx, url)
			if err != nil {
				log.WithField("url", url).WithError(err).Warn("skipping feed")
				fail(err)
				return
			}

			select {
			case out <- fd:
				mu.Lock()
				result.Sent++
				mu.Unlock()
			case <-ctx.Done():
				fail(fmt.Errorf("delivering %s: %w", url, ctx.Err()))
			}
		}(u)
	}

	wg.Wait()
	return result
}

// Start runs FetchAll in the background and returns the receiving end of the
// handoff channel. The channel is closed once every fetch has finished.
func Start(ctx context.Context, f *Fetcher, urls []string) <-chan Feed {
	ch := make(chan Feed, ChannelCapacity)
	go func() {
		defer close(ch)
		res := f.FetchAll(ctx, urls, ch)
		log.WithFields(log.Fields{
			"sent":   res.Sent,
			"failed": len(res.Errors),
		}).Info("fetch finished")
	}()
	return ch
}

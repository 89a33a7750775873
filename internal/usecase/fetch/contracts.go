// Package fetch declares the feed-fetching and content-fetching interfaces
// and sentinel errors shared by internal/infra/scraper and
// internal/infra/fetcher. It has no use case logic of its own; the Per-Source
// Extractor use case lives in internal/usecase/scrape.
package fetch

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for feed fetching operations.
var (
	// ErrFeedFetchFailed indicates that fetching a feed from the source URL failed.
	// This can occur due to network issues, invalid URLs, or server errors.
	ErrFeedFetchFailed = errors.New("failed to fetch feed from source")

	// ErrInvalidFeedFormat indicates that the feed content could not be parsed.
	// This typically happens when the feed is not valid RSS or Atom format.
	ErrInvalidFeedFormat = errors.New("invalid feed format")
)

// FeedItem represents a single item from an RSS/Atom feed.
type FeedItem struct {
	Title       string
	URL         string
	Content     string
	PublishedAt time.Time
}

// FeedResult is everything FeedFetcher.Fetch recovers from one feed: its
// items plus the feed's own title, which the Per-Source Extractor logs on
// the rss_parsed event.
type FeedResult struct {
	Title string
	Items []FeedItem
}

// FeedFetcher is an interface for fetching RSS/Atom feeds from a URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (FeedResult, error)
}

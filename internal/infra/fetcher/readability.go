package fetcher

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/go-shiori/go-readability"
)

// ExtractReadability runs Mozilla's Readability algorithm against HTML
// already fetched by PageFetcher. It is the Per-Source Extractor's last
// fallback strategy when the Content Extractor's own selector cascade
// (internal/usecase/extract) and the simpler fallback heuristics ahead of it
// in that cascade all come up short. Unlike PageFetcher it does no network
// I/O of its own: the page is already in hand, so there is nothing here to
// validate or rate-limit a second time.
func ExtractReadability(html []byte, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = nil
	}

	article, err := readability.FromReader(bytes.NewReader(html), parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	if article.TextContent != "" {
		return article.TextContent, nil
	}
	if article.Content != "" {
		return article.Content, nil
	}
	return "", fmt.Errorf("readability: no content found")
}

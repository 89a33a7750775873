package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"scrapeengine/internal/infra/fetcher"
	"scrapeengine/internal/usecase/extract"
)

// fallbackMinContentLength is the acceptance floor for these strategies.
// It sits above the Content Extractor cascade's own 100-char floor because
// everything here is reached only once that cascade has already failed.
const fallbackMinContentLength = 200

// fallbackBodyTruncate bounds the last-resort raw body text strategy.
const fallbackBodyTruncate = 10000

// minFallbackTitleLength matches the Content Extractor cascade's own title
// floor: a fallback strategy's content alone is not enough to accept it.
const minFallbackTitleLength = 5

// broadcasterSelectors targets layout patterns used by major broadcaster
// sites that don't wrap their article body in a semantic <article> element.
var broadcasterSelectors = []string{
	`[data-component="text-block"]`,
	`[data-testid*="paragraph"]`,
	`div[class*="Text-sc"]`,
}

// fallbackResult is what a fallback strategy produced.
type fallbackResult struct {
	Title   string
	Content string
	Method  string
}

// fallbackExtract runs the Per-Source Extractor's own cascade over a page
// the Content Extractor's cascade (internal/usecase/extract) could not make
// sense of: broadcaster-specific text blocks, <article> paragraphs, <main>
// text, Readability's general-purpose algorithm, and finally raw <body>
// text truncated to fallbackBodyTruncate chars. The first strategy whose
// content clears fallbackMinContentLength wins.
func fallbackExtract(doc *goquery.Document, html []byte, pageURL string) (fallbackResult, bool) {
	title := strings.TrimSpace(doc.Find("title").First().Text())

	if content := joinBlocks(doc, broadcasterSelectors); len(content) >= fallbackMinContentLength {
		return fallbackResult{Title: title, Content: content, Method: "fallback-broadcaster-blocks"}, true
	}

	if content := extract.JoinParagraphs(doc.Find("article")); len(content) >= fallbackMinContentLength {
		return fallbackResult{Title: title, Content: content, Method: "fallback-article-paragraphs"}, true
	}

	if content := collapseWhitespace(doc.Find("main").Text()); len(content) >= fallbackMinContentLength {
		return fallbackResult{Title: title, Content: content, Method: "fallback-main-text"}, true
	}

	if content, err := fetcher.ExtractReadability(html, pageURL); err == nil {
		if content = strings.TrimSpace(content); len(content) >= fallbackMinContentLength {
			return fallbackResult{Title: title, Content: content, Method: "fallback-readability"}, true
		}
	}

	content := collapseWhitespace(doc.Find("body").Text())
	if len(content) > fallbackBodyTruncate {
		content = content[:fallbackBodyTruncate]
	}
	if len(content) >= fallbackMinContentLength {
		return fallbackResult{Title: title, Content: content, Method: "fallback-body-text"}, true
	}

	return fallbackResult{}, false
}

// joinBlocks concatenates every element matched by selectors, in document
// order, dropping fragments too short to be real article text.
func joinBlocks(doc *goquery.Document, selectors []string) string {
	var parts []string
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) >= 30 {
				parts = append(parts, text)
			}
		})
	}
	return strings.Join(parts, extract.ParagraphSeparator)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

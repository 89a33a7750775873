// Package extract turns a parsed HTML document into a structured article:
// title, body content with paragraph structure preserved, author, date,
// language, and a deduplication hash. It tries a cascade of strategies in
// strict order and accepts the first whose content clears a length floor.
package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"scrapeengine/internal/utils/text"
)

// Minimum lengths the cascade requires before accepting a strategy's output.
const (
	minContentLength = 100
	minTitleLength   = 5
)

// Method identifies which strategy produced a successful extraction.
type Method string

// Strategies, in cascade order.
const (
	MethodJSONLD    Method = "json-ld"
	MethodSelector  Method = "selector"
	MethodMetaTag   Method = "meta"
	MethodBodyText  Method = "body-text"
)

// Trace records a single per-field probe when tracking is enabled.
type Trace struct {
	Field    string
	Selector string
	Method   string
	Value    string
}

// Result is the outcome of a successful extraction.
type Result struct {
	Title       string
	Content     string
	Author      string
	Date        string
	Language    string
	ContentHash string
	Method      Method
	Traces      []Trace
}

type tracker struct {
	enabled bool
	traces  []Trace
}

func (t *tracker) record(field, selector, method, value string) {
	if !t.enabled {
		return
	}
	t.traces = append(t.traces, Trace{Field: field, Selector: selector, Method: method, Value: value})
}

// Extract runs the strategy cascade against doc and returns the first
// strategy whose content is at least minContentLength characters, after
// validating the resulting title is at least minTitleLength characters.
func Extract(doc *goquery.Document, pageURL string, track bool) (Result, error) {
	tr := &tracker{enabled: track}

	for _, strategy := range []func(*goquery.Document, *tracker) (Result, bool){
		extractJSONLD,
		extractSelectors,
		extractMetaTags,
		extractBodyText,
	} {
		res, ok := strategy(doc, tr)
		if !ok {
			continue
		}
		if text.CountRunes(strings.TrimSpace(res.Content)) < minContentLength {
			continue
		}
		res.Title = strings.TrimSpace(res.Title)
		if text.CountRunes(res.Title) < minTitleLength {
			continue
		}
		res.Language = DetectLanguage(res.Content)
		res.ContentHash = ContentHash(res.Title, res.Content)
		res.Traces = tr.traces
		return res, nil
	}

	return Result{}, ErrExtractionTooShort
}

// ContentHash computes the deduplication key: sha256 of the normalized
// title joined with a 2000-char normalized content prefix.
func ContentHash(title, content string) string {
	normTitle := strings.ToLower(strings.TrimSpace(title))
	normContent := strings.ToLower(strings.TrimSpace(content))
	if len(normContent) > 2000 {
		normContent = normContent[:2000]
	}
	sum := sha256.Sum256([]byte(normTitle + ":" + normContent))
	return hex.EncodeToString(sum[:])
}

// jsonLDArticle is the subset of schema.org Article/NewsArticle fields this
// extractor reads from a <script type="application/ld+json"> block.
type jsonLDArticle struct {
	Type        any    `json:"@type"`
	Headline    string `json:"headline"`
	ArticleBody string `json:"articleBody"`
	DatePub     string `json:"datePublished"`
	Author      any    `json:"author"`
}

func (a jsonLDArticle) typeMatches() bool {
	switch v := a.Type.(type) {
	case string:
		return v == "Article" || v == "NewsArticle"
	case []any:
		for _, t := range v {
			if s, ok := t.(string); ok && (s == "Article" || s == "NewsArticle") {
				return true
			}
		}
	}
	return false
}

func (a jsonLDArticle) authorName() string {
	switch v := a.Author.(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
	case []any:
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				if name, ok := m["name"].(string); ok {
					return name
				}
			}
		}
	}
	return ""
}

func extractJSONLD(doc *goquery.Document, tr *tracker) (Result, bool) {
	var found Result
	ok := false

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.Text()

		var single jsonLDArticle
		if err := json.Unmarshal([]byte(raw), &single); err == nil && single.typeMatches() {
			found = Result{
				Title:   single.Headline,
				Content: single.ArticleBody,
				Author:  single.authorName(),
				Date:    single.DatePub,
				Method:  MethodJSONLD,
			}
			tr.record("content", `script[type="application/ld+json"]`, "json-ld", found.Content)
			ok = true
			return false
		}

		var list []jsonLDArticle
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			for _, a := range list {
				if a.typeMatches() {
					found = Result{
						Title:   a.Headline,
						Content: a.ArticleBody,
						Author:  a.authorName(),
						Date:    a.DatePub,
						Method:  MethodJSONLD,
					}
					tr.record("content", `script[type="application/ld+json"]`, "json-ld", found.Content)
					ok = true
					return false
				}
			}
		}
		return true
	})

	return found, ok
}

var titleSelectors = []string{"h1", `meta[property="og:title"]`, "title"}

var contentSelectors = []string{"article", ".article-content", ".story-body", ".entry-content", ".post-content", "main"}

func extractSelectors(doc *goquery.Document, tr *tracker) (Result, bool) {
	title := probeFirst(doc, tr, "title", titleSelectors, minTitleLength)
	if title == "" {
		return Result{}, false
	}

	for _, sel := range contentSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		content := JoinParagraphs(node)
		tr.record("content", sel, "text", content)
		if text.CountRunes(content) >= minContentLength {
			return Result{Title: title, Content: content, Method: MethodSelector}, true
		}
	}

	return Result{}, false
}

func probeFirst(doc *goquery.Document, tr *tracker, field string, selectors []string, minLen int) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		var val string
		method := "text"
		if content, exists := node.Attr("content"); exists {
			val = content
			method = "attr"
		} else {
			val = node.Text()
		}
		val = strings.TrimSpace(val)
		tr.record(field, sel, method, val)
		if text.CountRunes(val) >= minLen {
			return val
		}
	}
	return ""
}

func extractMetaTags(doc *goquery.Document, tr *tracker) (Result, bool) {
	title := probeFirst(doc, tr, "title", []string{
		`meta[property="og:title"]`, `meta[name="twitter:title"]`, "title",
	}, minTitleLength)
	content := probeFirst(doc, tr, "content", []string{
		`meta[property="og:description"]`, `meta[name="twitter:description"]`, `meta[name="description"]`,
	}, 1)
	if title == "" || content == "" {
		return Result{}, false
	}
	return Result{Title: title, Content: content, Method: MethodMetaTag}, true
}

func extractBodyText(doc *goquery.Document, tr *tracker) (Result, bool) {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	body := strings.TrimSpace(collapseWhitespace(doc.Find("body").Text()))
	if runes := []rune(body); len(runes) > 5000 {
		body = string(runes[:5000])
	}
	tr.record("content", "body", "text", body)
	return Result{Title: title, Content: body, Method: MethodBodyText}, true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"scrapeengine/internal/utils/text"
)

// ParagraphSeparator is the literal sequence used to join retained
// paragraphs. The reader UI relies on this exact separator to recover
// paragraph boundaries from stored plain text.
const ParagraphSeparator = "\n\n\n"

const minParagraphLength = 30

var skipAncestorSelectors = []string{
	"figcaption", "figure", ".caption", ".video-caption", ".featured-video", ".video-container",
}

// JoinParagraphs enumerates the <p> descendants of node, drops paragraphs
// that are promo noise or too short, deduplicates exact text, and joins
// what remains with ParagraphSeparator. If no paragraph survives, it falls
// back to node's concatenated text.
func JoinParagraphs(node *goquery.Selection) string {
	var kept []string
	seen := make(map[string]bool)

	node.Find("p").Each(func(_ int, p *goquery.Selection) {
		if isInsideSkippedAncestor(p) {
			return
		}
		paragraph := strings.TrimSpace(p.Text())
		if paragraph == "" {
			return
		}
		if isRelatedArticlePromo(p, paragraph) {
			return
		}
		if text.CountRunes(paragraph) < minParagraphLength {
			return
		}
		if seen[paragraph] {
			return
		}
		seen[paragraph] = true
		kept = append(kept, paragraph)
	})

	if len(kept) == 0 {
		return collapseWhitespace(node.Text())
	}
	return strings.Join(kept, ParagraphSeparator)
}

func isInsideSkippedAncestor(p *goquery.Selection) bool {
	for _, sel := range skipAncestorSelectors {
		if p.Closest(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// isRelatedArticlePromo matches the pattern used by related-article promo
// blocks: the whole paragraph text equals the text of a single enclosed
// link, and that text is all caps and longer than 20 characters.
func isRelatedArticlePromo(p *goquery.Selection, paragraph string) bool {
	links := p.Find("a")
	if links.Length() != 1 {
		return false
	}
	linkText := strings.TrimSpace(links.First().Text())
	if linkText != paragraph {
		return false
	}
	if len(paragraph) <= 20 {
		return false
	}
	return paragraph == strings.ToUpper(paragraph)
}

// Package scrape implements the Per-Source Extractor: given one configured
// source and a target article count, it fetches the source's RSS feed,
// filters out URLs already on file, fetches each remaining candidate page
// concurrently, and runs the Content Extractor cascade against it. It never
// writes to the database itself — that is the Transactional Persister's job
// (internal/usecase/persist) — and it never lets a single candidate's
// failure abort the rest of the source.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/infra/fetcher"
	"scrapeengine/internal/observability/metrics"
	"scrapeengine/internal/repository"
	"scrapeengine/internal/usecase/eventlog"
	"scrapeengine/internal/usecase/extract"
	"scrapeengine/internal/usecase/fetch"
)

// maxInFlightPageFetches is the hard ceiling on concurrent page fetches for
// a single source, independent of how many sources a job runs in parallel.
const maxInFlightPageFetches = 4

// candidateFetchTimeout bounds one source's entire candidate page-fetch
// pool, beyond the per-request timeout already enforced by PageFetcher.
const candidateFetchTimeout = 60 * time.Second

// rssRetryAttempts and rssRetryBase implement the feed-fetch retry policy:
// up to 3 attempts, with 2^attempt seconds between them.
const rssRetryAttempts = 3

const rssRetryBase = 1 * time.Second

// prefilterExamineMultiplier and prefilterExamineCap bound how many RSS
// items the pre-filter will examine before giving up on finding enough
// non-duplicate candidates.
const (
	prefilterTargetMultiplier  = 2
	prefilterExamineMultiplier = 3
	prefilterExamineCap        = 50
)

// ExtractedArticle is one article the cascade successfully produced for a
// source, ready for the Transactional Persister to deduplicate and insert.
type ExtractedArticle struct {
	SourceID        uuid.UUID
	CorrelationID   string
	Title           string
	Content         string
	Author          string
	PublicationDate *time.Time
	Language        string
	ContentHash     string
	SourceURL       string
}

// SourceMetrics is the per-source extraction_metrics object: how much of
// the feed the source pipeline actually examined and attempted, independent
// of how many articles came out the other end. PrefilterDuplicates counts
// feed items dropped before fetching because their URL was already on
// file; a run where every examined item is such a duplicate ends with
// CandidatesProcessed zero but this count intact, and the Persister folds
// it into the source's reported duplicates.
type SourceMetrics struct {
	RSSItemsFound        int
	CandidatesProcessed  int
	PrefilterDuplicates  int
	ExtractionAttempts   int
	ExtractionSuccesses  int
	ExtractionDurationMs int64
}

// SourceResult is what ExtractSource returns: everything the Job Manager
// needs to fold into the job-wide totals and hand to the Persister.
type SourceResult struct {
	SourceName    string
	SourceID      uuid.UUID
	Extracted     []ExtractedArticle
	Errors        int
	Metrics       SourceMetrics
	// FailureReason is set only when the source pipeline aborted on
	// exception (missing RSS URL, RSS fetch exhausted its retries) rather
	// than simply draining short of its target.
	FailureReason string
	// Success reports whether the source reached its target article count.
	// Falling short is not itself a failure — see FailureReason.
	Success bool
}

// Extractor runs the candidate pipeline for one source at a time. A single
// Extractor is reused across all sources in a job and is safe for
// concurrent use by the Job Manager's per-source fan-out.
type Extractor struct {
	Articles repository.ArticleRepository
	Feed     fetch.FeedFetcher
	Pages    *fetcher.PageFetcher
	Logger   *eventlog.Logger
}

// New constructs an Extractor.
func New(articles repository.ArticleRepository, feed fetch.FeedFetcher, pages *fetcher.PageFetcher, logger *eventlog.Logger) *Extractor {
	return &Extractor{Articles: articles, Feed: feed, Pages: pages, Logger: logger}
}

// ExtractSource runs the full candidate pipeline for src and returns up to
// articlesPerSource extracted articles. It never returns an error: every
// failure mode (unreachable feed, unreachable pages, extraction cascade
// exhaustion) is logged and folds into SourceResult.Errors instead, so that
// one bad source never aborts a job's other sources. tracking enables
// per-field probe traces on each candidate's extraction_completed event.
func (e *Extractor) ExtractSource(ctx context.Context, jobID uuid.UUID, src entity.Source, articlesPerSource int, tracking bool) SourceResult {
	result := SourceResult{SourceName: src.Name, SourceID: src.ID}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			_ = e.Logger.TeardownFailure(ctx, jobID, &src.ID, fmt.Sprintf("panic: %v", r))
			result.Errors++
		}
	}()

	_ = e.Logger.SourceStarted(ctx, jobID, src.ID, src.Name, src.RSSURL, articlesPerSource)

	if src.RSSURL == "" {
		result.FailureReason = entity.ErrSourceMissingRSSURL.Error()
		_ = e.Logger.SourceExtractionFailed(ctx, jobID, src.ID, result.FailureReason)
		result.Errors++
		return result
	}

	feed, err := e.fetchFeedWithRetry(ctx, jobID, src)
	if err != nil {
		result.FailureReason = err.Error()
		_ = e.Logger.SourceExtractionFailed(ctx, jobID, src.ID, result.FailureReason)
		result.Errors++
		return result
	}
	result.Metrics.RSSItemsFound = len(feed.Items)

	maxExamine := examineWindow(len(feed.Items), articlesPerSource)
	_ = e.Logger.RSSParsed(ctx, jobID, src.ID, feed.Title, len(feed.Items), maxExamine)

	candidates, prefilterDupes := e.selectCandidates(ctx, feed.Items[:maxExamine], articlesPerSource)
	result.Metrics.CandidatesProcessed = len(candidates)
	result.Metrics.PrefilterDuplicates = prefilterDupes

	pages := e.fetchCandidates(ctx, jobID, src, candidates)
	result.Metrics.ExtractionAttempts = len(pages)

	for _, p := range pages {
		article, err := e.extractPage(ctx, jobID, p, src, tracking)
		if err != nil {
			result.Errors++
			metrics.RecordExtractionFailure(src.Name)
			continue
		}
		result.Extracted = append(result.Extracted, article)
		if len(result.Extracted) >= articlesPerSource {
			break
		}
	}
	result.Metrics.ExtractionSuccesses = len(result.Extracted)
	result.Metrics.ExtractionDurationMs = time.Since(start).Milliseconds()

	result.Success = len(result.Extracted) >= articlesPerSource
	_ = e.Logger.SourceExtractionCompleted(ctx, jobID, src.ID, len(result.Extracted), articlesPerSource, result.Metrics.ExtractionDurationMs)

	return result
}

// examineWindow bounds how many RSS items the pre-filter looks at:
// min(total, cap, articlesPerSource*multiplier).
func examineWindow(total, articlesPerSource int) int {
	maxExamine := articlesPerSource * prefilterExamineMultiplier
	if maxExamine > prefilterExamineCap {
		maxExamine = prefilterExamineCap
	}
	if maxExamine > total {
		maxExamine = total
	}
	return maxExamine
}

// fetchFeedWithRetry fetches src's RSS feed, retrying transient failures up
// to rssRetryAttempts times with exponential backoff, logging each retry.
func (e *Extractor) fetchFeedWithRetry(ctx context.Context, jobID uuid.UUID, src entity.Source) (fetch.FeedResult, error) {
	var lastErr error
	for attempt := 1; attempt <= rssRetryAttempts; attempt++ {
		result, err := e.Feed.Fetch(ctx, src.RSSURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == rssRetryAttempts {
			break
		}

		delay := time.Duration(math.Pow(2, float64(attempt))) * rssRetryBase
		_ = e.Logger.RSSFetchRetry(ctx, jobID, src.ID, attempt, rssRetryAttempts, delay.Milliseconds(), err.Error())
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fetch.FeedResult{}, ctx.Err()
		}
	}
	return fetch.FeedResult{}, fmt.Errorf("%w: %v", fetch.ErrFeedFetchFailed, lastErr)
}

// candidate pairs a feed item with whether it already exists in storage.
type candidate struct {
	item fetch.FeedItem
}

// selectCandidates pre-filters examine (already windowed to examineWindow
// items) against the article store, stopping once it has found enough
// non-duplicate URLs to try for articlesPerSource*2 candidates. The second
// return value counts the items skipped as already-stored duplicates.
func (e *Extractor) selectCandidates(ctx context.Context, examine []fetch.FeedItem, articlesPerSource int) ([]candidate, int) {
	wantNonDup := articlesPerSource * prefilterTargetMultiplier

	urls := make([]string, 0, len(examine))
	for _, it := range examine {
		urls = append(urls, it.URL)
	}

	exists, err := e.Articles.ExistsByURLBatch(ctx, urls)
	if err != nil {
		exists = map[string]bool{}
	}

	duplicates := 0
	candidates := make([]candidate, 0, wantNonDup)
	for _, it := range examine {
		if exists[it.URL] {
			duplicates++
			continue
		}
		candidates = append(candidates, candidate{item: it})
		if len(candidates) >= wantNonDup {
			break
		}
	}
	return candidates, duplicates
}

// fetchedPage is a candidate whose HTML was retrieved successfully.
type fetchedPage struct {
	item fetcher.Page
	feed fetch.FeedItem
}

// fetchCandidates retrieves each candidate's HTML with bounded concurrency
// (maxInFlightPageFetches in flight per source) and per-candidate retry,
// paced by the source's configured RequestDelay. Failures are logged and
// dropped; they never abort the other candidates.
func (e *Extractor) fetchCandidates(ctx context.Context, jobID uuid.UUID, src entity.Source, candidates []candidate) []fetchedPage {
	ctx, cancel := context.WithTimeout(ctx, candidateFetchTimeout)
	defer cancel()

	var limiter *rate.Limiter
	if delay := src.RequestDelay(); delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	var g errgroup.Group
	g.SetLimit(maxInFlightPageFetches)
	var mu sync.Mutex
	pages := make([]fetchedPage, 0, len(candidates))

	for _, c := range candidates {
		c := c
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return nil
				}
			}

			page, err := e.fetchPageWithRetry(ctx, jobID, src, c.item.URL)
			if err != nil {
				_ = e.Logger.HTTPError(ctx, jobID, &src.ID, c.item.URL, 0, err.Error())
				return nil
			}

			mu.Lock()
			pages = append(pages, fetchedPage{item: page, feed: c.item})
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait() // every fetch swallows its own error above; Wait just settles the join
	return pages
}

// fetchPageWithRetry retries a single candidate's page fetch up to 3 times
// with jittered exponential backoff before giving up.
func (e *Extractor) fetchPageWithRetry(ctx context.Context, jobID uuid.UUID, src entity.Source, url string) (fetcher.Page, error) {
	const attempts = 3
	var lastErr error
	delay := 500 * time.Millisecond

	for attempt := 1; attempt <= attempts; attempt++ {
		tracker := e.Logger.Tracker(jobID)
		var done func()
		if tracker != nil {
			done = tracker.BeginRequest()
		}
		page, err := e.Pages.Fetch(ctx, url, src.EffectiveTimeout())
		if done != nil {
			done()
		}
		if err == nil {
			return page, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		jittered := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
		select {
		case <-time.After(jittered):
		case <-ctx.Done():
			return fetcher.Page{}, ctx.Err()
		}
		delay *= 2
	}
	return fetcher.Page{}, lastErr
}

// extractPage runs the Content Extractor cascade against a fetched page and
// assembles an ExtractedArticle, emitting the correlated extraction_completed
// or extraction_failed event.
func (e *Extractor) extractPage(ctx context.Context, jobID uuid.UUID, p fetchedPage, src entity.Source, tracking bool) (ExtractedArticle, error) {
	correlationID := e.Logger.NewCorrelationID()
	start := time.Now()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.item.HTML))
	if err != nil {
		_ = e.Logger.ExtractionFailed(ctx, jobID, src.ID, correlationID, p.feed.URL, "", err.Error())
		return ExtractedArticle{}, err
	}

	res, err := extract.Extract(doc, p.item.FinalURL, tracking)
	if err != nil {
		fb, ok := fallbackExtract(doc, p.item.HTML, p.item.FinalURL)
		if !ok || len(fb.Title) < minFallbackTitleLength {
			_ = e.Logger.ExtractionFailed(ctx, jobID, src.ID, correlationID, p.feed.URL, "", err.Error())
			return ExtractedArticle{}, err
		}
		res = extract.Result{
			Title:       fb.Title,
			Content:     fb.Content,
			Method:      extract.Method(fb.Method),
			Language:    extract.DetectLanguage(fb.Content),
			ContentHash: extract.ContentHash(fb.Title, fb.Content),
		}
	}

	extractionMs := time.Since(start).Milliseconds()
	score := qualityScore(string(res.Method), len(res.Content))
	_ = e.Logger.ExtractionCompleted(ctx, jobID, src.ID, correlationID, string(res.Method), p.feed.URL, score, len(res.Content), extractionMs, traceFields(res.Traces))

	var pubAt *time.Time
	if !p.feed.PublishedAt.IsZero() {
		t := p.feed.PublishedAt
		pubAt = &t
	}

	return ExtractedArticle{
		SourceID:        src.ID,
		CorrelationID:   correlationID,
		Title:           res.Title,
		Content:         res.Content,
		Author:          res.Author,
		PublicationDate: pubAt,
		Language:        res.Language,
		ContentHash:     res.ContentHash,
		SourceURL:       p.feed.URL,
	}, nil
}

// traceFields converts the cascade's per-field probe traces into the shape
// carried on the extraction_completed event when tracking is enabled.
// Probe values are truncated so one verbose page cannot bloat a log row;
// the traces are diagnostic only and are never persisted with the article.
func traceFields(traces []extract.Trace) []map[string]any {
	if len(traces) == 0 {
		return nil
	}
	const maxValueLen = 200

	out := make([]map[string]any, 0, len(traces))
	for _, tr := range traces {
		value := tr.Value
		if len(value) > maxValueLen {
			value = value[:maxValueLen]
		}
		out = append(out, map[string]any{
			"field":    tr.Field,
			"selector": tr.Selector,
			"method":   tr.Method,
			"value":    value,
		})
	}
	return out
}

// qualityScore heuristically scores an extraction for the extraction_completed
// event: the cascade's strategies are tried in decreasing reliability order,
// so an earlier strategy starts from a higher base; a longer body adds a
// small bonus since a strategy that recovered more text is less likely to
// have grabbed boilerplate.
func qualityScore(method string, contentLength int) float64 {
	base, known := map[string]float64{
		string(extract.MethodJSONLD):   1.0,
		string(extract.MethodSelector): 0.85,
		string(extract.MethodMetaTag):  0.6,
		string(extract.MethodBodyText): 0.4,
	}[method]
	if !known {
		base = 0.3 // fallback extraction, outside the cascade
	}

	lengthBonus := float64(contentLength) / 5000
	if lengthBonus > 0.15 {
		lengthBonus = 0.15
	}

	score := base + lengthBonus
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Package source implements source management: the administrative
// create_source/update_source/delete_source/list_sources/test_source
// operations the HTTP layer exposes over the source repository. Sources
// themselves are never written by the scraping engine's own job runs — the
// Per-Source Extractor only ever reads them.
package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/infra/fetcher"
	"scrapeengine/internal/repository"
)

// feedMarkers are substrings that indicate a response body is plausibly an
// RSS/Atom feed, used by TestSource's lightweight reachability check.
var feedMarkers = []string{"<rss", "<feed", "<channel>"}

// CreateInput is the input to Create.
type CreateInput struct {
	Name                   string
	Domain                 string
	RSSURL                 string
	IconURL                string
	UserAgent              string
	DelayBetweenRequestsMs int
	TimeoutMs              int
	RespectRobotsTxt       bool
}

// UpdateInput is the input to Update. Zero-value string fields leave the
// corresponding column unchanged.
type UpdateInput struct {
	ID                     uuid.UUID
	Name                   string
	Domain                 string
	RSSURL                 string
	IconURL                string
	UserAgent              string
	DelayBetweenRequestsMs int
	TimeoutMs              int
	RespectRobotsTxt       bool
}

// TestResult is what TestSource reports back.
type TestResult struct {
	Reachable   bool
	StatusCheck string
}

// Service implements source management.
type Service struct {
	Repo  repository.SourceRepository
	Pages *fetcher.PageFetcher
}

// New constructs a Service.
func New(repo repository.SourceRepository, pages *fetcher.PageFetcher) *Service {
	return &Service{Repo: repo, Pages: pages}
}

// List returns a page of configured sources.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]entity.Source, int, error) {
	sources, total, err := s.Repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list sources: %w", err)
	}
	return sources, total, nil
}

// Get returns one source by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Source, error) {
	src, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	return src, nil
}

// Create validates and persists a new source.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Source, error) {
	src := &entity.Source{
		Name:                   in.Name,
		Domain:                 in.Domain,
		RSSURL:                 in.RSSURL,
		IconURL:                in.IconURL,
		UserAgent:              in.UserAgent,
		DelayBetweenRequestsMs: in.DelayBetweenRequestsMs,
		TimeoutMs:              in.TimeoutMs,
		RespectRobotsTxt:       in.RespectRobotsTxt,
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, src); err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	return src, nil
}

// Update applies in over the existing source and persists it. Empty string
// fields leave the corresponding column unchanged.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Source, error) {
	src, err := s.Repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	if in.Name != "" {
		src.Name = in.Name
	}
	if in.Domain != "" {
		src.Domain = in.Domain
	}
	if in.RSSURL != "" {
		src.RSSURL = in.RSSURL
	}
	if in.IconURL != "" {
		src.IconURL = in.IconURL
	}
	if in.UserAgent != "" {
		src.UserAgent = in.UserAgent
	}
	if in.DelayBetweenRequestsMs != 0 {
		src.DelayBetweenRequestsMs = in.DelayBetweenRequestsMs
	}
	if in.TimeoutMs != 0 {
		src.TimeoutMs = in.TimeoutMs
	}
	src.RespectRobotsTxt = in.RespectRobotsTxt

	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, src); err != nil {
		return nil, fmt.Errorf("update source: %w", err)
	}
	return src, nil
}

// Delete removes a source by ID.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

// TestSource fetches rssURL and reports whether the response looks like a
// real RSS/Atom feed, without requiring a source to already be saved. It
// backs test_source, used to validate a feed before create_source or
// update_source commits to it.
func (s *Service) TestSource(ctx context.Context, rssURL string) (TestResult, error) {
	if err := entity.ValidateURL(rssURL); err != nil {
		return TestResult{}, err
	}

	page, err := s.Pages.Fetch(ctx, rssURL, 0)
	if err != nil {
		return TestResult{Reachable: false, StatusCheck: err.Error()}, nil
	}

	body := bytes.ToLower(page.HTML)
	for _, marker := range feedMarkers {
		if bytes.Contains(body, []byte(strings.ToLower(marker))) {
			return TestResult{Reachable: true, StatusCheck: "looks like a valid feed"}, nil
		}
	}
	return TestResult{Reachable: false, StatusCheck: "response does not look like an RSS/Atom feed"}, nil
}

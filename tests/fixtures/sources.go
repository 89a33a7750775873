// Package fixtures provides reusable test data generators for integration tests.
// This package eliminates test data duplication and ensures consistent test content
// across different test suites.
package fixtures

import (
	"time"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
)

// SourceOption is a functional option for customizing a test Source.
type SourceOption func(*entity.Source)

// NewTestSource creates a valid Source with sensible defaults. Use
// functional options to customize it for specific test cases.
//
// Example:
//
//	src := NewTestSource()
//	src := NewTestSource(WithSourceName("Example News"), WithRSSURL("https://example.com/rss"))
func NewTestSource(opts ...SourceOption) *entity.Source {
	s := &entity.Source{
		ID:                     uuid.New(),
		Name:                   "Example News",
		Domain:                 "example.com",
		RSSURL:                 "https://example.com/rss",
		IconURL:                "",
		UserAgent:              "",
		DelayBetweenRequestsMs: 0,
		TimeoutMs:              0,
		RespectRobotsTxt:       true,
		CreatedAt:              time.Now().UTC(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithSourceID sets the Source's ID.
func WithSourceID(id uuid.UUID) SourceOption {
	return func(s *entity.Source) { s.ID = id }
}

// WithSourceName sets the Source's Name.
func WithSourceName(name string) SourceOption {
	return func(s *entity.Source) { s.Name = name }
}

// WithDomain sets the Source's Domain.
func WithDomain(domain string) SourceOption {
	return func(s *entity.Source) { s.Domain = domain }
}

// WithRSSURL sets the Source's RSSURL.
func WithRSSURL(url string) SourceOption {
	return func(s *entity.Source) { s.RSSURL = url }
}

// WithUserAgent sets the Source's UserAgent override.
func WithUserAgent(ua string) SourceOption {
	return func(s *entity.Source) { s.UserAgent = ua }
}

// WithTimeoutMs sets the Source's per-request timeout override.
func WithTimeoutMs(ms int) SourceOption {
	return func(s *entity.Source) { s.TimeoutMs = ms }
}

// WithDelayMs sets the Source's inter-request pacing delay.
func WithDelayMs(ms int) SourceOption {
	return func(s *entity.Source) { s.DelayBetweenRequestsMs = ms }
}

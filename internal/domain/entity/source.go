package entity

import (
	"time"

	"github.com/google/uuid"
)

// Source represents a configured news feed the engine may be asked to scrape.
// Sources are created and updated out-of-band (administrative); the scraping
// engine only ever reads them.
type Source struct {
	ID                     uuid.UUID
	Name                   string
	Domain                 string
	RSSURL                 string
	IconURL                string
	UserAgent              string
	DelayBetweenRequestsMs int
	TimeoutMs              int
	RespectRobotsTxt       bool
	CreatedAt              time.Time
}

// DefaultUserAgent is used when a source does not specify one.
const DefaultUserAgent = "ScrapeEngineBot/1.0"

// DefaultTimeoutMs is used when a source does not specify a timeout.
const DefaultTimeoutMs = 10_000

// Validate checks that the source can be used by the Per-Source Extractor.
// A source missing an rss_url is unusable; callers must reject it before
// scheduling a per-source task rather than letting the task fail mid-flight.
func (s *Source) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if s.Domain == "" {
		return &ValidationError{Field: "domain", Message: "domain is required"}
	}
	if err := ValidateURL(s.RSSURL); err != nil {
		return err
	}
	if s.IconURL != "" {
		if err := ValidateURL(s.IconURL); err != nil {
			return err
		}
	}
	return nil
}

// EffectiveUserAgent returns the user agent to present on outbound requests,
// falling back to DefaultUserAgent when the source did not configure one.
func (s *Source) EffectiveUserAgent() string {
	if s.UserAgent == "" {
		return DefaultUserAgent
	}
	return s.UserAgent
}

// EffectiveTimeout returns the per-request timeout for RSS fetches against
// this source.
func (s *Source) EffectiveTimeout() time.Duration {
	ms := s.TimeoutMs
	if ms <= 0 {
		ms = DefaultTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// RequestDelay returns the pacing delay to apply between outbound requests
// for this source.
func (s *Source) RequestDelay() time.Duration {
	if s.DelayBetweenRequestsMs <= 0 {
		return 0
	}
	return time.Duration(s.DelayBetweenRequestsMs) * time.Millisecond
}

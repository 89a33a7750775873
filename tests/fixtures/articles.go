package fixtures

import (
	"time"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/usecase/extract"
)

// ArticleOption is a functional option for customizing a test ScrapedArticle.
type ArticleOption func(*entity.ScrapedArticle)

// NewTestArticle creates a valid ScrapedArticle with sensible defaults,
// including a ContentHash consistent with the title/content given so tests
// exercising dedup logic don't have to compute it by hand.
//
// Example:
//
//	article := NewTestArticle(sourceID)
//	article := NewTestArticle(sourceID, WithTitle("Other headline"), WithArticleJobID(jobID))
func NewTestArticle(sourceID uuid.UUID, opts ...ArticleOption) *entity.ScrapedArticle {
	a := &entity.ScrapedArticle{
		ID:               uuid.New(),
		SourceID:         sourceID,
		Title:            "Example headline",
		Content:          "This is example article content used for testing purposes.",
		Author:           "Jane Doe",
		Language:         entity.DefaultLanguage,
		SourceURL:        "https://example.com/articles/" + uuid.NewString(),
		ProcessingStatus: entity.ProcessingStatusCompleted,
		CreatedAt:        time.Now().UTC(),
	}
	a.ContentHash = extract.ContentHash(a.Title, a.Content)

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithArticleID sets the ScrapedArticle's ID.
func WithArticleID(id uuid.UUID) ArticleOption {
	return func(a *entity.ScrapedArticle) { a.ID = id }
}

// WithArticleJobID sets the ScrapedArticle's JobID.
func WithArticleJobID(id uuid.UUID) ArticleOption {
	return func(a *entity.ScrapedArticle) { a.JobID = &id }
}

// WithTitle sets the ScrapedArticle's Title and recomputes ContentHash.
func WithTitle(title string) ArticleOption {
	return func(a *entity.ScrapedArticle) {
		a.Title = title
		a.ContentHash = extract.ContentHash(a.Title, a.Content)
	}
}

// WithContent sets the ScrapedArticle's Content and recomputes ContentHash.
func WithContent(content string) ArticleOption {
	return func(a *entity.ScrapedArticle) {
		a.Content = content
		a.ContentHash = extract.ContentHash(a.Title, a.Content)
	}
}

// WithSourceURL sets the ScrapedArticle's SourceURL.
func WithSourceURL(url string) ArticleOption {
	return func(a *entity.ScrapedArticle) { a.SourceURL = url }
}

// WithPublicationDate sets the ScrapedArticle's PublicationDate.
func WithPublicationDate(t time.Time) ArticleOption {
	return func(a *entity.ScrapedArticle) { a.PublicationDate = &t }
}

// Package article provides the thin list_articles/get_article HTTP reader
// surface over persisted scraped content.
package article

import "time"

// DTO is the JSON representation of a persisted article.
type DTO struct {
	ID               string     `json:"id" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	SourceID         string     `json:"source_id" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	Title            string     `json:"title" example:"Go 1.23 リリース"`
	URL              string     `json:"url" example:"https://example.com/article/1"`
	Author           string     `json:"author,omitempty"`
	Language         string     `json:"language" example:"en"`
	ProcessingStatus string     `json:"processing_status" example:"completed"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at" example:"2025-10-26T12:00:00Z"`
}

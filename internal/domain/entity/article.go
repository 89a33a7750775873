package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus values for ScrapedArticle.ProcessingStatus.
const (
	ProcessingStatusCompleted = "completed"
)

// DefaultLanguage is used when language detection is inconclusive.
const DefaultLanguage = "en"

// ScrapedArticle is a single article row committed by the Transactional
// Persister. Business identity is SourceURL and ContentHash, both unique;
// ID is a surrogate used for foreign-key references and pagination.
type ScrapedArticle struct {
	ID                uuid.UUID
	SourceID          uuid.UUID
	JobID             *uuid.UUID
	Title             string
	Content           string
	Author            string
	PublicationDate   *time.Time
	Language          string
	ContentHash       string
	SourceURL         string
	ProcessingStatus  string
	CreatedAt         time.Time
}

// Package db owns the engine's schema: the four tables the scraping engine
// reads and writes (sources, scraping_jobs, scraped_content, scraping_logs)
// plus the pooled *sql.DB the rest of the engine shares.
package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/sources.sql
var seedSourcesSQL string

// MigrateUp creates the engine's tables and indexes if they do not already
// exist, then seeds a starter set of sources. It is safe to call on every
// process start.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sources (
    id                         UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    name                       TEXT NOT NULL UNIQUE,
    domain                     TEXT NOT NULL UNIQUE,
    rss_url                    TEXT NOT NULL,
    icon_url                   TEXT,
    user_agent                 TEXT,
    delay_between_requests_ms  INTEGER NOT NULL DEFAULT 0,
    timeout_ms                 INTEGER NOT NULL DEFAULT 10000,
    respect_robots_txt         BOOLEAN NOT NULL DEFAULT TRUE,
    created_at                 TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scraping_jobs (
    id                      UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    status                  TEXT NOT NULL,
    sources_requested       TEXT[] NOT NULL,
    articles_per_source     INTEGER NOT NULL,
    total_articles_scraped  INTEGER NOT NULL DEFAULT 0,
    total_errors            INTEGER NOT NULL DEFAULT 0,
    triggered_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
    completed_at            TIMESTAMPTZ
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scraped_content (
    id                 UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    source_id          UUID NOT NULL REFERENCES sources(id),
    job_id             UUID REFERENCES scraping_jobs(id) ON DELETE SET NULL,
    source_url         TEXT NOT NULL UNIQUE,
    title              TEXT NOT NULL,
    content            TEXT NOT NULL,
    author             TEXT,
    publication_date   TIMESTAMPTZ,
    content_hash       TEXT NOT NULL UNIQUE,
    language           TEXT NOT NULL DEFAULT 'en',
    processing_status  TEXT NOT NULL DEFAULT 'completed',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scraping_logs (
    id               BIGSERIAL PRIMARY KEY,
    job_id           UUID NOT NULL REFERENCES scraping_jobs(id),
    source_id        UUID,
    correlation_id   TEXT,
    timestamp        TIMESTAMPTZ NOT NULL DEFAULT now(),
    log_level        TEXT NOT NULL,
    message          TEXT NOT NULL,
    additional_data  JSONB NOT NULL DEFAULT '{}'::jsonb
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_scraped_content_source_id ON scraped_content(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scraped_content_job_id ON scraped_content(job_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scraping_jobs_status ON scraping_jobs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_scraping_jobs_triggered_at ON scraping_jobs(triggered_at)`,
		`CREATE INDEX IF NOT EXISTS idx_scraping_logs_job_id ON scraping_logs(job_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scraping_logs_event_type ON scraping_logs USING gin((additional_data -> 'event_type'))`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// pg_trgm powers the search= filter on list_articles; ignore failure
	// when the extension cannot be installed (e.g. no superuser).
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_scraped_content_title_gin ON scraped_content USING gin(title gin_trgm_ops)`)

	if _, err := db.Exec(seedSourcesSQL); err != nil {
		return err
	}

	return nil
}

// MigrateDown drops the engine's tables. Used only by test/dev tooling;
// the engine itself never calls this.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS scraping_logs CASCADE`,
		`DROP TABLE IF EXISTS scraped_content CASCADE`,
		`DROP TABLE IF EXISTS scraping_jobs CASCADE`,
		`DROP TABLE IF EXISTS sources CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

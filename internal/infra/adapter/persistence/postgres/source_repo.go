package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/repository"
)

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

func scanSource(scanner interface {
	Scan(dest ...any) error
}) (*entity.Source, error) {
	var source entity.Source
	var iconURL, userAgent sql.NullString
	if err := scanner.Scan(
		&source.ID, &source.Name, &source.Domain, &source.RSSURL, &iconURL, &userAgent,
		&source.DelayBetweenRequestsMs, &source.TimeoutMs, &source.RespectRobotsTxt, &source.CreatedAt,
	); err != nil {
		return nil, err
	}
	source.IconURL = iconURL.String
	source.UserAgent = userAgent.String
	return &source, nil
}

func (repo *SourceRepo) GetByName(ctx context.Context, name string) (*entity.Source, error) {
	const query = `
SELECT id, name, domain, rss_url, icon_url, user_agent, delay_between_requests_ms, timeout_ms, respect_robots_txt, created_at
FROM sources
WHERE name = $1
LIMIT 1`
	source, err := scanSource(repo.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByName: %w", err)
	}
	return source, nil
}

func (repo *SourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Source, error) {
	const query = `
SELECT id, name, domain, rss_url, icon_url, user_agent, delay_between_requests_ms, timeout_ms, respect_robots_txt, created_at
FROM sources
WHERE id = $1
LIMIT 1`
	source, err := scanSource(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return source, nil
}

func (repo *SourceRepo) List(ctx context.Context, page, pageSize int) ([]entity.Source, int, error) {
	var total int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	const query = `
SELECT id, name, domain, rss_url, icon_url, user_agent, delay_between_requests_ms, timeout_ms, respect_robots_txt, created_at
FROM sources
ORDER BY name ASC
LIMIT $1 OFFSET $2`
	rows, err := repo.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]entity.Source, 0, pageSize)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		sources = append(sources, *source)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return sources, total, nil
}

func (repo *SourceRepo) Create(ctx context.Context, s *entity.Source) error {
	const query = `
INSERT INTO sources (id, name, domain, rss_url, icon_url, user_agent, delay_between_requests_ms, timeout_ms, respect_robots_txt)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at`
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := repo.db.QueryRowContext(ctx, query,
		s.ID, s.Name, s.Domain, s.RSSURL, nullableString(s.IconURL), nullableString(s.UserAgent),
		s.DelayBetweenRequestsMs, s.TimeoutMs, s.RespectRobotsTxt,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SourceRepo) Update(ctx context.Context, s *entity.Source) error {
	const query = `
UPDATE sources SET
       name                      = $1,
       domain                    = $2,
       rss_url                   = $3,
       icon_url                  = $4,
       user_agent                = $5,
       delay_between_requests_ms = $6,
       timeout_ms                = $7,
       respect_robots_txt        = $8
WHERE id = $9`
	res, err := repo.db.ExecContext(ctx, query,
		s.Name, s.Domain, s.RSSURL, nullableString(s.IconURL), nullableString(s.UserAgent),
		s.DelayBetweenRequestsMs, s.TimeoutMs, s.RespectRobotsTxt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *SourceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM sources WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

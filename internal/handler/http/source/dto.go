package source

import (
	"time"

	"scrapeengine/internal/domain/entity"
)

// DTO is the JSON representation of a configured source.
type DTO struct {
	ID                     string    `json:"id" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	Name                   string    `json:"name" example:"Qiita"`
	Domain                 string    `json:"domain" example:"qiita.com"`
	RSSURL                 string    `json:"rss_url" example:"https://qiita.com/feed"`
	IconURL                string    `json:"icon_url,omitempty"`
	UserAgent              string    `json:"user_agent,omitempty"`
	DelayBetweenRequestsMs int       `json:"delay_between_requests_ms"`
	TimeoutMs              int       `json:"timeout_ms"`
	RespectRobotsTxt       bool      `json:"respect_robots_txt"`
	CreatedAt              time.Time `json:"created_at"`
}

func toDTO(s entity.Source) DTO {
	return DTO{
		ID:                     s.ID.String(),
		Name:                   s.Name,
		Domain:                 s.Domain,
		RSSURL:                 s.RSSURL,
		IconURL:                s.IconURL,
		UserAgent:              s.UserAgent,
		DelayBetweenRequestsMs: s.DelayBetweenRequestsMs,
		TimeoutMs:              s.TimeoutMs,
		RespectRobotsTxt:       s.RespectRobotsTxt,
		CreatedAt:              s.CreatedAt,
	}
}

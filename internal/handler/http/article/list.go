package article

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"scrapeengine/internal/common/pagination"
	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/handler/http/requestid"
	"scrapeengine/internal/handler/http/respond"
	"scrapeengine/internal/observability/logging"
	"scrapeengine/internal/repository"
	artUC "scrapeengine/internal/usecase/article"
)

type ListHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP implements list_articles.
// @Summary      記事一覧取得（ページネーション対応）
// @Description  登録されている記事を取得します。search/source/language/statusで絞り込めます。
// @Tags         articles
// @Produce      json
// @Param        page     query int    false "ページ番号 (1-based)" default(1) minimum(1)
// @Param        limit    query int    false "1ページあたりの件数" default(20) minimum(1) maximum(100)
// @Param        search   query string false "タイトル/URL検索"
// @Param        source   query string false "ソースID (UUID)"
// @Param        language query string false "言語コード"
// @Param        status   query string false "processing_status"
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {string} string "Invalid query parameters"
// @Failure      500 {string} string "Server error"
// @Router       /articles [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.Logger)

	pageParams, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		logger.Warn("invalid pagination parameters", "error", err.Error(), "request_id", reqID)
		pagination.RecordError("validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	params := repository.ArticleListParams{
		Page:     pageParams.Page,
		PageSize: pageParams.Limit,
		Search:   r.URL.Query().Get("search"),
		Language: r.URL.Query().Get("language"),
		Status:   r.URL.Query().Get("status"),
	}
	if sourceParam := r.URL.Query().Get("source"); sourceParam != "" {
		sourceID, err := uuid.Parse(sourceParam)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest, &entity.ValidationError{Field: "source", Message: "must be a valid UUID"})
			return
		}
		params.SourceID = &sourceID
	}

	articles, total, err := h.Svc.List(ctx, params)
	if err != nil {
		logger.Error("failed to list articles", "error", err.Error(), "request_id", reqID)
		pagination.RecordError("database")
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(articles))
	for _, a := range articles {
		dtos = append(dtos, toDTO(a))
	}

	metadata := pagination.Metadata{
		Total:      int64(total),
		Page:       pageParams.Page,
		Limit:      pageParams.Limit,
		TotalPages: pagination.CalculateTotalPages(int64(total), pageParams.Limit),
	}
	response := pagination.NewResponse(dtos, metadata)

	duration := time.Since(startTime)
	pagination.RecordRequest(http.StatusOK, pageParams.Page)
	pagination.RecordDuration("handler", duration.Seconds())
	pagination.UpdateTotalCount(int64(total))

	respond.JSON(w, http.StatusOK, response)
}

func toDTO(a entity.ScrapedArticle) DTO {
	return DTO{
		ID:               a.ID.String(),
		SourceID:         a.SourceID.String(),
		Title:            a.Title,
		URL:              a.SourceURL,
		Author:           a.Author,
		Language:         a.Language,
		ProcessingStatus: a.ProcessingStatus,
		PublishedAt:      a.PublicationDate,
		CreatedAt:        a.CreatedAt,
	}
}

package routes

import (
	"net/http"

	"github.com/zhiwen/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetSystemStatsHandler aggregates corpus, graph, cache and pipeline
// statistics. It never triggers the lazy QA build; pipeline stats only
// appear once the first question has been asked.
func GetSystemStatsHandler(c echo.Context) error {
	svc := c.(*middleware.AppContext).App.Service

	docStats, err := svc.Loader().Stats()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	cfg := svc.Config()
	stats := map[string]any{
		"documents": map[string]any{
			"total":       svc.DocumentCount(),
			"titles":      svc.DocumentTitles(),
			"total_files": docStats.TotalFiles,
			"total_size":  docStats.TotalSize,
			"file_types":  docStats.FileTypes,
		},
		"custom_words": svc.CustomWordCount(),
		"cache": map[string]any{
			"cached_queries": svc.Cache().Size(),
			"cache_path":     cfg.CachePath,
		},
		"config": map[string]any{
			"chunk_size":    cfg.ChunkSize,
			"chunk_overlap": cfg.ChunkOverlap,
			"top_k":         cfg.TopK,
			"rerank_top_k":  cfg.RerankTopK,
		},
	}

	if graph := svc.Graph(); graph != nil {
		if graphStats, err := graph.Statistics(); err == nil {
			stats["graph"] = graphStats
		}
	}
	if qa := svc.QAIfReady(); qa != nil {
		stats["pipeline"] = qa.Stats()
	}

	return c.JSON(http.StatusOK, stats)
}
